// Package x86 decodes the segmented x86 instruction stream found in 16-bit
// NE code segments: prefixes, ModR/M and SIB bytes, operand sizing, and
// immediate/displacement extraction.
package x86

// Prefix is a bitfield of the legacy prefix bytes seen before an opcode.
type Prefix uint16

const (
	// PrefixSegMask occupies the low 3 bits (1..6); 0 means "no override".
	// The value, minus one, indexes the ES,CS,SS,DS,FS,GS segment table.
	PrefixSegMask Prefix = 0x0007
	PrefixOp32    Prefix = 0x0008
	PrefixAddr32  Prefix = 0x0010
	PrefixLock    Prefix = 0x0020
	PrefixRepne   Prefix = 0x0040
	PrefixRepe    Prefix = 0x0080

	// PrefixDupSeg / PrefixDupOther mark that a prefix byte was seen twice
	// (same class), which the decoder reports via Instruction.PrefixError.
	PrefixDupSeg   Prefix = 0x0100
	PrefixDupOther Prefix = 0x0200
)

// SegOverride returns the 1-based segment selector (1=ES..6=GS) encoded in
// the prefix, or 0 if no segment override is present.
func (p Prefix) SegOverride() int { return int(p & PrefixSegMask) }

// OpFlags carries per-opcode behavior bits, looked up from the opcode table.
type OpFlags uint16

const (
	OpStack OpFlags = 1 << iota // stack-size-suffixed mnemonic (push/pop family)
	OpString                    // string op, gets b/w/d size suffix outside GAS
	OpFar                       // far call/jmp/ret
	OpRepe                      // REPE/REPZ prefix is meaningful here
	OpRepne                     // REPNE/REPNZ prefix is meaningful here
	OpLock                      // LOCK prefix is meaningful here
	OpArg2Imm                   // a third, trailing immediate operand (size = op.size)
	OpArg2Imm8                  // a third, trailing 8-bit immediate operand
	OpArg2CL                    // a third, implicit %cl operand (shift/rotate by CL)
	OpL                         // GAS: append "l" mem-size suffix (80387 ops)
	OpS                         // GAS: append "s" mem-size suffix
	OpLL                        // GAS: append "ll" mem-size suffix
)

// Op is the static, per-opcode template looked up from the dispatch table.
// The whole Op is copied into Instruction.Op, so Decode can rewrite Name for
// its tie-break cases without touching the table; syntax-specific suffixes
// are applied by syntax.MangleMnemonic, which returns a new string.
type Op struct {
	Opcode  uint16 // may be extended, e.g. 0x0FB6
	Subcode uint8  // ModR/M /n group extension, 0 if not a group opcode
	Name    string
	Size    uint8 // 0, 8, 16, 32, 64, or 80
	Arg0    Arg
	Arg1    Arg
	Flags   OpFlags
}

// Mem describes a decoded memory operand (ModR/M mod != 3, or one of the
// fixed string-op addressing forms). The formatter builds the bracketed
// expression from these fields; which fields are meaningful depends on
// AddrSize and whether Base/Index are present.
type Mem struct {
	HasBase  bool
	Base     uint8 // register number, meaningful when HasBase
	HasIndex bool
	Index    uint8 // register number, meaningful when HasIndex (SIB only)
	Scale    uint8 // 1, 2, 4, or 8; meaningful when HasIndex
	Disp     int32 // signed displacement; always present, may be zero
	DispSize uint8 // 0 (no displacement byte on the wire), 8, or 16/32
	Direct   bool  // true for mod==0,rm==6 (16-bit) / mod==0,rm==5 or SIB base==5 with mod==0 (32-bit): Disp is an absolute address, Base unused (a SIB index may still be set)
}

// ModRM is the decoded ModR/M (+ SIB) byte pair of an instruction that has
// one, with RM resolved to either a register number or a Mem.
type ModRM struct {
	Present  bool
	Mod      uint8 // 0-3, raw mod field
	RegField uint8 // 0-7, raw reg field: a register number (REG role) or a group selector
	IsMemory bool  // mod != 3
	Reg      uint8 // r/m field as a register number, meaningful when !IsMemory
	Mem      Mem   // meaningful when IsMemory
}

// Instruction is the decoded record produced by Decode.
type Instruction struct {
	Op          Op // copy of the table template; Decode may rewrite Op.Name for tie-breaks
	Prefix      Prefix
	PrefixError string // non-empty if a prefix was duplicated or conflicting
	AddrSize    uint8  // 16 or 32

	ModRM ModRM

	// Arg0/Arg1/Arg2 carry decoded immediate, relative-branch, or far-pointer
	// values, whichever of Op.Arg0/Arg1/(Arg2 per Op.Flags) call for one.
	// For the reg-field roles (REG, REG32, SEG16, CR32, DR32, TR32) they carry
	// the ModR/M reg field; RM/MEM operands are read from ModRM instead.
	Arg0, Arg1, Arg2 uint32

	FarSeg uint16 // meaningful when Op.Arg0/Arg1 == PTR32: the segment half
}

// Size32 reports whether the effective operand size for this instruction is
// 32 bits (as opposed to 16).
func (i *Instruction) Size32() bool { return i.Op.Size == 32 }
