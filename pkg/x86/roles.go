package x86

// Arg is the role an operand plays in an instruction. The formatter
// (pkg/syntax) switches on this to decide how to render the operand value
// carried in Instruction.Arg0/Arg1/Arg2.
type Arg uint8

const (
	NONE Arg = iota

	// Fixed 8-bit registers, contiguous so argtype-AL indexes reg8[].
	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH

	// Fixed 16/32-bit registers, contiguous so argtype-AX indexes reg16[].
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI

	// Fixed segment registers, contiguous so argtype-ES indexes seg16[].
	ES
	CS
	SS
	DS
	FS
	GS

	ONE    // implicit operand "1" (shift/rotate by one)
	IMM    // immediate, sized by instr.Op.Size
	IMM8   // immediate, always 8 bits wide on the wire
	IMM16  // immediate, always 16 bits wide on the wire
	REL8   // pc-relative branch target, 8-bit displacement on the wire
	REL16  // pc-relative branch target, 16 or 32-bit displacement on the wire
	PTR32  // far pointer literal (seg:off), 4 or 6 bytes on the wire
	MOFFS16 // direct-addressed memory operand (A0-A3 forms)
	DSBX   // string-op implicit memory operand, DS:[(E)BX]
	DSSI   // string-op implicit memory operand, DS:[(E)SI]
	ESDI   // string-op implicit memory operand, ES:[(E)DI]
	ALS    // implicit AL (GAS only prints it)
	AXS    // implicit AX (GAS only prints it)
	DXS    // implicit (E)DX used as an I/O port register
	RM     // ModR/M operand, may resolve to register or memory
	MEM    // like RM but the opcode requires a memory form (mod==3 is a warning)
	REG    // ModR/M reg field, a general register
	REG32  // ModR/M reg field, forced to 32-bit width (e.g. LEA's destination)
	SEG16  // ModR/M reg field interpreted as a segment register
	CR32   // ModR/M reg field interpreted as a control register
	DR32   // ModR/M reg field interpreted as a debug register
	TR32   // ModR/M reg field interpreted as a test register
	ST     // top of the FPU stack, %st / st / st(0)
	STX    // FPU stack register i, %st(i) / sti / st(i)
)

// CL is the fixed register role for shift/rotate's implicit-count operand
// (OpArg2CL): it reuses the CL constant from the AL..BH block above, since
// on the wire it is simply the fixed 8-bit register "cl".
