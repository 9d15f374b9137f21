package x86

import "fmt"

// MaxInstrLen bounds how many bytes a single instruction may consume,
// pinned from the original's MAX_INSTR.
const MaxInstrLen = 16

// modrm16Base gives the (base, index) register pair implied by a 16-bit
// ModR/M r/m field 0-7, following the 8086 addressing-mode table:
// 0:bx+si 1:bx+di 2:bp+si 3:bp+di 4:si 5:di 6:disp16(no base) 7:bx
var modrm16Base = [8]struct {
	hasBase, hasIndex bool
	base, index       uint8
}{
	{true, true, 3, 6},  // bx+si (bx=3, si=6 in our 16-register numbering used only internally)
	{true, true, 3, 7},  // bx+di
	{true, true, 5, 6},  // bp+si
	{true, true, 5, 7},  // bp+di
	{true, false, 6, 0}, // si
	{true, false, 7, 0}, // di
	{true, false, 5, 0}, // bp (mod==0,rm==6 is special-cased separately as direct disp16)
	{true, false, 3, 0}, // bx
}

// Decode reads one instruction starting at bytes[0]. default32 is true when
// the containing segment is a 32-bit (USE32) segment, flipping the default
// operand/address size that the 66/67 prefixes then toggle away from.
//
// Decode never fails: an unrecognized opcode yields an Instruction with an
// empty Op.Name that consumes only its prefix and opcode bytes (one byte for
// a bare one-byte opcode, two for 0F xx), so callers can resynchronize and
// keep scanning.
func Decode(bytes []byte, default32 bool) (Instruction, int) {
	var instr Instruction
	pos := 0
	read := func() (byte, bool) {
		if pos >= len(bytes) || pos >= MaxInstrLen {
			return 0, false
		}
		b := bytes[pos]
		pos++
		return b, true
	}

	// Prefixes.
	for {
		b, ok := read()
		if !ok {
			return instr, pos
		}
		var seg Prefix
		switch b {
		case 0x26:
			seg = 1 // ES
		case 0x2E:
			seg = 2 // CS
		case 0x36:
			seg = 3 // SS
		case 0x3E:
			seg = 4 // DS
		case 0x64:
			seg = 5 // FS
		case 0x65:
			seg = 6 // GS
		}
		if seg != 0 {
			if instr.Prefix.SegOverride() != 0 {
				instr.Prefix |= PrefixDupSeg
				instr.PrefixError = "duplicate segment override prefix"
			}
			instr.Prefix = (instr.Prefix &^ PrefixSegMask) | seg
			continue
		}
		switch b {
		case 0x66:
			if instr.Prefix&PrefixOp32 != 0 {
				instr.Prefix |= PrefixDupOther
			}
			instr.Prefix |= PrefixOp32
			continue
		case 0x67:
			if instr.Prefix&PrefixAddr32 != 0 {
				instr.Prefix |= PrefixDupOther
			}
			instr.Prefix |= PrefixAddr32
			continue
		case 0xF0:
			instr.Prefix |= PrefixLock
			continue
		case 0xF2:
			instr.Prefix |= PrefixRepne
			continue
		case 0xF3:
			instr.Prefix |= PrefixRepe
			continue
		}
		pos--
		break
	}

	if default32 {
		instr.AddrSize = 32
		if instr.Prefix&PrefixAddr32 != 0 {
			instr.AddrSize = 16
		}
	} else {
		instr.AddrSize = 16
		if instr.Prefix&PrefixAddr32 != 0 {
			instr.AddrSize = 32
		}
	}
	opSize32 := default32 != (instr.Prefix&PrefixOp32 != 0)

	opcodeByte, ok := read()
	if !ok {
		return instr, pos
	}

	var entry opEntry
	rawOpcode := uint16(opcodeByte)
	if opcodeByte == 0x0F {
		b2, ok := read()
		if !ok {
			return instr, pos
		}
		entry = table0F[b2]
		rawOpcode = 0x0F00 | uint16(b2)
	} else {
		entry = table[opcodeByte]
	}
	instr.Op = entry.Op
	instr.Op.Opcode = rawOpcode

	// Resolve operand size for opcodes whose table entry said 16 (the
	// "native word size" placeholder) by widening to 32 under OP32.
	widen := func(sz uint8) uint8 {
		if sz == 16 && opSize32 {
			return 32
		}
		return sz
	}
	instr.Op.Size = widen(instr.Op.Size)

	needsModRM := entry.group != nil || usesModRM(instr.Op.Arg0) || usesModRM(instr.Op.Arg1)
	if needsModRM {
		if !decodeModRM(bytes, &pos, &instr) {
			return instr, pos
		}
		if entry.group != nil {
			sub := entry.group[instr.ModRM.RegField]
			instr.Op.Name = sub.Name
			instr.Op.Arg0 = sub.Arg0
			instr.Op.Arg1 = sub.Arg1
			instr.Op.Size = widen(sub.Size)
			instr.Op.Flags |= sub.Flags
			instr.Op.Subcode = instr.ModRM.RegField
		}
	}

	// Shift/rotate count operand, determined by the opcode byte rather
	// than a table-driven Arg1 (D0/D1 implicit 1, D2/D3 implicit cl,
	// C0/C1 explicit imm8).
	switch opcodeByte {
	case 0xD0, 0xD1:
		instr.Op.Arg1 = ONE
	case 0xD2, 0xD3:
		instr.Op.Arg1 = CL
	case 0xC0, 0xC1:
		instr.Op.Arg1 = IMM8
	}

	readImmForArg := func(role Arg) uint32 {
		switch role {
		case IMM8, REL8:
			b, _ := read()
			if role == REL8 {
				return uint32(int32(int8(b)))
			}
			return uint32(b)
		case IMM, IMM16, REL16:
			width := instr.Op.Size
			if role == IMM16 {
				width = 16
			}
			if role == REL16 {
				width = 16
				if opSize32 {
					width = 32
				}
			}
			if width == 32 {
				return readLE32(bytes, &pos)
			}
			v := readLE16(bytes, &pos)
			if role == REL16 {
				return uint32(int32(int16(v)))
			}
			return uint32(v)
		case MOFFS16:
			return uint32(readLE16(bytes, &pos))
		case PTR32:
			off := uint32(readLE16(bytes, &pos))
			if opSize32 {
				off = readLE32(bytes, &pos)
			}
			instr.FarSeg = uint16(readLE16(bytes, &pos))
			return off
		}
		return 0
	}

	if isRegFieldRole(instr.Op.Arg0) {
		instr.Arg0 = uint32(instr.ModRM.RegField)
	} else if needsArgValue(instr.Op.Arg0) {
		instr.Arg0 = readImmForArg(instr.Op.Arg0)
	}
	if isRegFieldRole(instr.Op.Arg1) {
		instr.Arg1 = uint32(instr.ModRM.RegField)
	} else if needsArgValue(instr.Op.Arg1) {
		instr.Arg1 = readImmForArg(instr.Op.Arg1)
	}

	// Tie-break special cases, applied after the base decode.
	switch {
	case opcodeByte == 0xD4 && instr.Arg0 == 0x0A:
		instr.Op.Name, instr.Arg0 = "aam", 0
	case opcodeByte == 0xD5 && instr.Arg0 == 0x0A:
		instr.Op.Name, instr.Arg0 = "aad", 0
	case opcodeByte == 0x98 && opSize32:
		instr.Op.Name = "cwde"
	case opcodeByte == 0x99 && opSize32:
		instr.Op.Name = "cdq"
	case opcodeByte == 0xE3 && instr.AddrSize == 32:
		instr.Op.Name = "jecxz"
	}

	if entry.group != nil {
		switch {
		case instr.Op.Flags&OpArg2Imm != 0:
			instr.Arg2 = readImmForArg(IMM)
		case instr.Op.Flags&OpArg2Imm8 != 0:
			instr.Arg2 = readImmForArg(IMM8)
		}
	}

	if pos > MaxInstrLen {
		pos = MaxInstrLen
	}
	return instr, pos
}

func usesModRM(a Arg) bool {
	switch a {
	case RM, MEM, REG, REG32, SEG16, CR32, DR32, TR32, STX:
		return true
	}
	return false
}

// isRegFieldRole reports whether a carries the ModR/M reg field's register
// number (as opposed to an RM-resolved register/memory operand or an
// immediate/displacement read from the instruction stream).
func isRegFieldRole(a Arg) bool {
	switch a {
	case REG, REG32, SEG16, CR32, DR32, TR32:
		return true
	}
	return false
}

func needsArgValue(a Arg) bool {
	switch a {
	case IMM, IMM8, IMM16, REL8, REL16, PTR32, MOFFS16:
		return true
	}
	return false
}

func readLE16(b []byte, pos *int) uint32 {
	if *pos+2 > len(b) {
		*pos = len(b)
		return 0
	}
	v := uint32(b[*pos]) | uint32(b[*pos+1])<<8
	*pos += 2
	return v
}

func readLE32(b []byte, pos *int) uint32 {
	if *pos+4 > len(b) {
		*pos = len(b)
		return 0
	}
	v := uint32(b[*pos]) | uint32(b[*pos+1])<<8 | uint32(b[*pos+2])<<16 | uint32(b[*pos+3])<<24
	*pos += 4
	return v
}

// decodeModRM reads the ModR/M byte (and SIB/displacement if present) for
// the 16-bit or 32-bit addressing form selected by instr.AddrSize.
func decodeModRM(bytes []byte, pos *int, instr *Instruction) bool {
	if *pos >= len(bytes) {
		return false
	}
	b := bytes[*pos]
	*pos++
	mod := b >> 6
	reg := (b >> 3) & 7
	rm := b & 7

	instr.ModRM.Present = true
	instr.ModRM.Mod = mod
	instr.ModRM.RegField = reg

	if mod == 3 {
		instr.ModRM.IsMemory = false
		instr.ModRM.Reg = rm
		return true
	}
	instr.ModRM.IsMemory = true

	if instr.AddrSize == 32 {
		return decodeModRM32(bytes, pos, instr, mod, rm)
	}
	return decodeModRM16(bytes, pos, instr, mod, rm)
}

func decodeModRM16(bytes []byte, pos *int, instr *Instruction, mod, rm uint8) bool {
	m := &instr.ModRM.Mem
	if mod == 0 && rm == 6 {
		m.Direct = true
		m.DispSize = 16
		m.Disp = int32(int16(readLE16(bytes, pos)))
		return true
	}
	t := modrm16Base[rm]
	m.HasBase, m.Base = t.hasBase, t.base
	m.HasIndex, m.Index = t.hasIndex, t.index
	switch mod {
	case 1:
		if *pos >= len(bytes) {
			return false
		}
		m.Disp = int32(int8(bytes[*pos]))
		*pos++
		m.DispSize = 8
	case 2:
		m.Disp = int32(int16(readLE16(bytes, pos)))
		m.DispSize = 16
	}
	return true
}

func decodeModRM32(bytes []byte, pos *int, instr *Instruction, mod, rm uint8) bool {
	m := &instr.ModRM.Mem
	if rm == 4 {
		if *pos >= len(bytes) {
			return false
		}
		sib := bytes[*pos]
		*pos++
		scale := uint8(1) << (sib >> 6)
		index := (sib >> 3) & 7
		base := sib & 7
		if index != 4 {
			m.HasIndex, m.Index, m.Scale = true, index, scale
		}
		if base == 5 && mod == 0 {
			m.Direct = true
			m.DispSize = 32
			m.Disp = int32(readLE32(bytes, pos))
		} else {
			m.HasBase, m.Base = true, base
		}
	} else if mod == 0 && rm == 5 {
		m.Direct = true
		m.DispSize = 32
		m.Disp = int32(readLE32(bytes, pos))
		return true
	} else {
		m.HasBase, m.Base = true, rm
	}
	switch mod {
	case 1:
		if *pos >= len(bytes) {
			return false
		}
		m.Disp = int32(int8(bytes[*pos]))
		*pos++
		m.DispSize = 8
	case 2:
		m.Disp = int32(readLE32(bytes, pos))
		m.DispSize = 32
	}
	return true
}

// String gives a debug representation of a decoded instruction, used by
// tests and error messages; it is not the disassembly listing (pkg/syntax
// owns that).
func (i *Instruction) String() string {
	return fmt.Sprintf("%s (opcode=%#x size=%d)", i.Op.Name, i.Op.Opcode, i.Op.Size)
}
