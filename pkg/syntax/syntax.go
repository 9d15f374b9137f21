// Package syntax renders decoded x86 operands and mnemonics under one of
// three assembler dialects: AT&T (GAS), Intel NASM, and Intel MASM.
package syntax

import (
	"fmt"
	"strings"

	"github.com/limitlesswill/semblance/pkg/x86"
)

// Syntax selects the output dialect.
type Syntax int

const (
	GAS Syntax = iota
	NASM
	MASM
)

func (s Syntax) String() string {
	switch s {
	case GAS:
		return "gas"
	case NASM:
		return "nasm"
	case MASM:
		return "masm"
	default:
		return "unknown"
	}
}

// ParseSyntax maps a config string (as accepted by --asm-syntax) to a Syntax.
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(s) {
	case "gas", "att":
		return GAS, nil
	case "nasm":
		return NASM, nil
	case "masm", "intel":
		return MASM, nil
	}
	return 0, fmt.Errorf("unrecognized assembler syntax %q", s)
}

var reg8Names = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg16Names = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var reg32Names = [8]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
var seg16Names = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}

// modrm16Gas/modrm16Masm mirror the original's fixed 16-bit addressing-mode
// strings, indexed by the ModR/M r/m field (8 = direct/no-base memory).
var modrm16Gas = [9]string{"%bx,%si", "%bx,%di", "%bp,%si", "%bp,%di", "%si", "%di", "%bp", "%bx", ""}
var modrm16Masm = [9]string{"bx+si", "bx+di", "bp+si", "bp+di", "si", "di", "bp", "bx", ""}

func (s Syntax) reg8(n uint8) string  { return "%" + reg8Names[n&7] }
func (s Syntax) reg16(n uint8) string { return "%" + reg16Names[n&7] }

func regName(n uint8, gas bool) string {
	if gas {
		return "%" + reg16Names[n&7]
	}
	return reg16Names[n&7]
}

func reg32Name(n uint8, gas bool) string {
	if gas {
		return "%" + reg32Names[n&7]
	}
	return reg32Names[n&7]
}

func regSized(s Syntax, n uint8, size32 bool) string {
	if size32 {
		return reg32Name(n, s == GAS)
	}
	return regName(n, s == GAS)
}

func reg8Name(n uint8, gas bool) string {
	if gas {
		return "%" + reg8Names[n&7]
	}
	return reg8Names[n&7]
}

func segName(n uint8, gas bool) string {
	name := fmt.Sprintf("seg%d", n)
	if int(n) < len(seg16Names) {
		name = seg16Names[n]
	}
	if gas {
		return "%" + name
	}
	return name
}

// Context is the subset of a decoded instruction the formatter needs,
// decoupled from pkg/x86.Instruction so syntax stays independent of the
// decoder's internal representation beyond the handful of fields it reads.
type Context struct {
	Instr    *x86.Instruction
	Segment  int // 1-based ES..GS prefix override, 0 if none
}

// FormatOperand renders one operand. value carries the decoded immediate,
// displacement, or register-number payload for roles that need one (see
// x86.Instruction.Arg0/Arg1/Arg2); role is the operand's x86.Arg.
func FormatOperand(s Syntax, ctx Context, role x86.Arg, value uint32) string {
	instr := ctx.Instr
	size32 := instr.Op.Size == 32

	switch {
	case role >= x86.AL && role <= x86.BH:
		return reg8Name(uint8(role-x86.AL), s == GAS)
	case role >= x86.AX && role <= x86.DI:
		return regSized(s, uint8(role-x86.AX), size32)
	case role >= x86.ES && role <= x86.GS:
		return segName(uint8(role-x86.ES), s == GAS)
	}

	switch role {
	case x86.ONE:
		if s == GAS {
			return "$0x1"
		}
		return "1h"

	case x86.IMM8:
		if instr.Op.Flags&x86.OpStack != 0 {
			if size32 {
				return hexImm(s, uint64(uint32(int32(int8(value)))), 32, "dword")
			}
			return hexImm(s, uint64(uint32(int32(int8(value))))&0xffff, 16, "word")
		}
		return hexImm(s, uint64(value), 8, "")

	case x86.IMM16:
		return hexImm(s, uint64(value), 16, "")

	case x86.IMM:
		if instr.Op.Flags&x86.OpStack != 0 {
			if size32 {
				return hexImm(s, uint64(value), 32, "dword")
			}
			return hexImm(s, uint64(value), 16, "word")
		}
		switch instr.Op.Size {
		case 8:
			return hexImm(s, uint64(value), 8, "")
		case 32:
			return hexImm(s, uint64(value), 32, "")
		default:
			return hexImm(s, uint64(value), 16, "")
		}

	case x86.REL8, x86.REL16:
		return fmt.Sprintf("%04x", value)

	case x86.PTR32:
		// Always replaced by a relocation-derived symbol before printing;
		// see pkg/listing's relocation rewrite pass.
		return ""

	case x86.MOFFS16:
		if s == GAS {
			return fmt.Sprintf("0x%04x", value)
		}
		return fmt.Sprintf("[%04Xh]", value)

	case x86.DSBX, x86.DSSI:
		if s == NASM {
			return ""
		}
		var b strings.Builder
		if ctx.Segment != 0 {
			b.WriteString(segName(uint8(ctx.Segment-1), s == GAS))
			b.WriteString(":")
		}
		if s == GAS {
			b.WriteString("(%")
		} else {
			b.WriteString("[")
		}
		if instr.Prefix&x86.PrefixAddr32 != 0 {
			b.WriteString("e")
		}
		if role == x86.DSBX {
			b.WriteString("bx")
		} else {
			b.WriteString("si")
		}
		if s == GAS {
			b.WriteString(")")
		} else {
			b.WriteString("]")
		}
		return b.String()

	case x86.ESDI:
		if s == NASM {
			return ""
		}
		var b strings.Builder
		if s == GAS {
			b.WriteString("%es:(%")
		} else {
			b.WriteString("es:[")
		}
		if instr.Prefix&x86.PrefixAddr32 != 0 {
			b.WriteString("e")
		}
		b.WriteString("di")
		if s == GAS {
			b.WriteString(")")
		} else {
			b.WriteString("]")
		}
		return b.String()

	case x86.ALS:
		if s == GAS {
			return "%al"
		}
		return ""
	case x86.AXS:
		if s == GAS {
			return "%ax"
		}
		return ""
	case x86.DXS:
		if s == GAS {
			return "(%dx)"
		}
		if s == MASM {
			return "dx"
		}
		return ""

	case x86.RM, x86.MEM:
		return formatRM(s, ctx, role)

	case x86.REG:
		// movzx/movsx (0F B6/B7/BE/BF) give this the destination role; its
		// width toggles with Op.Size like any other REG operand; the source's
		// own fixed width is handled separately by rmSourceSize in formatRM.
		if instr.Op.Size == 8 {
			return reg8Name(uint8(value), s == GAS)
		}
		return regSized(s, uint8(value), size32)

	case x86.REG32:
		return reg32Name(uint8(value), s == GAS)

	case x86.SEG16:
		return segName(uint8(value), s == GAS)

	case x86.CR32:
		return fixedIndexed(s, "cr", uint8(value))
	case x86.DR32:
		return fixedIndexed(s, "dr", uint8(value))
	case x86.TR32:
		return fixedIndexed(s, "tr", uint8(value))

	case x86.ST:
		if s == NASM {
			return "st0"
		}
		prefix := ""
		if s == GAS {
			prefix = "%"
		}
		return prefix + "st"

	case x86.STX:
		prefix := ""
		if s == GAS {
			prefix = "%"
		}
		if s == NASM {
			return fmt.Sprintf("st%d", value)
		}
		return fmt.Sprintf("%sst(%d)", prefix, value)
	}
	return ""
}

func fixedIndexed(s Syntax, base string, n uint8) string {
	prefix := ""
	if s == GAS {
		prefix = "%"
	}
	return fmt.Sprintf("%s%s%d", prefix, base, n)
}

func hexImm(s Syntax, value uint64, bits int, sizeWord string) string {
	if s == GAS {
		switch bits {
		case 8:
			return fmt.Sprintf("$0x%02x", value)
		case 32:
			return fmt.Sprintf("$0x%08x", value)
		default:
			return fmt.Sprintf("$0x%04x", value)
		}
	}
	var digits string
	switch bits {
	case 8:
		digits = fmt.Sprintf("%02X", value)
	case 32:
		digits = fmt.Sprintf("%08X", value)
	default:
		digits = fmt.Sprintf("%04X", value)
	}
	if sizeWord != "" {
		return sizeWord + " " + digits + "h"
	}
	return digits + "h"
}

// rmSourceSize returns the width of the r/m operand. It's normally
// instr.Op.Size, except for movzx/movsx (0F B6/B7/BE/BF), where the source
// width is fixed by the opcode byte and distinct from the destination width
// Op.Size carries (see mangle.go's movzbl/movzbw split).
func rmSourceSize(instr *x86.Instruction) uint8 {
	switch instr.Op.Opcode {
	case 0x0FB6, 0x0FBE:
		return 8
	case 0x0FB7, 0x0FBF:
		return 16
	}
	return instr.Op.Size
}

// formatRM renders a RM/MEM operand: a plain register when the ModR/M byte
// selected register-direct form, otherwise the bracketed/offset memory
// expression for the active syntax.
func formatRM(s Syntax, ctx Context, role x86.Arg) string {
	instr := ctx.Instr
	mrm := instr.ModRM
	size := rmSourceSize(instr)

	if !mrm.IsMemory {
		if role == x86.MEM {
			// Warned by the caller (pkg/listing): mod==3 on a memory-only opcode.
		}
		if size == 8 {
			return reg8Name(mrm.Reg, s == GAS)
		}
		return regSized(s, mrm.Reg, size == 32)
	}

	m := mrm.Mem
	switch s {
	case GAS:
		var b strings.Builder
		if instr.Op.Opcode == 0xFF && instr.Op.Subcode >= 2 && instr.Op.Subcode <= 5 {
			b.WriteString("*")
		}
		if ctx.Segment != 0 {
			b.WriteString(segName(uint8(ctx.Segment-1), true))
			b.WriteString(":")
		}
		writeGASDisp(&b, m, instr.AddrSize)
		if m.Direct {
			// Absolute memory: GAS prints the address alone, no base register.
			return b.String()
		}
		b.WriteString("(")
		if instr.AddrSize == 16 {
			b.WriteString(modrmIndex(m, true))
		} else {
			if m.HasBase {
				b.WriteString(reg32Name(m.Base, true))
			}
			if m.HasIndex {
				b.WriteString(",")
				b.WriteString(reg32Name(m.Index, true))
				b.WriteString(fmt.Sprintf(",%d", m.Scale))
			}
		}
		b.WriteString(")")
		return b.String()

	default: // NASM, MASM
		var b strings.Builder
		hasSIB := m.HasIndex
		isMovx := instr.Op.Opcode == 0x0FB6 || instr.Op.Opcode == 0x0FB7 ||
			instr.Op.Opcode == 0x0FBE || instr.Op.Opcode == 0x0FBF
		if instr.Op.Flags&x86.OpFar != 0 {
			b.WriteString("far ")
		} else if isMovx || (instr.Op.Arg0 != x86.REG && instr.Op.Arg1 != x86.REG) {
			switch size {
			case 8:
				b.WriteString("byte ")
			case 16:
				b.WriteString("word ")
			case 32:
				b.WriteString("dword ")
			case 64:
				b.WriteString("qword ")
			case 80:
				b.WriteString("tword ")
			}
			if s == MASM && b.Len() > 0 {
				b.WriteString("ptr ")
			}
		}
		if s == NASM {
			b.WriteString("[")
		}
		if ctx.Segment != 0 {
			b.WriteString(segName(uint8(ctx.Segment-1), false))
			b.WriteString(":")
		}
		if s == MASM {
			b.WriteString("[")
		}
		if hasSIB {
			b.WriteString(reg32Name(m.Index, false))
			b.WriteString(fmt.Sprintf("*%d", m.Scale))
		}
		hasBaseExpr := !m.Direct
		if hasBaseExpr {
			if hasSIB {
				b.WriteString("+")
			}
			if instr.AddrSize == 16 {
				b.WriteString(modrmIndex(m, false))
			} else if m.HasBase {
				b.WriteString(reg32Name(m.Base, false))
			}
		}
		writeIntelDisp(&b, m, instr.AddrSize, hasSIB)
		b.WriteString("]")
		return b.String()
	}
}

// modrmIndex returns the fixed 16-bit addressing expression for a non-SIB
// ModR/M r/m field. Callers skip this entirely for direct (mod==0,rm==6)
// addressing, which has no base expression to print.
func modrmIndex(m x86.Mem, gas bool) string {
	switch {
	case m.HasBase && m.HasIndex:
		// base+index pairs map directly onto the fixed 16-bit table by
		// (base,index) identity; reconstructed from the register numbers
		// rather than re-deriving the original r/m field.
		return pairName(m.Base, m.Index, gas)
	case m.HasBase:
		if gas {
			return "%" + reg16Names[m.Base&7]
		}
		return reg16Names[m.Base&7]
	}
	if gas {
		return modrm16Gas[8]
	}
	return modrm16Masm[8]
}

func pairName(base, index uint8, gas bool) string {
	b, i := reg16Names[base&7], reg16Names[index&7]
	if gas {
		return "%" + b + ",%" + i
	}
	return b + "+" + i
}

func writeGASDisp(b *strings.Builder, m x86.Mem, addrsize uint8) {
	if m.Direct {
		if addrsize == 16 {
			fmt.Fprintf(b, "0x%04x", uint32(m.Disp)&0xffff)
		} else {
			fmt.Fprintf(b, "0x%08x", uint32(m.Disp))
		}
		return
	}
	switch m.DispSize {
	case 8:
		writeSignedHex(b, int64(m.Disp), 2, "0x%02x", "-0x%02x")
	case 16, 32:
		if addrsize == 16 {
			writeSignedHex(b, int64(int16(m.Disp)), 4, "0x%04x", "-0x%04x")
		} else {
			writeSignedHex(b, int64(m.Disp), 8, "0x%08x", "-0x%08x")
		}
	}
}

func writeIntelDisp(b *strings.Builder, m x86.Mem, addrsize uint8, hasSIB bool) {
	unsigned := !hasSIB && !m.HasBase && !m.HasIndex
	if m.Direct {
		if addrsize == 16 {
			fmt.Fprintf(b, "%04Xh", uint32(m.Disp)&0xffff)
		} else {
			fmt.Fprintf(b, "%08Xh", uint32(m.Disp))
		}
		return
	}
	switch m.DispSize {
	case 0:
		return
	case 8:
		writeSignedHex(b, int64(m.Disp), 2, "+%02Xh", "-%02Xh")
	case 16, 32:
		if addrsize == 16 {
			if unsigned {
				fmt.Fprintf(b, "%04Xh", uint32(m.Disp)&0xffff)
				return
			}
			writeSignedHex(b, int64(int16(m.Disp)), 4, "+%04Xh", "-%04Xh")
		} else {
			if unsigned {
				fmt.Fprintf(b, "%08Xh", uint32(m.Disp))
				return
			}
			writeSignedHex(b, int64(m.Disp), 8, "+%08Xh", "-%08Xh")
		}
	}
}

func writeSignedHex(b *strings.Builder, v int64, width int, posFmt, negFmt string) {
	if v < 0 {
		fmt.Fprintf(b, negFmt, -v)
	} else {
		fmt.Fprintf(b, posFmt, v)
	}
	_ = width
}
