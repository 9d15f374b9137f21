package syntax

import "github.com/limitlesswill/semblance/pkg/x86"

// MangleMnemonic returns the final mnemonic text for an instruction, applying
// the syntax- and prefix-dependent suffix/rewrite rules: stack-size suffixes
// under OP32, string-op size suffixes outside GAS, the aam/aad, cwde/cdq,
// jecxz special names, GAS's far "l" prefix, movzx/movsx exact spellings,
// and GAS's generic size-suffix-when-operand-is-ambiguous rule.
//
// name is the Op.Name already chosen by the decoder (post tie-break); this
// function never looks at raw opcode bytes beyond what Instruction exposes.
func MangleMnemonic(s Syntax, instr *x86.Instruction, name string) string {
	op := instr.Op

	switch {
	case op.Flags&x86.OpStack != 0 && instr.Prefix&x86.PrefixOp32 != 0:
		if op.Size == 16 {
			return name + "w"
		}
		if s == GAS {
			return name + "l"
		}
		return name + "d"

	case op.Flags&x86.OpString != 0 && s != GAS:
		switch op.Size {
		case 8:
			return name + "b"
		case 16:
			return name + "w"
		case 32:
			return name + "d"
		}
		return name

	case op.Opcode == 0x98 && instr.Prefix&x86.PrefixOp32 != 0:
		return "cwde"
	case op.Opcode == 0x99 && instr.Prefix&x86.PrefixOp32 != 0:
		return "cdq"
	case op.Opcode == 0xE3 && instr.Prefix&x86.PrefixAddr32 != 0:
		return "jecxz"
	case op.Opcode == 0xD4 && instr.Arg0 == 0:
		return "aam"
	case op.Opcode == 0xD5 && instr.Arg0 == 0:
		return "aad"

	case s == GAS:
		switch {
		case op.Flags&x86.OpFar != 0:
			return "l" + name
		case op.Opcode == 0x0FB6:
			if op.Size == 32 {
				return "movzbl"
			}
			return "movzbw"
		case op.Opcode == 0x0FB7:
			if op.Size == 32 {
				return "movzwl"
			}
			return "movzww"
		case op.Opcode == 0x0FBE:
			if op.Size == 32 {
				return "movsbl"
			}
			return "movsbw"
		case op.Opcode == 0x0FBF:
			if op.Size == 32 {
				return "movswl"
			}
			return "movsww"
		case op.Arg0 != x86.REG && op.Arg1 != x86.REG && instr.ModRM.IsMemory:
			switch {
			case op.Flags&x86.OpLL == x86.OpLL:
				return name + "ll"
			case op.Flags&x86.OpS != 0:
				return name + "s"
			case op.Flags&x86.OpL != 0:
				return name + "l"
			case op.Size == 80:
				return name + "t"
			case op.Size == 8:
				return name + "b"
			case op.Size == 16:
				return name + "w"
			case op.Size == 32:
				return name + "l"
			}
		}
	}
	return name
}
