package listing

import (
	"fmt"

	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/x86"
)

// applyRelocations scans the bytes of the instruction at ip for a tagged
// relocation and, if found, rewrites arg0/arg1 with the resolved symbol
// text, returning a trailing comment when a richer name is available.
// Mirrors print_instr's relocation dispatch table (spec.md §4.5).
func (p *Printer) applyRelocations(seg *ne.Segment, ip uint16, n int, instr *x86.Instruction, arg0, arg1 string) (comment, newArg0, newArg1 string) {
	newArg0, newArg1 = arg0, arg1
	for i := ip; int(i) < int(ip)+n; i++ {
		if int(i) >= len(seg.InstrFlags) || seg.InstrFlags[i]&ne.FlagReloc == 0 {
			continue
		}
		r := p.store.At(seg.CS, i)
		if r == nil {
			p.warn.Warnf(seg.CS, i, "Byte tagged as relocated has no relocation record; this is a bug.")
			continue
		}

		var module string
		if r.Type == ne.ImportedOrdinal || r.Type == ne.ImportedName {
			module = p.store.ModuleName(r.TargetSegment)
		}

		switch {
		case instr.Op.Arg0 == x86.PTR32 && r.Size == 3:
			switch r.Type {
			case ne.Internal:
				newArg0 = fmt.Sprintf("%d:%04x", r.TargetSegment, r.TargetOffset)
				comment = r.Text
			case ne.ImportedOrdinal:
				newArg0 = fmt.Sprintf("%s.%d", module, r.TargetOffset)
				comment = p.store.ImportedName(r.TargetSegment, r.TargetOffset)
			case ne.ImportedName:
				newArg0 = fmt.Sprintf("%s.%s", module, p.store.ImportNameAt(r.TargetOffset))
			}

		case instr.Op.Arg0 == x86.PTR32 && r.Size == 2 && r.Type == ne.Internal:
			newArg0 = fmt.Sprintf("%d:%04x", r.TargetSegment, instr.Arg0)
			comment = p.store.EntryName(r.TargetSegment, uint16(instr.Arg0))

		case instr.Op.Arg0 == x86.IMM && r.Size == 2:
			newArg0, comment = p.formatSegReloc(r, module)
		case instr.Op.Arg1 == x86.IMM && r.Size == 2:
			newArg1, comment = p.formatSegReloc(r, module)

		case instr.Op.Arg0 == x86.IMM && r.Size == 5:
			newArg0, comment = p.formatOffsetReloc(r, module)
		case instr.Op.Arg1 == x86.IMM && r.Size == 5:
			newArg1, comment = p.formatOffsetReloc(r, module)

		default:
			p.warn.Warnf(seg.CS, ip, "unhandled relocation: size %d, type %d, instruction %02x %s",
				r.Size, r.Type, instr.Op.Opcode, instr.Op.Name)
		}
	}
	return comment, newArg0, newArg1
}

func (p *Printer) formatSegReloc(r *ne.Relocation, module string) (text, comment string) {
	switch r.Type {
	case ne.Internal:
		return fmt.Sprintf("seg %d", r.TargetSegment), ""
	case ne.ImportedOrdinal:
		return fmt.Sprintf("seg %s.%d", module, r.TargetOffset), p.store.ImportedName(r.TargetSegment, r.TargetOffset)
	case ne.ImportedName:
		return fmt.Sprintf("seg %s.%s", module, p.store.ImportNameAt(r.TargetOffset)), ""
	}
	return "", ""
}

func (p *Printer) formatOffsetReloc(r *ne.Relocation, module string) (text, comment string) {
	switch r.Type {
	case ne.Internal:
		return fmt.Sprintf("%04x", r.TargetOffset), ""
	case ne.ImportedOrdinal:
		return fmt.Sprintf("%s.%d", module, r.TargetOffset), p.store.ImportedName(r.TargetSegment, r.TargetOffset)
	case ne.ImportedName:
		return fmt.Sprintf("%s.%s", module, p.store.ImportNameAt(r.TargetOffset)), ""
	}
	return "", ""
}
