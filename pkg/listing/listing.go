// Package listing formats decoded instructions and whole segments into the
// final text disassembly, including the relocation-driven operand rewrite
// and the mnemonic/prefix printing rules.
package listing

import (
	"fmt"
	"strings"

	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/syntax"
	"github.com/limitlesswill/semblance/pkg/x86"
)

// Config mirrors spec.md §6's configuration enumeration.
type Config struct {
	Syntax         syntax.Syntax
	DisassembleAll bool
	Demangle       func(string) string // nil means no demangling
}

// Warner receives every diagnostic the listing pass produces, tagged with
// the segment and offset (or untagged, for whole-segment messages).
type Warner interface {
	Warnf(cs, ip uint16, format string, args ...any)
}

// Printer renders one or more segments to a text listing.
type Printer struct {
	cfg   Config
	store *ne.RelocationStore
	warn  Warner
}

func NewPrinter(cfg Config, store *ne.RelocationStore, warn Warner) *Printer {
	return &Printer{cfg: cfg, store: store, warn: warn}
}

// PrintSegment renders one segment: the header line, the flag breakdown,
// and either a data placeholder or the full disassembly.
func (p *Printer) PrintSegment(seg *ne.Segment) string {
	var b strings.Builder
	alloc := seg.Allocated()
	fmt.Fprintf(&b, "Segment %d (start = 0x%x, length = 0x%x, minimum allocation = 0x%x):\n",
		seg.CS, seg.Start, seg.Length, alloc)
	fmt.Fprintf(&b, "    Flags: 0x%04x (%s)\n", seg.Flags, ne.DescribeSegmentFlags(seg.Flags))

	if seg.IsData() {
		b.WriteString(p.PrintDataSegment(seg))
	} else {
		b.WriteString(p.PrintDisassembly(seg))
	}
	return b.String()
}

// PrintDataSegment emits a one-line placeholder, standing in for the
// original's silent "/* todo */" skip so every segment still produces
// visible output (see SPEC_FULL.md §12).
func (p *Printer) PrintDataSegment(seg *ne.Segment) string {
	return "    /* data segment, not disassembled */\n"
}

// PrintDisassembly renders a code segment's instructions in order,
// skipping byte ranges never reached by the scanner, printing a function
// label ahead of each FlagFunc-tagged instruction.
func (p *Printer) PrintDisassembly(seg *ne.Segment) string {
	var b strings.Builder
	ip := uint16(0)

	for int(ip) < int(seg.Length) {
		if seg.InstrFlags[ip]&ne.FlagValid == 0 {
			skipped := p.skipInvalid(seg, &ip)
			if skipped {
				b.WriteString("     ...\n")
			}
			if int(ip) >= int(seg.Length) {
				break
			}
		}

		if seg.InstrFlags[ip]&ne.FlagFunc != 0 {
			name := p.store.EntryName(seg.CS, ip)
			if name == "" {
				name = "no name"
			} else if p.cfg.Demangle != nil {
				name = p.cfg.Demangle(name)
			}
			fmt.Fprintf(&b, "\n%d:%04x <%s>:\n", seg.CS, ip, name)
		}

		n := p.printInstruction(&b, seg, ip)
		if n == 0 {
			n = 1
		}
		ip += uint16(n)
	}
	return b.String()
}

// skipInvalid advances ip past a run of un-scanned bytes, matching the
// original's slightly different behavior under --disassemble-all (only
// skip literal zero bytes) versus the default (skip anything unscanned).
// Returns whether anything was actually skipped.
func (p *Printer) skipInvalid(seg *ne.Segment, ip *uint16) bool {
	start := *ip
	if p.cfg.DisassembleAll {
		for int(*ip) < len(seg.Code) && seg.Code[*ip] == 0 {
			*ip++
		}
	} else {
		for int(*ip) < int(seg.Length) && seg.InstrFlags[*ip]&ne.FlagValid == 0 {
			*ip++
		}
	}
	return *ip != start
}

// printInstruction decodes and formats one instruction at ip, returning the
// number of bytes consumed (at least 1, so callers always make progress).
func (p *Printer) printInstruction(b *strings.Builder, seg *ne.Segment, ip uint16) int {
	window := windowAt(seg, ip)
	instr, n := x86.Decode(window, seg.Is32Bit())
	if n == 0 {
		n = 1
	}

	s := p.cfg.Syntax
	segOverride := instr.Prefix.SegOverride()
	ctx := syntax.Context{Instr: &instr, Segment: segOverride}

	arg0 := p.formatArg(s, ctx, instr.Op.Arg0, instr.Arg0, seg.CS, ip, n, &instr)
	arg1 := p.formatArg(s, ctx, instr.Op.Arg1, instr.Arg1, seg.CS, ip, n, &instr)
	var arg2 string
	switch {
	case instr.Op.Flags&x86.OpArg2Imm != 0:
		arg2 = syntax.FormatOperand(s, ctx, x86.IMM, instr.Arg2)
	case instr.Op.Flags&x86.OpArg2Imm8 != 0:
		arg2 = syntax.FormatOperand(s, ctx, x86.IMM8, instr.Arg2)
	case instr.Op.Flags&x86.OpArg2CL != 0:
		arg2 = syntax.FormatOperand(s, ctx, x86.CL, 0)
	}

	usedMem := usesMemory(instr.Op.Arg0) || usesMemory(instr.Op.Arg1) || instr.ModRM.IsMemory

	comment, arg0, arg1 := p.applyRelocations(seg, ip, n, &instr, arg0, arg1)
	if comment == "" && instr.Op.Arg0 == x86.REL16 {
		target := relTarget(ip, n, instr.Arg0)
		comment = p.store.EntryName(seg.CS, target)
	}

	name := instr.Op.Name
	if name == "" {
		p.warn.Warnf(seg.CS, ip, "Unknown opcode %02X (extension %d)", instr.Op.Opcode, instr.Op.Subcode)
		name = "?"
	} else {
		name = syntax.MangleMnemonic(s, &instr, name)
	}

	fmt.Fprintf(b, "%4d.%04x:\t", seg.CS, ip)
	p.writeBytes(b, seg, ip, n, &instr)

	if segOverride != 0 {
		overridable := usedMem && !(instr.Op.Arg0 == x86.ESDI || (instr.Op.Arg1 == x86.ESDI && instr.Op.Arg0 != x86.DSSI))
		if !overridable {
			p.warn.Warnf(seg.CS, ip, "Segment prefix used with opcode %#02x %s", instr.Op.Opcode, name)
			fmt.Fprintf(b, "%s ", segName6(segOverride-1))
		}
	}
	if instr.Prefix&x86.PrefixOp32 != 0 {
		if instr.Op.Size != 16 && instr.Op.Size != 32 {
			p.warn.Warnf(seg.CS, ip, "Operand-size override used with opcode %02X %s", instr.Op.Opcode, name)
		}
		if s == syntax.GAS {
			b.WriteString("data32 ")
		} else {
			b.WriteString("o32 ")
		}
	}
	if instr.Prefix&x86.PrefixAddr32 != 0 && s == syntax.NASM && instr.Op.Flags&x86.OpString != 0 {
		b.WriteString("a32 ")
	} else if instr.Prefix&x86.PrefixAddr32 != 0 && !usedMem && instr.Op.Opcode != 0xE3 {
		p.warn.Warnf(seg.CS, ip, "Address-size prefix used with opcode %#02x %s", instr.Op.Opcode, name)
		if s == syntax.GAS {
			b.WriteString("addr32 ")
		} else {
			b.WriteString("a32 ")
		}
	}
	if instr.Prefix&x86.PrefixLock != 0 {
		if instr.Op.Flags&x86.OpLock == 0 {
			p.warn.Warnf(seg.CS, ip, "lock prefix used with opcode %#02x %s", instr.Op.Opcode, name)
		}
		b.WriteString("lock ")
	}
	if instr.Prefix&x86.PrefixRepne != 0 {
		if instr.Op.Flags&x86.OpRepne == 0 {
			p.warn.Warnf(seg.CS, ip, "repne prefix used with opcode %#02x %s", instr.Op.Opcode, name)
		}
		b.WriteString("repne ")
	}
	if instr.Prefix&x86.PrefixRepe != 0 {
		if instr.Op.Flags&x86.OpRepe == 0 {
			p.warn.Warnf(seg.CS, ip, "repe prefix used with opcode %#02x %s", instr.Op.Opcode, name)
		}
		if instr.Prefix&x86.PrefixRepne != 0 {
			b.WriteString("repe ")
		} else {
			b.WriteString("rep ")
		}
	}

	b.WriteString(name)
	if arg0 != "" || arg1 != "" {
		b.WriteString("\t")
	}
	if s == syntax.GAS {
		if arg1 != "" {
			b.WriteString(arg1 + ",")
		}
		b.WriteString(arg0)
		if arg2 != "" {
			b.WriteString("," + arg2)
		}
	} else {
		b.WriteString(arg0)
		if arg0 != "" && arg1 != "" {
			b.WriteString(", ")
		}
		b.WriteString(arg1)
		if arg2 != "" {
			b.WriteString(", " + arg2)
		}
	}
	if comment != "" {
		fmt.Fprintf(b, "\t<%s>", comment)
	}
	b.WriteString("\n")
	return n
}

func (p *Printer) formatArg(s syntax.Syntax, ctx syntax.Context, role x86.Arg, value uint32, cs, ip uint16, n int, instr *x86.Instruction) string {
	if role == x86.MEM && !instr.ModRM.IsMemory {
		p.warn.Warnf(cs, ip, "ModRM byte has mod 3, but opcode only allows accessing memory.")
	}
	switch role {
	case x86.SEG16:
		if value > 5 {
			p.warn.Warnf(cs, ip, "Invalid segment register %d", value)
		}
	case x86.CR32:
		if value == 1 || value > 4 {
			p.warn.Warnf(cs, ip, "Invalid control register %d", value)
		}
	case x86.TR32:
		if value < 3 {
			p.warn.Warnf(cs, ip, "Invalid test register %d", value)
		}
	}
	if role == x86.REL8 || role == x86.REL16 {
		value = uint32(relTarget(ip, n, value))
	}
	return syntax.FormatOperand(s, ctx, role, value)
}

func usesMemory(a x86.Arg) bool {
	switch a {
	case x86.RM, x86.MEM, x86.MOFFS16, x86.DSBX, x86.DSSI, x86.ESDI:
		return true
	}
	return false
}

func relTarget(ip uint16, n int, disp uint32) uint16 {
	return uint16(int32(ip) + int32(n) + int32(disp))
}

var seg16Names = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}

func segName6(n int) string { return seg16Names[n&7] }

func windowAt(seg *ne.Segment, ip uint16) []byte {
	buf := make([]byte, x86.MaxInstrLen)
	if int(ip) < len(seg.Code) {
		copy(buf, seg.Code[ip:])
	}
	return buf
}
