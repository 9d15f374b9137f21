package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/syntax"
)

type collectWarner struct{ msgs []string }

func (w *collectWarner) Warnf(cs, ip uint16, format string, args ...any) {
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

func newPrinter(s syntax.Syntax) (*Printer, *collectWarner) {
	store := ne.NewRelocationStore(nil, nil, nil)
	w := &collectWarner{}
	return NewPrinter(Config{Syntax: s}, store, w), w
}

func scannedSeg(code []byte) *ne.Segment {
	seg := &ne.Segment{CS: 1, Length: uint16(len(code)), MinAlloc: uint16(len(code)), Code: code}
	seg.InstrFlags = make([]ne.InstrFlag, seg.Allocated())
	for i := range seg.InstrFlags {
		seg.InstrFlags[i] |= ne.FlagValid
	}
	return seg
}

func TestPrintMovImmNasm(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0xB8, 0x34, 0x12})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "mov\tax, 1234h") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintMovImmGas(t *testing.T) {
	p, _ := newPrinter(syntax.GAS)
	seg := scannedSeg([]byte{0xB8, 0x34, 0x12})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "mov\t$0x1234,%ax") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintShlByOneNasm(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0xD1, 0xE0})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "shl\tax, 1h") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintMovzxRegFormNasm(t *testing.T) {
	// 0F B6 C1 -> movzx ax, cl (16-bit default destination); register source
	// must not warn as memory-only.
	p, w := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x0F, 0xB6, 0xC1})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "movzx\tax, cl") {
		t.Fatalf("output = %q, want movzx ax, cl", out)
	}
	if len(w.msgs) != 0 {
		t.Fatalf("warnings = %v, want none", w.msgs)
	}
}

func TestPrintMovzxOp32Nasm(t *testing.T) {
	// 66 0F B6 C1 -> o32 movzx eax, cl (destination widened, source stays 8-bit).
	p, w := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x66, 0x0F, 0xB6, 0xC1})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "movzx\teax, cl") {
		t.Fatalf("output = %q, want movzx eax, cl", out)
	}
	if len(w.msgs) != 0 {
		t.Fatalf("warnings = %v, want none", w.msgs)
	}
}

func TestPrintInvalidSegmentRegisterWarnsInsteadOfPanicking(t *testing.T) {
	// 8E F0 -> mov seg6, ax; reg field 6 is not a valid segment selector
	// (only 0-5 are: es,cs,ss,ds,fs,gs) but is reachable through the real
	// ModRM reg field on this opcode, so it must warn and print a
	// placeholder instead of panicking.
	p, w := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x8E, 0xF0})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "mov\tseg6, ax") {
		t.Fatalf("output = %q, want a seg6 placeholder", out)
	}
	found := false
	for _, m := range w.msgs {
		if strings.Contains(m, "Invalid segment register 6") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want one about the invalid segment register", w.msgs)
	}
}

func TestPrintOp32MovNasm(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x66, 0xB8, 0x78, 0x56, 0x34, 0x12})
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "o32 mov\teax, 12345678h") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintFunctionLabel(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x90, 0xC3})
	seg.InstrFlags[0] |= ne.FlagFunc
	out := p.PrintDisassembly(seg)
	if !strings.Contains(out, "1:0000 <no name>:") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintSegmentFlagsHeader(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0xC3})
	seg.Flags = 0x2000
	out := p.PrintSegment(seg)
	if !strings.Contains(out, "Flags: 0x2000 (code, 32-bit)") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintDataSegmentPlaceholder(t *testing.T) {
	p, _ := newPrinter(syntax.NASM)
	seg := scannedSeg([]byte{0x01, 0x02})
	seg.Flags = 0x0001
	out := p.PrintSegment(seg)
	if !strings.Contains(out, "not disassembled") {
		t.Fatalf("got %q", out)
	}
}
