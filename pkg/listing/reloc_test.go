package listing

import (
	"testing"

	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/syntax"
	"github.com/limitlesswill/semblance/pkg/x86"
)

// TestApplyRelocationsProcessesEveryTaggedByte pins the fix for a loop that
// used to stop at the first relocation-tagged byte in an instruction's
// range. Two distinct relocations are tagged within one instruction; the
// later one in byte order must be the one that wins, proving both ran.
func TestApplyRelocationsProcessesEveryTaggedByte(t *testing.T) {
	// B8 34 12 -> mov ax, 0x1234 (Arg1 = IMM, the imm16 field is bytes 1-2)
	code := []byte{0xB8, 0x34, 0x12}
	seg := scannedSeg(code)

	store := ne.NewRelocationStore(nil, nil, nil)
	store.AddSegment(seg, []ne.RawRelocation{
		{Size: 2, Type: uint8(ne.Internal), Offset: 1, ModuleOrSeg: 5, OrdinalOrOff: 0x10},
		{Size: 2, Type: uint8(ne.Internal), Offset: 2, ModuleOrSeg: 6, OrdinalOrOff: 0x20},
	}, func(string) {})

	w := &collectWarner{}
	p := NewPrinter(Config{Syntax: syntax.NASM}, store, w)

	instr, n := x86.Decode(windowAt(seg, 0), false)
	_, _, arg1 := p.applyRelocations(seg, 0, n, &instr, "", "")

	if arg1 != "seg 6" {
		t.Fatalf("arg1 = %q, want %q (the second tagged byte's relocation, not just the first)", arg1, "seg 6")
	}
}
