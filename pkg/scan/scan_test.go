package scan

import (
	"testing"

	"github.com/limitlesswill/semblance/pkg/ne"
)

func newSeg(cs uint16, code []byte) *ne.Segment {
	seg := &ne.Segment{CS: cs, Length: uint16(len(code)), MinAlloc: uint16(len(code)), Code: code}
	seg.InstrFlags = make([]ne.InstrFlag, seg.Allocated())
	return seg
}

func TestScanStopsAtUnconditionalJump(t *testing.T) {
	// B8 01 00 (mov ax,1) ; EB FE (jmp $) ; 90 (nop, unreachable)
	seg := newSeg(1, []byte{0xB8, 0x01, 0x00, 0xEB, 0xFE, 0x90})
	store := ne.NewRelocationStore(nil, nil, nil)
	s := NewScanner([]*ne.Segment{seg}, store, func(cs, ip uint16, f string, a ...any) {})
	s.Scan([]ne.EntryPoint{{Flags: 1, Segment: 1, Offset: 0}}, 1, 0)

	if seg.InstrFlags[0]&ne.FlagValid == 0 {
		t.Fatal("offset 0 should be valid")
	}
	if seg.InstrFlags[3]&ne.FlagValid == 0 {
		t.Fatal("offset 3 (jmp) should be valid")
	}
	if seg.InstrFlags[5]&ne.FlagValid != 0 {
		t.Fatal("offset 5 (after unconditional jmp) should be unreached")
	}
}

func TestScanTagsCallTarget(t *testing.T) {
	// E8 01 00 (call +1 => target at offset 0+3+1=4) ; 90 (nop, padding) ; C3 at 4 (target)
	seg := newSeg(1, []byte{0xE8, 0x01, 0x00, 0x90, 0xC3})
	store := ne.NewRelocationStore(nil, nil, nil)
	s := NewScanner([]*ne.Segment{seg}, store, func(cs, ip uint16, f string, a ...any) {})
	s.Scan([]ne.EntryPoint{{Flags: 1, Segment: 1, Offset: 0}}, 1, 0)

	if seg.InstrFlags[4]&ne.FlagFunc == 0 {
		t.Fatal("call target should be tagged FlagFunc")
	}
	if seg.InstrFlags[4]&ne.FlagValid == 0 {
		t.Fatal("call target should have been scanned as valid")
	}
}

func TestScanSkipsNonExportedEntries(t *testing.T) {
	seg := newSeg(1, []byte{0x90, 0xC3})
	store := ne.NewRelocationStore(nil, nil, nil)
	s := NewScanner([]*ne.Segment{seg}, store, func(cs, ip uint16, f string, a ...any) {})
	s.Scan([]ne.EntryPoint{{Flags: 0, Segment: 1, Offset: 0}}, 1, 1)

	if seg.InstrFlags[0]&ne.FlagFunc != 0 {
		t.Fatal("non-exported entry should not be scanned as the program entry's own func tag")
	}
}
