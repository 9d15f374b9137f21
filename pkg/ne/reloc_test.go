package ne

import "testing"

func TestDescribeSegmentFlagsCodeAndUnknown(t *testing.T) {
	got := DescribeSegmentFlags(0x0400)
	want := "code, (unknown flags 0x0400)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDescribeSegmentFlagsDataReadOnly(t *testing.T) {
	got := DescribeSegmentFlags(0x0081)
	want := "data, read-only"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRelocationChainFollowingAbsolute(t *testing.T) {
	// Chain at offset 0: word at [0]=2 (next link), word at [2]=0xFFFF (terminator).
	code := []byte{0x02, 0x00, 0xFF, 0xFF}
	seg := &Segment{CS: 1, Length: uint16(len(code)), MinAlloc: uint16(len(code)), Code: code}
	seg.InstrFlags = make([]InstrFlag, seg.Allocated())

	store := NewRelocationStore(nil, nil, nil)
	raw := RawRelocation{Size: 2, Type: 1, Offset: 0, ModuleOrSeg: 1, OrdinalOrOff: 5}
	var warned []string
	store.AddSegment(seg, []RawRelocation{raw}, func(s string) { warned = append(warned, s) })

	if len(seg.Relocs) != 1 {
		t.Fatalf("relocs = %d, want 1", len(seg.Relocs))
	}
	r := seg.Relocs[0]
	if len(r.Offsets) != 2 || r.Offsets[0] != 0 || r.Offsets[1] != 2 {
		t.Fatalf("offsets = %v, want [0 2]", r.Offsets)
	}
	if seg.InstrFlags[0]&FlagReloc == 0 || seg.InstrFlags[2]&FlagReloc == 0 {
		t.Fatal("expected both chain offsets tagged FlagReloc")
	}
	if len(warned) != 0 {
		t.Fatalf("unexpected warnings: %v", warned)
	}
}

func TestRelocationOutOfBoundsWarns(t *testing.T) {
	code := []byte{0xFF, 0xFF}
	seg := &Segment{CS: 1, Length: 2, MinAlloc: 2, Code: code}
	seg.InstrFlags = make([]InstrFlag, seg.Allocated())

	store := NewRelocationStore(nil, nil, nil)
	raw := RawRelocation{Size: 2, Type: 0, Offset: 10, ModuleOrSeg: 1, OrdinalOrOff: 0}
	var warned []string
	store.AddSegment(seg, []RawRelocation{raw}, func(s string) { warned = append(warned, s) })

	if len(warned) == 0 {
		t.Fatal("expected an out-of-bounds warning")
	}
	if len(seg.Relocs[0].Offsets) != 0 {
		t.Fatalf("offsets = %v, want none recorded", seg.Relocs[0].Offsets)
	}
}

func TestOSFixupSkipsTargetResolution(t *testing.T) {
	code := []byte{0xFF, 0xFF}
	seg := &Segment{CS: 1, Length: 2, MinAlloc: 2, Code: code}
	seg.InstrFlags = make([]InstrFlag, seg.Allocated())

	store := NewRelocationStore(nil, nil, nil)
	raw := RawRelocation{Size: 2, Type: 3, Offset: 0, ModuleOrSeg: 9, OrdinalOrOff: 9}
	store.AddSegment(seg, []RawRelocation{raw}, func(string) {})

	r := seg.Relocs[0]
	if r.Type != OSFixup || r.TargetSegment != 0 || r.TargetOffset != 0 {
		t.Fatalf("got %+v, want zeroed target fields", r)
	}
}
