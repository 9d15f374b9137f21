// Package ne holds the NE segment data model (segments, relocations, entry
// points, imported modules) and the RelocationStore that parses and
// resolves relocation records against it.
package ne

// EntryPoint is one row of the NE entry table: an exported or private
// function/data location, optionally named.
type EntryPoint struct {
	Flags   uint8 // bit 0: exported
	Segment uint8 // 0xfe means "absolute/constant", never scanned
	Offset  uint16
	Name    string // may be empty
}

// Exported reports whether this entry point should seed a reachability scan.
func (e EntryPoint) Exported() bool { return e.Flags&1 != 0 }

// Export is one named ordinal exported by an imported module, as recorded
// in a loader-supplied specfile/fixture.
type Export struct {
	Ordinal uint16
	Name    string
}

// ImportModule is one module an NE file imports symbols from.
type ImportModule struct {
	Name    string
	Exports []Export
}

// ImportedName looks up the symbol name for an ordinal, or "" if unknown.
func (m ImportModule) ImportedName(ordinal uint16) string {
	for _, e := range m.Exports {
		if e.Ordinal == ordinal {
			return e.Name
		}
	}
	return ""
}

// RelocType is the low 2 bits of a relocation record's type byte.
type RelocType uint8

const (
	Internal       RelocType = 0
	ImportedOrdinal RelocType = 1
	ImportedName   RelocType = 2
	OSFixup        RelocType = 3
)

// Relocation is one parsed relocation record with its followed offset chain.
// The additive bit (bit 2 of the raw type byte) affects only chain-following
// in AddSegment and is not kept here.
type Relocation struct {
	Size    uint8 // 2: 16-bit immediate/segment; 3: 32-bit far pointer; 5: 16-bit offset
	Type    RelocType
	Offsets []uint16 // every byte offset in the segment this relocation patches

	TargetSegment uint16 // for Internal: NE segment number; for Imported*: module index (1-based)
	TargetOffset  uint16 // for Internal: offset; for Imported*: ordinal or name-table offset

	Text string // resolved symbol name, if any, filled in at parse time
}

// Segment is one NE code or data segment together with its per-byte
// instruction-flag bitmap (populated by pkg/scan) and relocation table.
type Segment struct {
	CS       uint16 // 1-based segment number
	Start    uint32 // file offset of segment data
	Length   uint16
	Flags    uint16
	MinAlloc uint16

	Code  []byte // raw segment bytes, length == Length (or less, caller pads)
	Relocs []Relocation

	// InstrFlags is indexed by in-segment offset, sized Allocated() (data may
	// "hang over" Length, matching the original's allocation rationale).
	InstrFlags []InstrFlag
}

// InstrFlag marks what pkg/scan and pkg/listing have learned about one byte
// offset within a segment.
type InstrFlag uint8

const (
	FlagScanned InstrFlag = 1 << iota
	FlagValid
	FlagJump
	FlagFunc
	FlagFar
	FlagReloc
)

// Allocated reports the allocation size used for bounds checks and the
// instruction-flag bitmap: MinAlloc, or 65536 when MinAlloc reads 0 (the
// NE convention for "a full 64K segment").
func (s *Segment) Allocated() int {
	if s.MinAlloc == 0 {
		return 65536
	}
	return int(s.MinAlloc)
}

// IsData reports whether this is a data segment (bit 0 of Flags).
func (s *Segment) IsData() bool { return s.Flags&0x0001 != 0 }

// Is32Bit reports whether code in this segment defaults to 32-bit operand
// and address size (bit 13 of Flags, the USE32 bit).
func (s *Segment) Is32Bit() bool { return s.Flags&0x2000 != 0 }

// segmentFlagBits mirrors print_segment_flags's bit-to-description table.
var segmentFlagBits = []struct {
	mask uint16
	text string
}{
	{0x0002, "allocated"},
	{0x0004, "loaded"},
	{0x0008, "iterated"},
	{0x0010, "moveable"},
	{0x0020, "shareable"},
	{0x0040, "preload"},
}

var segmentFlagBitsAfterReadOnly = []struct {
	mask uint16
	text string
}{
	{0x0100, "has relocation data"},
	{0x0800, "self-loading"},
	{0x1000, "discardable"},
	{0x2000, "32-bit"},
}

// unknownFlagMask is the original's own catalog of bits it never names,
// including the unidentified 0x0400 bit ("WINE doesn't know what it is").
const unknownFlagMask = 0xc608

// DescribeSegmentFlags renders the human-readable flag breakdown the
// original prints ahead of each segment's disassembly.
func DescribeSegmentFlags(flags uint16) string {
	var s string
	if flags&0x0001 != 0 {
		s = "data"
	} else {
		s = "code"
	}
	for _, b := range segmentFlagBits {
		if flags&b.mask != 0 {
			s += ", " + b.text
		}
	}
	if flags&0x0080 != 0 {
		if flags&0x0001 != 0 {
			s += ", read-only"
		} else {
			s += ", execute-only"
		}
	}
	for _, b := range segmentFlagBitsAfterReadOnly {
		if flags&b.mask != 0 {
			s += ", " + b.text
		}
	}
	if flags&unknownFlagMask != 0 {
		s += hexSuffix(flags & unknownFlagMask)
	}
	return s
}

func hexSuffix(v uint16) string {
	const hexDigits = "0123456789abcdef"
	buf := [4]byte{hexDigits[v>>12&0xf], hexDigits[v>>8&0xf], hexDigits[v>>4&0xf], hexDigits[v&0xf]}
	return ", (unknown flags 0x" + string(buf[:]) + ")"
}
