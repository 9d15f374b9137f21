package ne

import "fmt"

// RelocationStore resolves a segment's relocation table: which byte offsets
// carry relocation data, and what each one's target name/value is.
type RelocationStore struct {
	entries      []EntryPoint
	modules      []ImportModule
	importNames  []byte

	bySegment map[uint16][]Relocation // keyed by Segment.CS
	byOffset  map[relKey]*Relocation
}

type relKey struct {
	cs  uint16
	off uint16
}

// NewRelocationStore builds a store from the loader's entry table, import
// module table, and import name table. Segment relocation data is attached
// per segment via AddSegment.
func NewRelocationStore(entries []EntryPoint, modules []ImportModule, importNames []byte) *RelocationStore {
	return &RelocationStore{
		entries:     entries,
		modules:     modules,
		importNames: importNames,
		bySegment:   make(map[uint16][]Relocation),
		byOffset:    make(map[relKey]*Relocation),
	}
}

// EntryName returns the name of the entry point at cs:ip, or "" if none.
func (rs *RelocationStore) EntryName(cs uint16, ip uint16) string {
	for _, e := range rs.entries {
		if uint16(e.Segment) == cs && e.Offset == ip {
			return e.Name
		}
	}
	return ""
}

// ImportedName resolves module.ordinal to a symbol name, or "" if unknown
// or module is out of range.
func (rs *RelocationStore) ImportedName(module uint16, ordinal uint16) string {
	if module == 0 || int(module) > len(rs.modules) {
		return ""
	}
	return rs.modules[module-1].ImportedName(ordinal)
}

// ModuleName returns the import module's name, or "" if out of range.
func (rs *RelocationStore) ModuleName(module uint16) string {
	if module == 0 || int(module) > len(rs.modules) {
		return ""
	}
	return rs.modules[module-1].Name
}

// ImportNameAt reads a length-prefixed Pascal string from the import name
// table at byte offset off, as used by ImportedName-by-name relocations.
func (rs *RelocationStore) ImportNameAt(off uint16) string {
	if int(off) >= len(rs.importNames) {
		return ""
	}
	n := int(rs.importNames[off])
	start := int(off) + 1
	end := start + n
	if end > len(rs.importNames) {
		end = len(rs.importNames)
	}
	return string(rs.importNames[start:end])
}

// RawRelocation is the on-disk 8-byte relocation record layout, exactly as
// read_reloc in the original reads it, before chain-following.
type RawRelocation struct {
	Size        uint8
	Type        uint8 // low 2 bits = RelocType, bit 2 = additive chain
	Offset      uint16
	ModuleOrSeg uint16
	OrdinalOrOff uint16
}

// ParseRawRelocation decodes one 8-byte record (as they appear packed in an
// NE segment's relocation table) into a RawRelocation.
func ParseRawRelocation(b []byte) (RawRelocation, error) {
	if len(b) < 8 {
		return RawRelocation{}, fmt.Errorf("relocation record too short: %d bytes", len(b))
	}
	return RawRelocation{
		Size:         b[0],
		Type:         b[1],
		Offset:       uint16(b[2]) | uint16(b[3])<<8,
		ModuleOrSeg:  uint16(b[4]) | uint16(b[5])<<8,
		OrdinalOrOff: uint16(b[6]) | uint16(b[7])<<8,
	}, nil
}

// AddSegment parses and chain-follows every raw relocation record for
// seg, tagging seg.InstrFlags[offset] |= FlagReloc for each offset the
// chain touches, and records the resolved symbol text up front.
//
// seg.Length bounds the chain walk (a chain offset at or past length is a
// loader-data anomaly the original tolerates by truncating the chain and
// warning); warn receives that message, or any other non-fatal diagnostic.
func (rs *RelocationStore) AddSegment(seg *Segment, raws []RawRelocation, warn func(string)) {
	var out []Relocation
	for _, raw := range raws {
		r := Relocation{Size: raw.Size, Type: RelocType(raw.Type & 3)}

		switch r.Type {
		case Internal:
			if raw.ModuleOrSeg == 0xff {
				ord := int(raw.OrdinalOrOff)
				if ord >= 1 && ord <= len(rs.entries) {
					e := rs.entries[ord-1]
					r.TargetSegment, r.TargetOffset = uint16(e.Segment), e.Offset
				}
			} else {
				r.TargetSegment, r.TargetOffset = raw.ModuleOrSeg, raw.OrdinalOrOff
			}
			r.Text = rs.EntryName(r.TargetSegment, r.TargetOffset)
		case ImportedOrdinal, ImportedName:
			r.TargetSegment, r.TargetOffset = raw.ModuleOrSeg, raw.OrdinalOrOff
		case OSFixup:
			// Unresolved per spec.md Open Question #2: no target, chain
			// bookkeeping below still runs so offsets stay tagged FlagReloc.
		}

		additive := raw.Type&4 != 0
		cursor := raw.Offset
		for {
			if cursor >= seg.Length {
				warn(fmt.Sprintf("Offset %04x exceeds segment length (%04x).", cursor, seg.Length))
				break
			}
			r.Offsets = append(r.Offsets, cursor)
			if int(cursor)+2 > len(seg.Code) {
				break
			}
			next := uint16(seg.Code[cursor]) | uint16(seg.Code[cursor+1])<<8
			if additive {
				cursor += next
			} else {
				cursor = next
			}
			if next >= 0xFFFB {
				break
			}
		}
		out = append(out, r)
	}

	rs.bySegment[seg.CS] = out
	for i := range out {
		r := &out[i]
		for _, off := range r.Offsets {
			if int(off) < len(seg.InstrFlags) {
				seg.InstrFlags[off] |= FlagReloc
			}
			rs.byOffset[relKey{seg.CS, off}] = r
		}
	}
	seg.Relocs = out
}

// At returns the relocation tagged at cs:offset, or nil if the byte was
// never marked FlagReloc (a caller bug, matching get_reloc's invariant).
func (rs *RelocationStore) At(cs, offset uint16) *Relocation {
	return rs.byOffset[relKey{cs, offset}]
}
