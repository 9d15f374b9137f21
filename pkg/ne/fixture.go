package ne

import (
	"encoding/json"
	"fmt"
	"io"
)

// SegmentInput is the raw, unparsed segment record a Loader hands the core,
// matching the on-disk NE layout (see SPEC_FULL.md §6): start/length/flags/
// min_alloc plus the segment's code bytes and its packed 8-byte relocation
// records, exactly as they sit in the file.
type SegmentInput struct {
	Start    uint32 `json:"start"`
	Length   uint16 `json:"length"`
	Flags    uint16 `json:"flags"`
	MinAlloc uint16 `json:"min_alloc"`
	Code     []byte `json:"code"`
	RawRelocs [][8]byte `json:"relocations"`
}

// Loader is the external NE-header-parsing collaborator's contract: it
// supplies already-parsed structural data, never raw file bytes beyond a
// segment's own code/relocation region. Parsing the NE header itself is out
// of scope (spec.md §1 Non-goals).
type Loader interface {
	ImportNameTable() []byte
	EntryTable() []EntryPoint
	ImportModules() []ImportModule
	Segments() []SegmentInput
	// ProgramEntry returns the NE header's own csEntryPoint/ipEntryPoint,
	// scanned as a root in addition to every exported entry table row.
	ProgramEntry() (cs, ip uint16)
}

// fixture is the JSON document shape read by cmd/nedisasm, standing in for
// a real NE-loader implementation.
type fixture struct {
	ImportNames []byte         `json:"import_names"`
	Entries     []EntryPoint   `json:"entries"`
	Modules     []ImportModule `json:"modules"`
	Segments    []SegmentInput `json:"segments"`
	EntryCS     uint16         `json:"entry_cs"`
	EntryIP     uint16         `json:"entry_ip"`
}

// fixtureLoader adapts a decoded fixture to the Loader interface.
type fixtureLoader struct{ f fixture }

func (l *fixtureLoader) ImportNameTable() []byte       { return l.f.ImportNames }
func (l *fixtureLoader) EntryTable() []EntryPoint      { return l.f.Entries }
func (l *fixtureLoader) ImportModules() []ImportModule { return l.f.Modules }
func (l *fixtureLoader) Segments() []SegmentInput      { return l.f.Segments }
func (l *fixtureLoader) ProgramEntry() (uint16, uint16) {
	return l.f.EntryCS, l.f.EntryIP
}

// LoadFixture reads a JSON loader fixture from r.
func LoadFixture(r io.Reader) (Loader, error) {
	var f fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding loader fixture: %w", err)
	}
	return &fixtureLoader{f: f}, nil
}

// BuildSegments converts a Loader's raw segment inputs into ne.Segment
// values with freshly zeroed InstrFlags, relocation-parsed via store.
func BuildSegments(loader Loader, warn func(string)) ([]*Segment, *RelocationStore) {
	store := NewRelocationStore(loader.EntryTable(), loader.ImportModules(), loader.ImportNameTable())

	inputs := loader.Segments()
	segs := make([]*Segment, len(inputs))
	for i, in := range inputs {
		seg := &Segment{
			CS:       uint16(i + 1),
			Start:    in.Start,
			Length:   in.Length,
			Flags:    in.Flags,
			MinAlloc: in.MinAlloc,
			Code:     in.Code,
		}
		seg.InstrFlags = make([]InstrFlag, seg.Allocated())
		segs[i] = seg
	}

	for i, in := range inputs {
		raws := make([]RawRelocation, 0, len(in.RawRelocs))
		for _, rec := range in.RawRelocs {
			raw, err := ParseRawRelocation(rec[:])
			if err != nil {
				warn(err.Error())
				continue
			}
			raws = append(raws, raw)
		}
		store.AddSegment(segs[i], raws, warn)
	}

	return segs, store
}
