package ne

import (
	"strings"
	"testing"
)

const sampleFixture = `{
  "entries": [{"flags": 1, "segment": 1, "offset": 0, "name": "WinMain"}],
  "entry_cs": 1,
  "entry_ip": 0,
  "segments": [
    {"start": 0, "length": 3, "min_alloc": 3, "flags": 0,
     "code": "uAEA",
     "relocations": []}
  ]
}`

func TestLoadFixtureRoundTrip(t *testing.T) {
	loader, err := LoadFixture(strings.NewReader(sampleFixture))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	entries := loader.EntryTable()
	if len(entries) != 1 || entries[0].Name != "WinMain" {
		t.Fatalf("got entries %+v", entries)
	}

	cs, ip := loader.ProgramEntry()
	if cs != 1 || ip != 0 {
		t.Fatalf("got program entry %d:%04x, want 1:0000", cs, ip)
	}

	segs := loader.Segments()
	if len(segs) != 1 || segs[0].Length != 3 {
		t.Fatalf("got segments %+v", segs)
	}
}

func TestBuildSegmentsAssignsSequentialCS(t *testing.T) {
	loader, err := LoadFixture(strings.NewReader(sampleFixture))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	segs, store := BuildSegments(loader, func(string) {})
	if len(segs) != 1 || segs[0].CS != 1 {
		t.Fatalf("got segs %+v", segs)
	}
	if name := store.EntryName(1, 0); name != "WinMain" {
		t.Fatalf("got entry name %q", name)
	}
}
