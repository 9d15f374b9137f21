// Package report collects the two kinds of output a disassembly run
// produces besides the listing itself: the discovered function symbols and
// the ordered diagnostic log.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Symbol is one discovered function start, keyed by segment:offset.
type Symbol struct {
	Segment uint16 `json:"segment"`
	Offset  uint16 `json:"offset"`
	Name    string `json:"name"`
}

// SymbolTable accumulates discovered function starts (cmd/nedisasm adds the
// FlagFunc bytes once the scan is done), and returns them sorted by
// (segment, offset) for listing and export.
type SymbolTable struct {
	mu      sync.Mutex
	symbols []Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Add records a discovered function start. Name may be empty, meaning the
// entry table carried no name for it ("no name" in the listing).
func (t *SymbolTable) Add(segment, offset uint16, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols = append(t.symbols, Symbol{Segment: segment, Offset: offset, Name: name})
}

// Symbols returns a copy of all recorded symbols, sorted by segment then
// offset.
func (t *SymbolTable) Symbols() []Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Segment != out[j].Segment {
			return out[i].Segment < out[j].Segment
		}
		return out[i].Offset < out[j].Offset
	})
	return out
}

func (t *SymbolTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.symbols)
}

// WriteJSON exports the symbol table as a sidecar JSON document. This is
// not the listing's format (spec.md leaves that stable-only to a future
// version); it is a convenience dump for tooling built on top of this one.
func (t *SymbolTable) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Symbols())
}
