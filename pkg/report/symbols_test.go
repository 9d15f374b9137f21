package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableSortsBySegmentThenOffset(t *testing.T) {
	tbl := NewSymbolTable()
	tbl.Add(2, 0x10, "b")
	tbl.Add(1, 0x20, "a")
	tbl.Add(1, 0x10, "c")

	got := tbl.Symbols()
	names := make([]string, len(got))
	for i, sym := range got {
		names[i] = sym.Name
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestSymbolTableLen(t *testing.T) {
	tbl := NewSymbolTable()
	tbl.Add(1, 0, "entry")
	assert.Equal(t, 1, tbl.Len())
}

func TestSymbolTableWriteJSON(t *testing.T) {
	tbl := NewSymbolTable()
	tbl.Add(1, 0x1234, "WinMain")

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteJSON(&buf))
	assert.Contains(t, buf.String(), "WinMain")
}
