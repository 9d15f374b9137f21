package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarnerByteContextualPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWarner(&buf, false)
	w.Warnf(1, 0x20, "Unknown opcode %02X", 0xFE)

	got := buf.String()
	if !strings.HasPrefix(got, "Warning: 1:0020: Unknown opcode FE") {
		t.Fatalf("got %q", got)
	}
}

func TestWarnerBarePrefix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWarner(&buf, false)
	w.Warn("entry point beyond segment length")

	got := buf.String()
	if !strings.HasPrefix(got, "Warning: entry point beyond segment length") {
		t.Fatalf("got %q", got)
	}
}

func TestWarnerRecordsMessages(t *testing.T) {
	var buf bytes.Buffer
	w := NewWarner(&buf, false)
	w.Warnf(1, 0, "first")
	w.Warn("second")

	if w.Len() != 2 {
		t.Fatalf("got %d messages, want 2", w.Len())
	}
	msgs := w.Messages()
	if msgs[0] != "1:0000: first" || msgs[1] != "second" {
		t.Fatalf("got %v", msgs)
	}
}
