package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Warner collects diagnostics on a side channel, as spec.md §7 requires: no
// error crosses the core boundary as a value. Byte-contextual diagnostics
// are prefixed "Warning: <cs>:<ip>: "; whole-segment diagnostics (cs==0 and
// ip==0 is not distinguishable from a real address, so callers that have no
// location use Warn instead) get the bare "Warning: " prefix.
type Warner struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	msgs  []string
}

func NewWarner(out io.Writer, colorize bool) *Warner {
	return &Warner{out: out, color: colorize}
}

// Warnf implements pkg/listing.Warner and pkg/scan's warn callback: a
// byte-contextual diagnostic tagged with the segment and offset it came
// from. pkg/ne's callback takes a plain string and is served by Warn.
func (w *Warner) Warnf(cs, ip uint16, format string, args ...any) {
	w.emit(fmt.Sprintf("%d:%04x: ", cs, ip) + fmt.Sprintf(format, args...))
}

// Warn records a diagnostic with no byte context, for whole-segment or
// file-level problems (a truncated entry table, a structural relocation
// error discovered before any scanning starts).
func (w *Warner) Warn(format string, args ...any) {
	w.emit(fmt.Sprintf(format, args...))
}

func (w *Warner) emit(msg string) {
	w.mu.Lock()
	w.msgs = append(w.msgs, msg)
	w.mu.Unlock()

	if w.color {
		color.New(color.FgYellow).Fprint(w.out, "Warning: ")
		fmt.Fprintln(w.out, msg)
		return
	}
	fmt.Fprintln(w.out, "Warning: "+msg)
}

// Messages returns every diagnostic recorded so far, in emission order.
func (w *Warner) Messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.msgs))
	copy(out, w.msgs)
	return out
}

func (w *Warner) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}
