package listing

import (
	"fmt"
	"strings"

	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/syntax"
	"github.com/limitlesswill/semblance/pkg/x86"
)

// writeBytes prints the hex-byte column: up to 7 bytes, blank-padded, with
// the trailing space replaced by '>' when the instruction is tagged as a
// jump target (FlagJump), or '>>' when it is also a far target; call targets
// tagged only FlagFunc get no marker. Wraps onto a continuation line past
// 7 bytes.
func (p *Printer) writeBytes(b *strings.Builder, seg *ne.Segment, ip uint16, n int, instr *x86.Instruction) {
	col := &strings.Builder{}
	shown := n
	if shown > 7 {
		shown = 7
	}
	for i := 0; i < shown; i++ {
		if int(ip)+i < len(seg.Code) {
			fmt.Fprintf(col, "%02x ", seg.Code[int(ip)+i])
		} else {
			col.WriteString("00 ")
		}
	}
	for i := shown; i < 7; i++ {
		col.WriteString("   ")
	}

	out := []byte(col.String())
	flags := seg.InstrFlags[ip]
	if flags&ne.FlagJump != 0 && len(out) > 0 {
		out[len(out)-1] = '>'
		if flags&ne.FlagFar != 0 && len(out) > 1 {
			out[len(out)-2] = '>'
		}
	}
	b.Write(out)

	if n > 7 {
		if p.cfg.Syntax == syntax.GAS {
			fmt.Fprintf(b, "\n%4d.%04x:\t", seg.CS, ip+7)
		} else {
			b.WriteString("\n\t\t")
		}
		tail := &strings.Builder{}
		for i := 7; i < n; i++ {
			if int(ip)+i < len(seg.Code) {
				fmt.Fprintf(tail, "%02x ", seg.Code[int(ip)+i])
			} else {
				tail.WriteString("00 ")
			}
		}
		b.WriteString(strings.TrimSuffix(tail.String(), " "))
	}
}
