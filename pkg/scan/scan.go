// Package scan walks the control-flow graph of a set of NE segments
// starting from known entry points, marking which bytes begin a valid
// instruction, which are jumped/called to, and which begin a function.
package scan

import (
	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/x86"
)

// Scanner performs the reachability walk described in spec.md §4.4, using
// an explicit worklist rather than recursion so stack depth never grows
// with the size of the call graph being explored.
type Scanner struct {
	segs  map[uint16]*ne.Segment
	store *ne.RelocationStore
	warn  func(cs, ip uint16, format string, args ...any)

	work []work
}

type work struct {
	cs, ip uint16
}

// NewScanner builds a Scanner over segs (indexed by Segment.CS) and store.
// warn receives every diagnostic the walk produces, tagged with the segment
// and offset it occurred at (see spec.md §7: warnings are a side channel,
// never a returned error).
func NewScanner(segs []*ne.Segment, store *ne.RelocationStore, warn func(cs, ip uint16, format string, args ...any)) *Scanner {
	m := make(map[uint16]*ne.Segment, len(segs))
	for _, s := range segs {
		m[s.CS] = s
	}
	return &Scanner{segs: m, store: store, warn: warn}
}

// Scan walks every exported entry point and the program's own entry point,
// then drains the worklist. Roots are queued in print_segments's order,
// entry-table exports first and the program entry point last; the LIFO
// worklist then walks them in reverse, program entry point first.
func (s *Scanner) Scan(entries []ne.EntryPoint, progCS, progIP uint16) {
	for _, e := range entries {
		if e.Segment == 0xfe || !e.Exported() {
			continue
		}
		seg := s.segs[uint16(e.Segment)]
		if seg == nil || int(e.Offset) >= len(seg.InstrFlags) {
			continue
		}
		seg.InstrFlags[e.Offset] |= ne.FlagFunc
		s.push(uint16(e.Segment), e.Offset)
	}

	if progSeg := s.segs[progCS]; progSeg != nil {
		if int(progIP) >= int(progSeg.Length) || int(progIP) >= len(progSeg.InstrFlags) {
			s.warn(progCS, progIP, "Entry point %d:%04x exceeds segment length (%04x)", progCS, progIP, progSeg.Length)
		} else {
			progSeg.InstrFlags[progIP] |= ne.FlagFunc
			s.push(progCS, progIP)
		}
	}

	s.drain()
}

func (s *Scanner) push(cs, ip uint16) { s.work = append(s.work, work{cs, ip}) }

func (s *Scanner) pop() (work, bool) {
	if len(s.work) == 0 {
		return work{}, false
	}
	n := len(s.work) - 1
	w := s.work[n]
	s.work = s.work[:n]
	return w, true
}

func (s *Scanner) drain() {
	for {
		w, ok := s.pop()
		if !ok {
			return
		}
		s.scanOne(w.cs, w.ip)
	}
}

// scanOne walks forward linearly from cs:ip until it hits an already
// scanned byte, an unconditional transfer (jmp/ret), or the segment end,
// pushing any edges it discovers (near/far call and jump targets) onto the
// worklist rather than recursing into them.
func (s *Scanner) scanOne(cs, ip uint16) {
	seg := s.segs[cs]
	if seg == nil {
		return
	}
	if int(ip) >= len(seg.Code) && int(ip) >= int(seg.Length) {
		s.warn(cs, ip, "Attempt to scan past end of segment.")
		return
	}

	for int(ip) < int(seg.Length) {
		if int(ip) >= len(seg.InstrFlags) {
			return
		}
		if seg.InstrFlags[ip]&ne.FlagScanned != 0 {
			return
		}

		window := windowAt(seg, ip)
		instr, n := x86.Decode(window, seg.Is32Bit())
		if n == 0 {
			return
		}

		seg.InstrFlags[ip] |= ne.FlagValid
		for i := 0; i < n && int(ip)+i < len(seg.InstrFlags); i++ {
			seg.InstrFlags[int(ip)+i] |= ne.FlagScanned
		}

		switch instr.Op.Arg0 {
		case x86.PTR32:
			if s.handleFarTransfer(cs, ip, n, &instr) {
				return
			}
		case x86.REL8, x86.REL16:
			target := uint16(int32(ip) + int32(n) + int32(instr.Arg0))
			if instr.Op.Name == "call" {
				tagIfInBounds(seg, target, ne.FlagFunc)
			} else {
				tagIfInBounds(seg, target, ne.FlagJump)
			}
			s.push(cs, target)
			if instr.Op.Name == "jmp" {
				return
			}
		default:
			if instr.Op.Name == "jmp" || instr.Op.Name == "ret" || instr.Op.Name == "retf" {
				return
			}
		}

		ip += uint16(n)
	}

	s.warn(cs, ip, "Scan reached the end of segment.")
}

// handleFarTransfer resolves a PTR32-argument call/jmp's relocation-carried
// target, tagging the destination segment and pushing it for scanning. It
// returns true if the caller should stop walking this segment (matching the
// original's unconditional-jmp early return).
func (s *Scanner) handleFarTransfer(cs, ip uint16, n int, instr *x86.Instruction) bool {
	for i := ip; int(i) < int(ip)+n; i++ {
		r := s.store.At(cs, i)
		if r == nil {
			continue
		}
		if r.Type != ne.Internal {
			break
		}
		tseg := s.segs[r.TargetSegment]
		if tseg == nil {
			break
		}
		switch r.Size {
		case 3:
			tagIfInBounds(tseg, r.TargetOffset, ne.FlagFar)
			if instr.Op.Name == "call" {
				tagIfInBounds(tseg, r.TargetOffset, ne.FlagFunc)
			} else {
				tagIfInBounds(tseg, r.TargetOffset, ne.FlagJump)
			}
			s.push(r.TargetSegment, r.TargetOffset)
		case 2:
			off := uint16(instr.Arg0)
			tagIfInBounds(tseg, off, ne.FlagFar)
			if instr.Op.Name == "call" {
				tagIfInBounds(tseg, off, ne.FlagFunc)
			} else {
				tagIfInBounds(tseg, off, ne.FlagJump)
			}
			s.push(r.TargetSegment, off)
		}
		break
	}
	return instr.Op.Name == "jmp"
}

func tagIfInBounds(seg *ne.Segment, offset uint16, flag ne.InstrFlag) {
	if int(offset) < len(seg.InstrFlags) {
		seg.InstrFlags[offset] |= flag
	}
}

// windowAt returns up to x86.MaxInstrLen bytes starting at ip, zero-padded
// past the end of the segment's code — instructions may legally "hang over"
// the segment boundary, and zero bytes should be supplied there.
func windowAt(seg *ne.Segment, ip uint16) []byte {
	buf := make([]byte, x86.MaxInstrLen)
	copy(buf, safeSlice(seg.Code, int(ip)))
	return buf
}

func safeSlice(b []byte, from int) []byte {
	if from >= len(b) {
		return nil
	}
	return b[from:]
}
