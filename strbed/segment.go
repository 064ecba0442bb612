package strbed

import (
	"strconv"

	"github.com/strdb/bio/repeatdb"
)

// Segment is a run of consecutive units of a repeat whose ungapped length
// equals the length of the repeat's consensus unit.  Coordinates are 1-based
// and closed, like the repeat coordinates they derive from.
//
// A Segment holds copies of the chromosome and repeat ID; it never refers back
// into the store.
type Segment struct {
	Chrom     string
	Consensus string
	RepeatID  int64
	Start     int
	End       int
	// Units are the ungapped units of the run, in genomic order.
	Units []string
	// Purity is the fraction of nucleotides matching the consensus at the same
	// offset, rounded to two decimals.
	Purity float64
	// LongestRun is the length of the longest stretch of units equal to the
	// consensus.
	LongestRun int
	// Degenerate is set when the segment covers no nucleotides; Purity and
	// LongestRun are then unset and End == Start.
	Degenerate bool
}

// UnitLen returns the consensus unit length.
func (s *Segment) UnitLen() int { return len(s.Consensus) }

// Same reports whether s and o describe the same interval of the same repeat.
func (s *Segment) Same(o *Segment) bool {
	return s.RepeatID == o.RepeatID && s.Start == o.Start && s.End == o.End && s.Consensus == o.Consensus
}

// Segments splits repeat r into segments of units matching the length of
// consensus.  Segments of any size are returned; filtering is left to the
// caller.  If consensusOnly is set, a unit differing from the consensus also
// ends the current segment.
//
// chrom is copied into each segment; it is taken from the gene the repeat was
// reached through.
func Segments(chrom string, r repeatdb.Repeat, consensus string, consensusOnly bool) []Segment {
	var (
		segs []Segment
		cur  []string
		// start of cur; only meaningful when len(cur) > 0.
		start int
		pos   = r.Begin
	)
	newSegment := func() Segment {
		seg := Segment{Chrom: chrom, Consensus: consensus, RepeatID: r.ID, Start: start, Units: cur}
		seg.finalize()
		return seg
	}
	flush := func() {
		if len(cur) > 0 {
			segs = append(segs, newSegment())
		}
		cur = nil
	}
	for _, unit := range r.Units {
		u := repeatdb.Ungap(unit)
		switch {
		case len(u) != len(consensus):
			flush()
		case consensusOnly && u != consensus:
			flush()
		default:
			if len(cur) == 0 {
				start = pos
			}
			cur = append(cur, u)
		}
		pos += len(u)
	}
	// The trailing segment is only compared with the last one emitted, not with
	// every earlier segment of the repeat.
	if len(cur) > 0 {
		last := newSegment()
		if n := len(segs); n == 0 || !segs[n-1].Same(&last) {
			segs = append(segs, last)
		}
	}
	return segs
}

// finalize computes End, Purity and LongestRun.
func (s *Segment) finalize() {
	total, mismatches := 0, 0
	for _, u := range s.Units {
		total += len(u)
		for i := 0; i < len(u); i++ {
			if i >= len(s.Consensus) || u[i] != s.Consensus[i] {
				mismatches++
			}
		}
	}
	if len(s.Units) == 0 || total == 0 {
		s.End = s.Start
		s.Degenerate = true
		return
	}
	s.End = s.Start + len(s.Consensus)*len(s.Units) - 1
	s.Purity = round2(1 - float64(mismatches)/float64(total))
	if s.Purity == 1.0 {
		s.LongestRun = len(s.Units)
		return
	}
	run := 0
	for _, u := range s.Units {
		if u != s.Consensus {
			run = 0
			continue
		}
		run++
		if run > s.LongestRun {
			s.LongestRun = run
		}
	}
}

// round2 rounds x to two decimals.  Rounding is done on the exact binary
// value, with exact ties going to even, so 0.125 becomes 0.12.
func round2(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		panic(err)
	}
	return v
}
