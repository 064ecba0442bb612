package strbed

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/strdb/bio/interval"
	"github.com/strdb/bio/repeatdb"
)

// Opts configures a BedMaker.
type Opts struct {
	// ConsensusOnly restricts segments to units identical to the consensus
	// unit, and thresholds apply to the longest perfect run instead of the unit
	// count.
	ConsensusOnly bool
	// Thresholds maps unit length to minimal count.  nil means
	// DefaultThresholds.
	Thresholds map[int]int
	// Chromosomes lists the chromosomes to process, in order.  nil means
	// AllowedChromosomes.
	Chromosomes []string
	// Regions, if set, drops segments that do not intersect it.
	Regions *interval.BEDUnion
}

// BedMaker turns the repeats of a store into BED lines describing runs of
// consensus-length units.  Thread compatible.
//
// Usage:
//
//   b, err := strbed.New(store, strbed.Opts{Thresholds: strbed.RelaxedThresholds})
//   ...
//   if err := b.SelectGenes(ctx); err != nil { ... }
//   if err := b.WriteBED(os.Stdout); err != nil { ... }
type BedMaker struct {
	store         repeatdb.Store
	consensusOnly bool
	regions       *interval.BEDUnion
	thresholds    Thresholds
	sel           *Selector
	selected      bool
}

// Stats counts what a Filter pass saw.
type Stats struct {
	Repeats int // distinct repeats visited
	// Segments is the number of candidate segments, including degenerate ones.
	Segments int
	Reported int
}

// New creates a BedMaker.  Thresholds and chromosomes are validated here, so
// a configuration error is reported before any output is produced.
func New(store repeatdb.Store, opts Opts) (*BedMaker, error) {
	b := &BedMaker{store: store, consensusOnly: opts.ConsensusOnly, regions: opts.Regions}
	thresholds := opts.Thresholds
	if thresholds == nil {
		thresholds = DefaultThresholds
	}
	if err := b.SetThresholds(thresholds); err != nil {
		return nil, err
	}
	chroms := opts.Chromosomes
	if chroms == nil {
		chroms = AllowedChromosomes
	}
	if err := b.SetChromosomes(chroms); err != nil {
		return nil, err
	}
	return b, nil
}

// SetThresholds replaces the threshold policy.
func (b *BedMaker) SetThresholds(m map[int]int) error {
	t, err := NewThresholds(m)
	if err != nil {
		return err
	}
	b.thresholds = t
	return nil
}

// Thresholds returns the active threshold policy.
func (b *BedMaker) Thresholds() Thresholds { return b.thresholds }

// SetChromosomes replaces the chromosome list.  The gene selection is
// discarded; SelectGenes must be called again.
func (b *BedMaker) SetChromosomes(chroms []string) error {
	sel, err := NewSelector(b.store, chroms)
	if err != nil {
		return err
	}
	b.sel, b.selected = sel, false
	return nil
}

// SelectGenes reads the genes of the configured chromosomes from the store.
func (b *BedMaker) SelectGenes(ctx context.Context) error {
	genes, err := b.sel.Select(ctx)
	if err != nil {
		return err
	}
	log.Printf("strbed: selected %d genes on %d chromosome(s)", len(genes), len(b.sel.Chromosomes()))
	b.selected = true
	return nil
}

// Filter calls fn for every segment that passes the thresholds (and the
// target regions, if any), in processing order.  Degenerate segments and
// segments whose unit length has no threshold are skipped silently.  Filter
// fails with an errors.Precondition error if SelectGenes has not been called.
func (b *BedMaker) Filter(fn func(seg *Segment) error) (Stats, error) {
	var stats Stats
	if !b.selected {
		return stats, errors.E(errors.Precondition, "gene selection needs to be set before a bed file can be generated")
	}
	err := b.sel.Do(func(g repeatdb.Gene, r repeatdb.Repeat) error {
		stats.Repeats++
		segs := Segments(g.Chrom, r, Consensus(r.Units), b.consensusOnly)
		stats.Segments += len(segs)
		for i := range segs {
			seg := &segs[i]
			if !b.reportable(seg) {
				continue
			}
			stats.Reported++
			if err := fn(seg); err != nil {
				return err
			}
		}
		return nil
	})
	return stats, err
}

func (b *BedMaker) reportable(seg *Segment) bool {
	if seg.Degenerate {
		return false
	}
	metric := len(seg.Units)
	if b.consensusOnly {
		metric = seg.LongestRun
	}
	if !b.thresholds.Reportable(seg.UnitLen(), metric) {
		return false
	}
	if b.regions != nil {
		// Segment coordinates are 1-based, closed.
		return b.regions.Intersects(seg.Chrom, interval.PosType(seg.Start-1), interval.PosType(seg.End))
	}
	return true
}

// WriteBED writes one line per reportable segment to w.
func (b *BedMaker) WriteBED(w io.Writer) error {
	bw := NewWriter(w)
	stats, err := b.Filter(bw.Write)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	log.Printf("strbed: %d repeats, %d candidate segments, %d reported", stats.Repeats, stats.Segments, stats.Reported)
	return nil
}
