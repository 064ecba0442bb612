package strbed

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/strdb/bio/interval"
	"github.com/strdb/bio/repeatdb"
	"github.com/stretchr/testify/require"
)

const (
	lineR1 = "chr1\t100\t111\t3\tCAG\t.\t1:CAG,CAG,CAT,CAG:0.92:2\n"
	lineR3 = "chr1\t150\t157\t2\tAC\t.\t3:AC,AC,AC,AC:1.0:4\n"
	lineR2 = "chr1\t300\t309\t1\tA\t.\t2:A,A,A,A,A,A,A,A,A,A:1.0:10\n"
	lineR4 = "chr2\t63\t74\t4\tTAGA\t.\t4:TAGA,TAGA,TAGA:1.0:3\n"
	lineR5 = "chr3\t10\t21\t3\tCAG\t.\t5:CAG,CAG,CAG,CAG:1.0:4\n"
)

func runBedMaker(t *testing.T, store repeatdb.Store, opts Opts) string {
	b, err := New(store, opts)
	require.NoError(t, err)
	require.NoError(t, b.SelectGenes(context.Background()))
	var buf bytes.Buffer
	require.NoError(t, b.WriteBED(&buf))
	return buf.String()
}

func TestBedMaker(t *testing.T) {
	store := newTestStore(t)
	tests := []struct {
		name string
		opts Opts
		want string
	}{
		{"relaxed", Opts{Thresholds: RelaxedThresholds},
			lineR1 + lineR3 + lineR2 + lineR4 + lineR5},
		{"default", Opts{},
			lineR1 + lineR3 + lineR2 + lineR5},
		{"perfect", Opts{ConsensusOnly: true},
			lineR3 + lineR2 + lineR5},
		{"perfect relaxed", Opts{ConsensusOnly: true, Thresholds: RelaxedThresholds},
			lineR3 + lineR2 + lineR4 + lineR5},
		{"chromosome order", Opts{Thresholds: RelaxedThresholds, Chromosomes: []string{"chr2", "chr1"}},
			lineR4 + lineR1 + lineR3 + lineR2},
		{"no thresholds", Opts{Thresholds: map[int]int{}}, ""},
		{"no chromosomes", Opts{Chromosomes: []string{}}, ""},
	}
	for _, test := range tests {
		expect.EQ(t, runBedMaker(t, store, test.opts), test.want, test.name)
	}
}

// A gene on chr1 with one repeat "CAG,CAG,CAT,CAG" starting at 100.
func TestBedMakerSingleRepeat(t *testing.T) {
	store := repeatdb.NewMemStore()
	assert.NoError(t, store.AddGene(repeatdb.Gene{
		EnsemblID: "ENSG1", Chrom: "chr1", Strand: "fw", Begin: 1, End: 1000,
		Repeats: []repeatdb.Repeat{{ID: 42, Units: []string{"CAG", "CAG", "CAT", "CAG"}, Begin: 100}},
	}))
	got := runBedMaker(t, store, Opts{Thresholds: map[int]int{3: 3}, Chromosomes: []string{"chr1"}})
	expect.EQ(t, got, "chr1\t100\t111\t3\tCAG\t.\t42:CAG,CAG,CAT,CAG:0.92:2\n")
	got = runBedMaker(t, store, Opts{Thresholds: map[int]int{3: 5}, Chromosomes: []string{"chr1"}})
	expect.EQ(t, got, "")
}

func TestBedMakerIdempotent(t *testing.T) {
	store := newTestStore(t)
	b, err := New(store, Opts{Thresholds: RelaxedThresholds})
	require.NoError(t, err)
	require.NoError(t, b.SelectGenes(context.Background()))
	var first, second bytes.Buffer
	require.NoError(t, b.WriteBED(&first))
	require.NoError(t, b.WriteBED(&second))
	require.Equal(t, first.String(), second.String())
	require.Equal(t, first.String(), runBedMaker(t, store, Opts{Thresholds: RelaxedThresholds}))
}

func TestBedMakerSharedRepeatOnce(t *testing.T) {
	b, err := New(newTestStore(t), Opts{Thresholds: RelaxedThresholds})
	require.NoError(t, err)
	require.NoError(t, b.SelectGenes(context.Background()))
	seen := map[int64]int{}
	stats, err := b.Filter(func(seg *Segment) error {
		seen[seg.RepeatID]++
		return nil
	})
	require.NoError(t, err)
	expect.EQ(t, seen[1], 1)
	expect.EQ(t, stats, Stats{Repeats: 5, Segments: 5, Reported: 5})
}

func TestBedMakerRegions(t *testing.T) {
	regions, err := interval.NewBEDUnion(strings.NewReader("chr1\t140\t150\nchr2\t0\t62\n"))
	require.NoError(t, err)
	got := runBedMaker(t, newTestStore(t), Opts{Thresholds: RelaxedThresholds, Regions: &regions})
	// [140,150) holds only the first base of repeat 3; [0,62) on chr2 ends
	// right before the segment of repeat 4.
	expect.EQ(t, got, lineR3)
}

func TestBedMakerErrors(t *testing.T) {
	store := newTestStore(t)
	_, err := New(store, Opts{Thresholds: map[int]int{3: -4}})
	expect.True(t, errors.Is(errors.Invalid, err))
	_, err = New(store, Opts{Chromosomes: []string{"chrZ"}})
	expect.True(t, errors.Is(errors.Invalid, err))

	b, err := New(store, Opts{})
	require.NoError(t, err)
	_, err = b.Filter(func(*Segment) error { return nil })
	expect.True(t, errors.Is(errors.Precondition, err))
	var buf bytes.Buffer
	expect.True(t, errors.Is(errors.Precondition, b.WriteBED(&buf)))
	expect.EQ(t, buf.Len(), 0)

	require.NoError(t, b.SelectGenes(context.Background()))
	require.NoError(t, b.SetChromosomes([]string{"chr1"}))
	_, err = b.Filter(func(*Segment) error { return nil })
	expect.True(t, errors.Is(errors.Precondition, err), "changing chromosomes discards the selection")

	expect.True(t, errors.Is(errors.Invalid, b.SetThresholds(map[int]int{-1: 1})))
	expect.EQ(t, b.Thresholds().String(), "1:9,2:4,3:4,4:4,5:4,6:4")
}

func TestWriteRepeatRegions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRepeatRegions(context.Background(), newTestStore(t), Autosomes, &buf))
	expect.EQ(t, buf.String(),
		"chr1\t100\t111\t3\t4\t1\n"+
			"chr1\t150\t157\t2\t4\t3\n"+
			"chr1\t300\t309\t1\t10\t2\n"+
			"chr2\t60\t74\t4\t4\t4\n"+
			"chr3\t10\t21\t3\t4\t5\n")

	err := WriteRepeatRegions(context.Background(), newTestStore(t), []string{"chrQ"}, &buf)
	expect.True(t, errors.Is(errors.Invalid, err))
}
