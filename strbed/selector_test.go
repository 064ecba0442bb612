package strbed

import (
	"context"
	"fmt"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/strdb/bio/repeatdb"
)

// newTestStore builds a store with two overlapping genes on chr1 that share
// repeat 1, one gene on chr2, and one gene on chr3 whose repeat is annotated
// with chr4.
func newTestStore(t *testing.T) *repeatdb.MemStore {
	s := repeatdb.NewMemStore()
	r1 := repeatdb.Repeat{ID: 1, Chrom: "chr1", Begin: 100, End: 111, Units: []string{"CAG", "CAG", "CAT", "CAG"}, LEffective: 3, NEffective: 4}
	r2 := repeatdb.Repeat{ID: 2, Chrom: "chr1", Begin: 300, End: 309, Units: []string{"A", "A", "A", "A", "A", "A", "A", "A", "A", "A"}, LEffective: 1, NEffective: 10}
	r3 := repeatdb.Repeat{ID: 3, Chrom: "chr1", Begin: 150, End: 157, Units: []string{"AC", "AC", "AC", "AC"}, LEffective: 2, NEffective: 4}
	r4 := repeatdb.Repeat{ID: 4, Chrom: "chr2", Begin: 60, End: 74, Units: []string{"T-GA", "TAGA", "TAGA", "TAGA"}, LEffective: 4, NEffective: 4}
	r5 := repeatdb.Repeat{ID: 5, Chrom: "chr4", Begin: 10, End: 21, Units: []string{"CAG", "CAG", "CAG", "CAG"}, LEffective: 3, NEffective: 4}
	for _, g := range []repeatdb.Gene{
		{EnsemblID: "ENSG_B", Chrom: "chr1", Strand: "fw", Begin: 90, End: 500, Repeats: []repeatdb.Repeat{r2, r1}},
		{EnsemblID: "ENSG_A", Chrom: "chr1", Strand: "rv", Begin: 80, End: 400, Repeats: []repeatdb.Repeat{r1, r3}},
		{EnsemblID: "ENSG_C", Chrom: "chr2", Strand: "fw", Begin: 10, End: 200, Repeats: []repeatdb.Repeat{r4}},
		{EnsemblID: "ENSG_D", Chrom: "chr3", Strand: "fw", Begin: 1, End: 50, Repeats: []repeatdb.Repeat{r5}},
	} {
		assert.NoError(t, s.AddGene(g))
	}
	return s
}

func visit(t *testing.T, sel *Selector) []string {
	var got []string
	assert.NoError(t, sel.Do(func(g repeatdb.Gene, r repeatdb.Repeat) error {
		got = append(got, fmt.Sprintf("%s:%d", g.EnsemblID, r.ID))
		return nil
	}))
	return got
}

func TestSelectorOrderAndDedup(t *testing.T) {
	ctx := context.Background()
	sel, err := NewSelector(newTestStore(t), []string{"chr2", "chr1"})
	assert.NoError(t, err)
	genes, err := sel.Select(ctx)
	assert.NoError(t, err)
	expect.EQ(t, len(genes), 3)
	expect.EQ(t, genes["ENSG_A"].Strand, "rv")
	// chr2 first as requested; on chr1 ENSG_A (begin 80) precedes ENSG_B, and
	// repeat 1 is only visited through ENSG_A.
	expect.EQ(t, visit(t, sel), []string{"ENSG_C:4", "ENSG_A:1", "ENSG_A:3", "ENSG_B:2"})
	// Each pass starts with a fresh seen set.
	expect.EQ(t, visit(t, sel), []string{"ENSG_C:4", "ENSG_A:1", "ENSG_A:3", "ENSG_B:2"})
}

func TestSelectorInconsistentChromosome(t *testing.T) {
	ctx := context.Background()
	sel, err := NewSelector(newTestStore(t), []string{"chr3"})
	assert.NoError(t, err)
	_, err = sel.Select(ctx)
	assert.NoError(t, err)
	expect.EQ(t, len(visit(t, sel)), 0)

	sel, err = NewSelector(newTestStore(t), []string{"chr3", "chr4"})
	assert.NoError(t, err)
	_, err = sel.Select(ctx)
	assert.NoError(t, err)
	expect.EQ(t, visit(t, sel), []string{"ENSG_D:5"})
}

func TestSelectorErrors(t *testing.T) {
	_, err := NewSelector(newTestStore(t), []string{"chr1", "chr23", "1"})
	expect.True(t, errors.Is(errors.Invalid, err))
	expect.HasSubstr(t, err.Error(), "chr23,1")

	sel, err := NewSelector(newTestStore(t), []string{"chr1"})
	assert.NoError(t, err)
	err = sel.Do(func(repeatdb.Gene, repeatdb.Repeat) error { return nil })
	expect.True(t, errors.Is(errors.Precondition, err))

	_, err = sel.Select(context.Background())
	assert.NoError(t, err)
	stop := fmt.Errorf("stop")
	n := 0
	err = sel.Do(func(repeatdb.Gene, repeatdb.Repeat) error {
		n++
		return stop
	})
	expect.EQ(t, err, stop)
	expect.EQ(t, n, 1)
}

func TestValidateChromosomes(t *testing.T) {
	chroms, err := ValidateChromosomes([]string{"chrX", "chr1", "chrX", "chrM"})
	assert.NoError(t, err)
	expect.EQ(t, chroms, []string{"chrX", "chr1", "chrM"})
	expect.EQ(t, len(AllowedChromosomes), 25)
	expect.EQ(t, AllowedChromosomes[21], "chr22")
	expect.EQ(t, AllowedChromosomes[24], "chrM")
	expect.EQ(t, len(Autosomes), 22)
}
