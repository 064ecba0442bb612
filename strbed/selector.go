package strbed

import (
	"context"
	"fmt"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/strdb/bio/repeatdb"
)

// Autosomes lists chr1 to chr22.
var Autosomes = func() []string {
	chroms := make([]string, 22)
	for i := range chroms {
		chroms[i] = fmt.Sprintf("chr%d", i+1)
	}
	return chroms
}()

// AllowedChromosomes lists every chromosome a Selector accepts, in the default
// processing order.
var AllowedChromosomes = append(append([]string{}, Autosomes...), "chrX", "chrY", "chrM")

var allowedChromosomeSet = func() map[string]bool {
	m := map[string]bool{}
	for _, c := range AllowedChromosomes {
		m[c] = true
	}
	return m
}()

// ValidateChromosomes checks that every name is in AllowedChromosomes, and
// returns the names with duplicates removed, in their original order.
func ValidateChromosomes(chroms []string) ([]string, error) {
	var (
		out  []string
		seen = map[string]bool{}
		bad  []string
	)
	for _, c := range chroms {
		if !allowedChromosomeSet[c] {
			bad = append(bad, c)
			continue
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(bad) > 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("unrecognized chromosome(s) %s", strings.Join(bad, ",")))
	}
	return out, nil
}

// geneKey orders the genes of one chromosome by begin, then Ensembl ID.
type geneKey struct {
	begin int
	id    string
	gene  *repeatdb.Gene
}

// Compare implements llrb.Comparable.
func (k geneKey) Compare(c llrb.Comparable) int {
	k2 := c.(geneKey)
	if diff := k.begin - k2.begin; diff != 0 {
		return diff
	}
	return strings.Compare(k.id, k2.id)
}

// Selector picks the genes on a set of chromosomes and walks their repeats,
// visiting a repeat shared by several genes only once.  Thread compatible.
type Selector struct {
	store    repeatdb.Store
	chroms   []string
	chromSet map[string]bool

	selected bool
	genes    map[string]repeatdb.Gene // by Ensembl ID
	byChrom  map[string]*llrb.Tree
}

// NewSelector creates a selector for chroms, which are validated immediately.
// Genes are processed chromosome by chromosome in the order given.
func NewSelector(store repeatdb.Store, chroms []string) (*Selector, error) {
	chroms, err := ValidateChromosomes(chroms)
	if err != nil {
		return nil, err
	}
	s := &Selector{store: store, chroms: chroms, chromSet: map[string]bool{}}
	for _, c := range chroms {
		s.chromSet[c] = true
	}
	return s, nil
}

// Chromosomes returns the validated chromosome list.
func (s *Selector) Chromosomes() []string { return s.chroms }

// Select reads the genes of the selected chromosomes from the store.  It
// returns the genes keyed by Ensembl ID.  Select may be called again to
// re-read the store.
func (s *Selector) Select(ctx context.Context) (map[string]repeatdb.Gene, error) {
	genes := map[string]repeatdb.Gene{}
	byChrom := map[string]*llrb.Tree{}
	for _, chrom := range s.chroms {
		chromGenes, err := s.store.Genes(ctx, chrom)
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("select genes on %s", chrom))
		}
		tree := &llrb.Tree{}
		for i := range chromGenes {
			g := chromGenes[i]
			if _, ok := genes[g.EnsemblID]; ok {
				log.Error.Printf("gene %s listed twice, keeping the first entry", g.EnsemblID)
				continue
			}
			genes[g.EnsemblID] = g
			tree.Insert(geneKey{begin: g.Begin, id: g.EnsemblID, gene: &g})
		}
		byChrom[chrom] = tree
		log.Debug.Printf("%s: %d genes selected", chrom, tree.Len())
	}
	s.genes, s.byChrom, s.selected = genes, byChrom, true
	return genes, nil
}

// Genes returns the genes found by the last Select, or nil.
func (s *Selector) Genes() map[string]repeatdb.Gene { return s.genes }

// Do calls fn for each distinct repeat of the selected genes, together with
// the first gene (in processing order) it was reached through.  Iteration
// stops at the first error, which Do returns.
//
// A repeat located on a chromosome that is not selected is reported and
// skipped.  Do fails with an errors.Precondition error if Select has not been
// called.
func (s *Selector) Do(fn func(g repeatdb.Gene, r repeatdb.Repeat) error) error {
	if !s.selected {
		return errors.E(errors.Precondition, "gene selection needs to be set before repeats can be visited")
	}
	seen := map[int64]bool{}
	var err error
	for _, chrom := range s.chroms {
		s.byChrom[chrom].Do(func(c llrb.Comparable) bool {
			g := c.(geneKey).gene
			for _, r := range g.Repeats {
				if seen[r.ID] {
					continue
				}
				seen[r.ID] = true
				if r.Chrom != "" && !s.chromSet[r.Chrom] {
					log.Error.Printf("repeat %d of gene %s is on %s, which is not among the selected chromosomes; skipping",
						r.ID, g.EnsemblID, r.Chrom)
					continue
				}
				if err = fn(*g, r); err != nil {
					return true
				}
			}
			return false
		})
		if err != nil {
			return err
		}
	}
	return nil
}
