package repeatdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// MemStore is an in-memory Store.  Genes and repeats are added separately and
// linked many-to-many with Link.  Thread compatible.
type MemStore struct {
	genes   map[string]*Gene // keyed by Ensembl ID
	order   []string         // insertion order of genes
	repeats map[int64]Repeat
	links   map[string][]int64 // Ensembl ID -> repeat IDs, in link order
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		genes:   map[string]*Gene{},
		repeats: map[int64]Repeat{},
		links:   map[string][]int64{},
	}
}

// AddGene registers a gene.  Any repeats already in g.Repeats are added and
// linked as well.
func (s *MemStore) AddGene(g Gene) error {
	if g.EnsemblID == "" {
		return errors.Errorf("repeatdb: gene without Ensembl ID: %+v", g)
	}
	if _, ok := s.genes[g.EnsemblID]; ok {
		return errors.Errorf("repeatdb: duplicate gene %s", g.EnsemblID)
	}
	if g.Strand != "fw" && g.Strand != "rv" {
		return errors.Errorf("repeatdb: gene %s: strand must be 'fw' or 'rv', found %q", g.EnsemblID, g.Strand)
	}
	repeats := g.Repeats
	g.Repeats = nil
	s.genes[g.EnsemblID] = &g
	s.order = append(s.order, g.EnsemblID)
	for _, r := range repeats {
		if _, ok := s.repeats[r.ID]; !ok {
			if err := s.AddRepeat(r); err != nil {
				return err
			}
		}
		if err := s.Link(g.EnsemblID, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// AddRepeat registers a repeat.  An empty Source is replaced by UnknownSource.
func (s *MemStore) AddRepeat(r Repeat) error {
	if _, ok := s.repeats[r.ID]; ok {
		return errors.Errorf("repeatdb: duplicate repeat %d", r.ID)
	}
	if r.Source == "" {
		r.Source = UnknownSource
	}
	s.repeats[r.ID] = r
	return nil
}

// Link attaches a repeat to a gene.  Linking the same pair twice is a no-op.
func (s *MemStore) Link(ensemblID string, repeatID int64) error {
	if _, ok := s.genes[ensemblID]; !ok {
		return errors.Errorf("repeatdb: link to unknown gene %s", ensemblID)
	}
	if _, ok := s.repeats[repeatID]; !ok {
		return errors.Errorf("repeatdb: link to unknown repeat %d", repeatID)
	}
	for _, id := range s.links[ensemblID] {
		if id == repeatID {
			return nil
		}
	}
	s.links[ensemblID] = append(s.links[ensemblID], repeatID)
	return nil
}

// Genes implements Store.  Genes are returned in insertion order.
func (s *MemStore) Genes(ctx context.Context, chrom string) ([]Gene, error) {
	var genes []Gene
	for _, id := range s.order {
		g := s.genes[id]
		if g.Chrom != chrom {
			continue
		}
		snap := *g
		snap.Repeats = make([]Repeat, 0, len(s.links[id]))
		for _, rid := range s.links[id] {
			r := s.repeats[rid]
			r.Units = append([]string(nil), r.Units...)
			snap.Repeats = append(snap.Repeats, r)
		}
		genes = append(genes, snap)
	}
	return genes, nil
}

// Chromosomes lists the chromosomes that have at least one gene, sorted.
func (s *MemStore) Chromosomes() []string {
	seen := map[string]bool{}
	var chroms []string
	for _, g := range s.genes {
		if !seen[g.Chrom] {
			seen[g.Chrom] = true
			chroms = append(chroms, g.Chrom)
		}
	}
	sort.Strings(chroms)
	return chroms
}

// NumGenes returns the number of registered genes.
func (s *MemStore) NumGenes() int { return len(s.genes) }

// NumRepeats returns the number of registered repeats.
func (s *MemStore) NumRepeats() int { return len(s.repeats) }
