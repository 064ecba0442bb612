package strbed

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/strdb/bio/repeatdb"
)

// WriteRepeatRegions writes the stored repeats of chroms as a plain BED:
//
//   chrom  begin  end  l_effective  n_effective  id
//
// Chromosomes come in the given order, genes by begin, and the repeats of a
// gene by begin.  A repeat shared by several genes is written once, with the
// first of them.
func WriteRepeatRegions(ctx context.Context, store repeatdb.Store, chroms []string, w io.Writer) error {
	sel, err := NewSelector(store, chroms)
	if err != nil {
		return err
	}
	if _, err = sel.Select(ctx); err != nil {
		return err
	}
	out := tsv.NewWriter(w)
	var (
		chrom   string
		geneID  string
		pending []repeatdb.Repeat
	)
	flush := func() error {
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].Begin < pending[j].Begin })
		for _, r := range pending {
			out.WriteString(chrom)
			out.WriteString(strconv.Itoa(r.Begin))
			out.WriteString(strconv.Itoa(r.End))
			out.WriteString(strconv.Itoa(r.LEffective))
			out.WriteString(strconv.Itoa(r.NEffective))
			out.WriteString(strconv.FormatInt(r.ID, 10))
			if err := out.EndLine(); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}
	err = sel.Do(func(g repeatdb.Gene, r repeatdb.Repeat) error {
		if g.EnsemblID != geneID {
			if err := flush(); err != nil {
				return err
			}
			chrom, geneID = g.Chrom, g.EnsemblID
		}
		pending = append(pending, r)
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	return out.Flush()
}
