package repeatdb

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Store directory layout.  Each file may also be gzipped, with a ".gz"
// suffix.
const (
	GenesFile       = "genes.tsv"
	RepeatsFile     = "repeats.tsv"
	GeneRepeatsFile = "gene_repeats.tsv"
)

type geneRow struct {
	EnsemblGene string `tsv:"ensembl_gene"`
	Chromosome  string `tsv:"chromosome"`
	Strand      string `tsv:"strand"`
	Begin       int    `tsv:"begin"`
	End         int    `tsv:"end"`
}

type repeatRow struct {
	ID         int64  `tsv:"id"`
	Chromosome string `tsv:"chromosome"`
	Source     string `tsv:"source"`
	MSA        string `tsv:"msa"`
	Begin      int    `tsv:"begin"`
	End        int    `tsv:"end"`
	LEffective int    `tsv:"l_effective"`
	NEffective int    `tsv:"n_effective"`
}

type linkRow struct {
	EnsemblGene string `tsv:"ensembl_gene"`
	RepeatID    int64  `tsv:"repeat_id"`
}

// ReadTSVDir loads a store directory (local or any path supported by
// grailbio/base/file) into a MemStore.  See GenesFile, RepeatsFile and
// GeneRepeatsFile for the expected files; each has a header row.
func ReadTSVDir(ctx context.Context, dir string) (*MemStore, error) {
	s := NewMemStore()
	err := readTSV(ctx, dir, GenesFile, func(r *tsv.Reader) error {
		var row geneRow
		return readRows(r, &row, func() error {
			return s.AddGene(Gene{
				EnsemblID: row.EnsemblGene,
				Chrom:     row.Chromosome,
				Strand:    row.Strand,
				Begin:     row.Begin,
				End:       row.End,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	err = readTSV(ctx, dir, RepeatsFile, func(r *tsv.Reader) error {
		var row repeatRow
		return readRows(r, &row, func() error {
			if row.End < row.Begin {
				return errors.Errorf("repeat %d: end %d precedes begin %d", row.ID, row.End, row.Begin)
			}
			return s.AddRepeat(Repeat{
				ID:         row.ID,
				Chrom:      row.Chromosome,
				Source:     row.Source,
				Units:      ParseMSA(row.MSA),
				Begin:      row.Begin,
				End:        row.End,
				LEffective: row.LEffective,
				NEffective: row.NEffective,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	err = readTSV(ctx, dir, GeneRepeatsFile, func(r *tsv.Reader) error {
		var row linkRow
		return readRows(r, &row, func() error {
			return s.Link(row.EnsemblGene, row.RepeatID)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("repeatdb: loaded %d genes, %d repeats from %s", s.NumGenes(), s.NumRepeats(), dir)
	return s, nil
}

// readRows reads every row of r into row, calling fn after each one.  Errors
// are annotated with the 1-based data line number.
func readRows(r *tsv.Reader, row interface{}, fn func() error) error {
	for line := 1; ; line++ {
		if err := r.Read(row); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrapf(err, "line %d", line)
		}
		if err := fn(); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
}

// readTSV opens dir/name, or dir/name.gz if the former does not exist, and
// passes a header-validating reader to fn.
func readTSV(ctx context.Context, dir, name string, fn func(*tsv.Reader) error) (err error) {
	path := file.Join(dir, name)
	if _, serr := file.Stat(ctx, path); serr != nil {
		if _, gzerr := file.Stat(ctx, path+".gz"); gzerr != nil {
			return errors.Wrapf(serr, "repeatdb: open %s", path)
		}
		path += ".gz"
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "repeatdb: open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	r := tsv.NewReader(bufio.NewReaderSize(inr, 64<<10))
	r.HasHeaderRow = true
	r.ValidateHeader = true
	if err = fn(r); err != nil {
		return errors.Wrapf(err, "repeatdb: %s", path)
	}
	return nil
}
