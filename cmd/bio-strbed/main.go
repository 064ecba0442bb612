package main

// See doc.go for documentation.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/strdb/bio/interval"
	"github.com/strdb/bio/repeatdb"
	"github.com/strdb/bio/strbed"
	"v.io/x/lib/cmdline"
)

type bedFlags struct {
	db          string
	perfect     bool
	thresholds  string
	chromosomes string
	regions     string
	out         string
}

type regionsFlags struct {
	db          string
	chromosomes string
	out         string
}

// defaultThresholds is the -thresholds default, strbed.RelaxedThresholds.
const defaultThresholds = "1:9,2:4,3:4,4:3,5:3,6:3"

// splitChromosomes parses a comma-separated chromosome list.  An empty string
// selects def.
func splitChromosomes(s string, def []string) []string {
	if s == "" {
		return def
	}
	var chroms []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			chroms = append(chroms, c)
		}
	}
	return chroms
}

// createOutput opens path for writing, or stdout if path is empty or "-".
// Paths ending in .gz are gzip-compressed.  The returned function flushes and
// closes the output.
func createOutput(ctx context.Context, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if fileio.DetermineType(path) != fileio.Gzip {
		return out.Writer(ctx), func() error { return out.Close(ctx) }, nil
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	return gz, func() error {
		err := gz.Close()
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
		return err
	}, nil
}

func runBed(ctx context.Context, flags bedFlags) (err error) {
	if flags.db == "" {
		return fmt.Errorf("bed: -db is required")
	}
	// Validate the configuration before touching the store or the output.
	thresholds, err := strbed.ParseThresholds(flags.thresholds)
	if err != nil {
		return err
	}
	chroms, err := strbed.ValidateChromosomes(splitChromosomes(flags.chromosomes, strbed.AllowedChromosomes))
	if err != nil {
		return err
	}
	opts := strbed.Opts{
		ConsensusOnly: flags.perfect,
		Thresholds:    thresholds.Map(),
		Chromosomes:   chroms,
	}
	if flags.regions != "" {
		regions, err := interval.NewBEDUnionFromPath(ctx, flags.regions)
		if err != nil {
			return err
		}
		opts.Regions = &regions
	}
	store, err := repeatdb.ReadTSVDir(ctx, flags.db)
	if err != nil {
		return err
	}
	maker, err := strbed.New(store, opts)
	if err != nil {
		return err
	}
	if err = maker.SelectGenes(ctx); err != nil {
		return err
	}
	w, closeOut, err := createOutput(ctx, flags.out)
	if err != nil {
		return err
	}
	defer func() {
		if e := closeOut(); e != nil && err == nil {
			err = e
		}
	}()
	log.Printf("thresholds %s, perfect units only: %v", maker.Thresholds(), flags.perfect)
	return maker.WriteBED(w)
}

func runRegions(ctx context.Context, flags regionsFlags) (err error) {
	if flags.db == "" {
		return fmt.Errorf("regions: -db is required")
	}
	chroms, err := strbed.ValidateChromosomes(splitChromosomes(flags.chromosomes, strbed.Autosomes))
	if err != nil {
		return err
	}
	store, err := repeatdb.ReadTSVDir(ctx, flags.db)
	if err != nil {
		return err
	}
	w, closeOut, err := createOutput(ctx, flags.out)
	if err != nil {
		return err
	}
	defer func() {
		if e := closeOut(); e != nil && err == nil {
			err = e
		}
	}()
	return strbed.WriteRepeatRegions(ctx, store, chroms, w)
}

func newCmdBed() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "bed",
		Short: "Write a BED of consensus-unit STR segments that pass the thresholds",
	}
	flags := bedFlags{}
	cmd.Flags.StringVar(&flags.db, "db", "", "Repeat store directory (genes.tsv, repeats.tsv, gene_repeats.tsv); required")
	cmd.Flags.BoolVar(&flags.perfect, "perfect", false, "Only consider units identical to the consensus unit; thresholds then apply to the longest perfect run")
	cmd.Flags.StringVar(&flags.thresholds, "thresholds", defaultThresholds, "Comma-separated unitlen:mincount pairs. Unit lengths not listed are never reported")
	cmd.Flags.StringVar(&flags.chromosomes, "chromosomes", "", "Comma-separated chromosomes to process, in order. Default: chr1-chr22, chrX, chrY, chrM")
	cmd.Flags.StringVar(&flags.regions, "regions", "", "Optional BED of target regions; segments outside them are dropped")
	cmd.Flags.StringVar(&flags.out, "out", "", "Output path; stdout if empty. A .gz suffix enables gzip compression")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("bed takes no positional arguments, but got %v", argv)
		}
		return runBed(vcontext.Background(), flags)
	})
	return cmd
}

func newCmdRegions() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "regions",
		Short: "Write a BED of the stored repeat regions (chrom, begin, end, unit length, unit count, id)",
	}
	flags := regionsFlags{}
	cmd.Flags.StringVar(&flags.db, "db", "", "Repeat store directory; required")
	cmd.Flags.StringVar(&flags.chromosomes, "chromosomes", "", "Comma-separated chromosomes to process, in order. Default: chr1-chr22")
	cmd.Flags.StringVar(&flags.out, "out", "", "Output path; stdout if empty. A .gz suffix enables gzip compression")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("regions takes no positional arguments, but got %v", argv)
		}
		return runRegions(vcontext.Background(), flags)
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-strbed",
			Short:    "Generate BED files of short tandem repeats from a repeat store",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdBed(),
				newCmdRegions(),
			},
		})
}
