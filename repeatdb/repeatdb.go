// Package repeatdb holds read-only snapshots of the genes and short tandem
// repeats (STRs) stored in a repeat database, and the Store interface through
// which the bed generator reads them.
//
// Snapshots are plain values.  A Repeat linked to several genes is copied into
// each Gene; its ID is what identifies it across genes.
package repeatdb

import (
	"context"
	"strings"
)

// UnknownSource is the detector source of repeats that carry none.
const UnknownSource = "unknown"

// GapChar marks an alignment gap within a repeat unit.
const GapChar = '-'

// Repeat is one STR region.  Units is the multiple sequence alignment of the
// region, one (possibly gapped) unit per element, in genomic order.
type Repeat struct {
	ID    int64
	Chrom string
	// Source names the detector that reported the repeat, or UnknownSource.
	Source string
	Units  []string
	// Begin and End are 1-based, closed.
	Begin, End int
	// LEffective is the effective unit length, NEffective the effective number
	// of units, as reported by the detector.
	LEffective, NEffective int
}

// MSA returns the comma-delimited alignment, the form in which it is stored.
func (r Repeat) MSA() string { return strings.Join(r.Units, ",") }

// Gene is a gene and the repeats detected within it (including its upstream
// region).
type Gene struct {
	EnsemblID string
	Chrom     string
	// Strand is "fw" or "rv".
	Strand     string
	Begin, End int
	Repeats    []Repeat
}

// Store provides gene snapshots by chromosome.
type Store interface {
	// Genes returns all genes on chrom, each with its repeats.  The order is
	// unspecified.
	Genes(ctx context.Context, chrom string) ([]Gene, error)
}

// ParseMSA splits a comma-delimited alignment into units.  An empty string
// yields a single empty unit.
func ParseMSA(msa string) []string {
	return strings.Split(msa, ",")
}

// Ungap strips gap characters from a unit.
func Ungap(unit string) string {
	if strings.IndexByte(unit, GapChar) < 0 {
		return unit
	}
	return strings.Replace(unit, string(GapChar), "", -1)
}
