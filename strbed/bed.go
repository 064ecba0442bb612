package strbed

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
)

// offTargetPlaceholder fills the optional off-target-region column.
const offTargetPlaceholder = "."

// Writer writes segments as BED lines of the form
//
//   chrom  start  end  unitlen  consensus  .  id:unit1,unit2,...:purity:longestrun
//
// The sixth column is reserved for off-target regions and always ".".  The
// last column links the line back to the repeat it came from.  Nothing is
// escaped; units must not contain tabs or commas.
type Writer struct {
	w *tsv.Writer
}

// NewWriter creates a Writer.  Flush must be called when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: tsv.NewWriter(w)}
}

// Write writes one line for seg.
func (w *Writer) Write(seg *Segment) error {
	w.w.WriteString(seg.Chrom)
	w.w.WriteString(strconv.Itoa(seg.Start))
	w.w.WriteString(strconv.Itoa(seg.End))
	w.w.WriteUint32(uint32(seg.UnitLen()))
	w.w.WriteString(seg.Consensus)
	w.w.WriteString(offTargetPlaceholder)
	w.w.WriteString(infoField(seg))
	return w.w.EndLine()
}

// Flush flushes buffered lines to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// FormatLine returns the BED line for seg, without the trailing newline.
func FormatLine(seg *Segment) string {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(seg); err != nil {
		panic(err)
	}
	if err := w.Flush(); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func infoField(seg *Segment) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(seg.RepeatID, 10))
	b.WriteByte(':')
	b.WriteString(strings.Join(seg.Units, ","))
	b.WriteByte(':')
	b.WriteString(formatPurity(seg.Purity))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(seg.LongestRun))
	return b.String()
}

// formatPurity prints the shortest representation of p that keeps at least
// one decimal, e.g. "1.0", "0.9", "0.92".
func formatPurity(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if strings.IndexByte(s, '.') < 0 {
		s += ".0"
	}
	return s
}
