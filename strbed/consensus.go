package strbed

import "github.com/strdb/bio/repeatdb"

// Consensus derives the consensus unit of an alignment of repeat units.
//
// The alignment is read column by column.  A cell past the end of a shorter
// unit counts as a gap.  A column in which at least half of the units have a
// gap is dropped, so the consensus may be shorter than any unit.  Otherwise
// the column contributes its most frequent nucleotide; ties go to the
// nucleotide that appears first in unit order.
func Consensus(units []string) string {
	width := 0
	for _, u := range units {
		if len(u) > width {
			width = len(u)
		}
	}
	consensus := make([]byte, 0, width)
	var counts [256]int
	order := make([]byte, 0, 8)
	for col := 0; col < width; col++ {
		gaps := 0
		order = order[:0]
		for _, u := range units {
			if col >= len(u) || u[col] == repeatdb.GapChar {
				gaps++
				continue
			}
			c := u[col]
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
		// gaps >= 0.5 * len(units)
		if 2*gaps >= len(units) {
			for _, c := range order {
				counts[c] = 0
			}
			continue
		}
		best, bestCount := byte(0), 0
		for _, c := range order {
			if counts[c] > bestCount {
				best, bestCount = c, counts[c]
			}
			counts[c] = 0
		}
		consensus = append(consensus, best)
	}
	return string(consensus)
}
