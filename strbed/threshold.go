package strbed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// DefaultThresholds are the minimal run sizes per unit length from Lai & Sun
// (2003).
var DefaultThresholds = map[int]int{1: 9, 2: 4, 3: 4, 4: 4, 5: 4, 6: 4}

// RelaxedThresholds lowers the minimum for units of length 4 to 6 to three
// units.  bio-strbed uses it by default.
var RelaxedThresholds = map[int]int{1: 9, 2: 4, 3: 4, 4: 3, 5: 3, 6: 3}

// Thresholds maps a consensus unit length to the minimal number of units a
// segment needs to be reported.  Unit lengths without an entry are never
// reported.  The zero value rejects everything.
type Thresholds struct {
	min map[int]int
}

// NewThresholds validates m and copies it into a Thresholds.  Negative unit
// lengths or minima are rejected with an errors.Invalid error.
func NewThresholds(m map[int]int) (Thresholds, error) {
	t := Thresholds{min: make(map[int]int, len(m))}
	for unitLen, min := range m {
		if unitLen < 0 || min < 0 {
			return Thresholds{}, errors.E(errors.Invalid,
				fmt.Sprintf("thresholds must map unit length to minimal unit count, both non-negative; found %d:%d", unitLen, min))
		}
		t.min[unitLen] = min
	}
	return t, nil
}

// ParseThresholds parses a comma-separated list of "unitlen:mincount" pairs,
// e.g. "1:9,2:4,3:4".
func ParseThresholds(s string) (Thresholds, error) {
	m := map[int]int{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.Split(pair, ":")
		if len(kv) != 2 {
			return Thresholds{}, errors.E(errors.Invalid, fmt.Sprintf("threshold %q: must be of form unitlen:mincount", pair))
		}
		unitLen, err := strconv.Atoi(kv[0])
		if err != nil {
			return Thresholds{}, errors.E(errors.Invalid, fmt.Sprintf("threshold %q: unit length is not an integer", pair), err)
		}
		min, err := strconv.Atoi(kv[1])
		if err != nil {
			return Thresholds{}, errors.E(errors.Invalid, fmt.Sprintf("threshold %q: minimal count is not an integer", pair), err)
		}
		if _, ok := m[unitLen]; ok {
			return Thresholds{}, errors.E(errors.Invalid, fmt.Sprintf("threshold for unit length %d given twice", unitLen))
		}
		m[unitLen] = min
	}
	return NewThresholds(m)
}

// Reportable reports whether a segment with the given consensus unit length
// and metric (unit count, or longest perfect run in consensus-only mode)
// passes.
func (t Thresholds) Reportable(unitLen, metric int) bool {
	min, ok := t.min[unitLen]
	return ok && metric >= min
}

// Map returns a copy of the unit length to minimal count mapping.
func (t Thresholds) Map() map[int]int {
	m := make(map[int]int, len(t.min))
	for l, min := range t.min {
		m[l] = min
	}
	return m
}

// String returns the thresholds in the form accepted by ParseThresholds, in
// increasing unit length.
func (t Thresholds) String() string {
	lens := make([]int, 0, len(t.min))
	for l := range t.min {
		lens = append(lens, l)
	}
	sort.Ints(lens)
	parts := make([]string, len(lens))
	for i, l := range lens {
		parts[i] = fmt.Sprintf("%d:%d", l, t.min[l])
	}
	return strings.Join(parts, ",")
}
