package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// PosType is BEDUnion's coordinate type.
type PosType int32

const posTypeMax = math.MaxInt32

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// searchPosType returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).
func searchPosType(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// BEDUnion is a per-chromosome union of intervals.  For each chromosome, the
// 0-based start of interval #k is in element [2k] and its (exclusive) end in
// element [2k+1]; intervals are disjoint, non-touching and increasing.
type BEDUnion struct {
	nameMap map[string][]PosType
}

type rawInterval struct {
	start, end PosType
}

// NewBEDUnion loads the first three columns of a BED file, merging
// touching/overlapping intervals and dropping empty ones.  Lines need not be
// sorted.  Lines starting with "#", "track" or "browser" are skipped.
func NewBEDUnion(reader io.Reader) (bedUnion BEDUnion, err error) {
	raw := map[string][]rawInterval{}
	scanner := bufio.NewScanner(reader)
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || tokens[0][0] == '#' || isBEDHeader(tokens[0]) {
			continue
		}
		if nToken != 3 {
			err = fmt.Errorf("interval.NewBEDUnion: line %d has fewer tokens than expected", lineIdx)
			return
		}
		var start, end int
		if start, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return
		}
		if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return
		}
		if start < 0 || end < start || end >= posTypeMax {
			err = fmt.Errorf("interval.NewBEDUnion: invalid coordinate pair on line %d", lineIdx)
			return
		}
		if end == start {
			continue
		}
		chr := string(tokens[0])
		raw[chr] = append(raw[chr], rawInterval{PosType(start), PosType(end)})
	}
	if err = scanner.Err(); err != nil {
		return
	}
	bedUnion = newBEDUnion(raw)
	log.Printf("BED loaded, %d base(s) covered.", bedUnion.Bases())
	return
}

func isBEDHeader(tok []byte) bool {
	s := gunsafe.BytesToString(tok)
	return s == "track" || s == "browser"
}

func newBEDUnion(raw map[string][]rawInterval) BEDUnion {
	u := BEDUnion{nameMap: make(map[string][]PosType, len(raw))}
	for chr, ivs := range raw {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		var endpoints []PosType
		for _, iv := range ivs {
			if n := len(endpoints); n > 0 && iv.start <= endpoints[n-1] {
				// Overlapping or touching; extend the previous interval.
				if iv.end > endpoints[n-1] {
					endpoints[n-1] = iv.end
				}
				continue
			}
			endpoints = append(endpoints, iv.start, iv.end)
		}
		u.nameMap[chr] = endpoints
	}
	return u
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped files are decompressed.
func NewBEDUnionFromPath(ctx context.Context, path string) (bedUnion BEDUnion, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewBEDUnion(reader)
}

// Intersects reports whether the 0-based half-open interval [start, end) on
// chrName overlaps the union.  An empty interval never intersects.
func (u *BEDUnion) Intersects(chrName string, start, end PosType) bool {
	if end <= start {
		return false
	}
	endpoints := u.nameMap[chrName]
	if endpoints == nil {
		return false
	}
	// idx is odd iff start is inside an interval.
	idx := searchPosType(endpoints, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(endpoints) && end > endpoints[idx]
}

// ContainsByName checks whether the 0-based position pos on chrName is
// within the union.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	return u.Intersects(chrName, pos, pos+1)
}

// Bases returns the number of bases covered by the union.
func (u *BEDUnion) Bases() int {
	total := 0
	for _, endpoints := range u.nameMap {
		for i := 0; i < len(endpoints); i += 2 {
			total += int(endpoints[i+1] - endpoints[i])
		}
	}
	return total
}
