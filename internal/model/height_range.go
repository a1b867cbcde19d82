package model

import (
	"fmt"
	"sort"
)

// HeightRange is an inclusive range of heights on one chain.
type HeightRange struct {
	ChainID ChainID
	From    int64
	To      int64
}

func (r HeightRange) String() string {
	return fmt.Sprintf("chain %d [%d..%d]", r.ChainID, r.From, r.To)
}

// Len returns the number of heights covered by the range.
func (r HeightRange) Len() int64 {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}

// Contains reports whether height lies inside the range.
func (r HeightRange) Contains(height int64) bool {
	return height >= r.From && height <= r.To
}

// Overlaps reports whether both ranges share at least one height on the same chain.
func (r HeightRange) Overlaps(o HeightRange) bool {
	return r.ChainID == o.ChainID && r.From <= o.To && o.From <= r.To
}

// Split cuts the range into consecutive pieces of at most size heights.
func (r HeightRange) Split(size int64) []HeightRange {
	if r.Len() == 0 {
		return nil
	}
	if size <= 0 || r.Len() <= size {
		return []HeightRange{r}
	}
	out := make([]HeightRange, 0, (r.Len()+size-1)/size)
	for from := r.From; from <= r.To; from += size {
		to := from + size - 1
		if to > r.To {
			to = r.To
		}
		out = append(out, HeightRange{ChainID: r.ChainID, From: from, To: to})
	}
	return out
}

// Subtract returns the parts of r not covered by any of holes.
func (r HeightRange) Subtract(holes []HeightRange) []HeightRange {
	rest := []HeightRange{r}
	for _, h := range holes {
		next := rest[:0:0]
		for _, piece := range rest {
			if !piece.Overlaps(h) {
				next = append(next, piece)
				continue
			}
			if piece.From < h.From {
				next = append(next, HeightRange{ChainID: piece.ChainID, From: piece.From, To: h.From - 1})
			}
			if piece.To > h.To {
				next = append(next, HeightRange{ChainID: piece.ChainID, From: h.To + 1, To: piece.To})
			}
		}
		rest = next
	}
	return rest
}

// NormalizeRanges sorts ranges by chain and height and merges overlapping or adjacent ones.
func NormalizeRanges(ranges []HeightRange) []HeightRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]HeightRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Len() > 0 {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ChainID != sorted[j].ChainID {
			return sorted[i].ChainID < sorted[j].ChainID
		}
		return sorted[i].From < sorted[j].From
	})

	out := make([]HeightRange, 0, len(sorted))
	for _, r := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.ChainID == r.ChainID && r.From <= last.To+1 {
				if r.To > last.To {
					last.To = r.To
				}
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
