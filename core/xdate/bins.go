// Package xdate has the crossdating engine: leave-one-out segment comparison
// of each series against the chronology of the others, with lag search.
package xdate

import (
	"fmt"

	"github.com/huangsam/dendro/schema"
)

// Bins tiles [first, last] with windows of slide years that overlap by half.
// Tiling starts at first when it is a multiple of floor (or floor is zero),
// otherwise at the next multiple of floor. Only windows ending on or before
// last are produced.
func Bins(first, last, floor, slide int) ([]schema.Bin, error) {
	if slide < 2 {
		return nil, fmt.Errorf("%w: slide period %d must be at least 2", schema.ErrInvalidArgument, slide)
	}
	if floor < 0 {
		return nil, fmt.Errorf("%w: bin floor %d must not be negative", schema.ErrInvalidArgument, floor)
	}
	var bins []schema.Bin
	for i := alignedStart(first, floor); i+slide-1 <= last; i += slide / 2 {
		bins = append(bins, schema.Bin{Start: i, End: i + slide - 1})
	}
	return bins, nil
}

func alignedStart(first, floor int) int {
	if floor == 0 || first%floor == 0 {
		return first
	}
	return floorDiv(first, floor)*floor + floor
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a divided by b.
func mod(a, b int) int {
	return ((a % b) + b) % b
}

// RelevantRange returns the span of the dataset's bin tiling that a series
// covers: from the first tile starting inside the series to the end of the
// last tile that starts before the series ends. ok is false when no tile
// starts within the series.
func RelevantRange(dataFirst, dataLast, seriesFirst, seriesLast, floor, segLength int) (start, end int, ok bool) {
	step := max(1, segLength/2)
	found := false
	for i := alignedStart(dataFirst, floor); i+segLength-1 <= dataLast; i += step {
		if i < seriesFirst {
			continue
		}
		if i > seriesLast {
			break
		}
		if !found {
			start, found = i, true
		}
		end = i + segLength - 1
	}
	return start, end, found
}
