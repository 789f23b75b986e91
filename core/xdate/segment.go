package xdate

import (
	"fmt"
	"math"

	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
)

// CompareOptions configures a segment comparison.
type CompareOptions struct {
	SegLength    int
	Kind         schema.CorrelationKind
	PValue       float64
	SearchLags   bool
	LagRange     int     // shifts from -LagRange to +LagRange are searched
	LagThreshold float64 // minimum gain of the best shift over the unshifted correlation
}

// CompareSegment correlates segment with the reference chronology and applies
// the flagging rules. The returned flag is nil when the segment passes.
//
// A segment correlating below the critical value is flagged A. When lags are
// searched and a non-zero shift beats the unshifted correlation by at least
// LagThreshold, the segment is flagged B instead; BelowCritical still records
// the A condition.
func CompareSegment(name string, segment schema.YearSeries, ref *schema.Chronology, opts CompareOptions) (float64, *schema.Flag, error) {
	if segment.Len() != opts.SegLength {
		return math.NaN(), nil, fmt.Errorf("%w: segment of %s has %d values, want %d", schema.ErrInvalidInput, name, segment.Len(), opts.SegLength)
	}
	base := shiftedCorrelation(segment, ref, 0, opts.Kind)
	critical := algo.CriticalCorrelation(opts.PValue, opts.SegLength)
	belowCritical := base < critical

	bestLag, best := 0, base
	var profile []schema.LagCorrelation
	if opts.SearchLags {
		profile = LagProfile(segment, ref, opts.LagRange, opts.Kind)
		for _, l := range profile {
			if l.Valid && l.Correlation > best {
				bestLag, best = l.Lag, l.Correlation
			}
		}
	}
	lagMismatch := bestLag != 0 && math.Abs(best-base) >= opts.LagThreshold

	if !belowCritical && !lagMismatch {
		return base, nil, nil
	}
	flag := &schema.Flag{
		Kind:            schema.LowCorrelationFlag,
		Series:          name,
		Bin:             schema.Bin{Start: segment.First(), End: segment.Last()},
		Correlation:     base,
		Critical:        critical,
		BelowCritical:   belowCritical,
		BestLag:         bestLag,
		BestCorrelation: best,
		Profile:         profile,
	}
	if lagMismatch {
		flag.Kind = schema.LagMismatchFlag
	}
	return base, flag, nil
}

// LagProfile correlates segment with ref at every shift in [-lagRange, lagRange].
// A shift is added to the segment's years. Shifts where the reference does not
// cover every shifted year are marked invalid.
func LagProfile(segment schema.YearSeries, ref *schema.Chronology, lagRange int, kind schema.CorrelationKind) []schema.LagCorrelation {
	profile := make([]schema.LagCorrelation, 0, 2*lagRange+1)
	for lag := -lagRange; lag <= lagRange; lag++ {
		entry := schema.LagCorrelation{Lag: lag}
		if covers(ref, segment, lag) {
			entry.Correlation = shiftedCorrelation(segment, ref, lag, kind)
			entry.Valid = true
		}
		profile = append(profile, entry)
	}
	return profile
}

func covers(ref *schema.Chronology, segment schema.YearSeries, lag int) bool {
	for _, y := range segment.Years {
		if _, ok := ref.Lookup(y + lag); !ok {
			return false
		}
	}
	return true
}

// shiftedCorrelation joins ys, with lag added to its years, against ref and correlates the pairs.
func shiftedCorrelation(ys schema.YearSeries, ref *schema.Chronology, lag int, kind schema.CorrelationKind) float64 {
	x := make([]float64, 0, ys.Len())
	y := make([]float64, 0, ys.Len())
	for k, year := range ys.Years {
		if v, ok := ref.Lookup(year + lag); ok {
			x = append(x, ys.Values[k])
			y = append(y, v)
		}
	}
	return algo.Correlate(x, y, kind)
}
