package xdate

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/dendro/core/agg"
	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
)

// ErrUnknownSeries is returned when a named series is not in the dataset.
var ErrUnknownSeries = errors.New("unknown series")

// FocusOptions configures a single-series correlation analysis.
type FocusOptions struct {
	Kind      schema.CorrelationKind
	Prewhiten bool
	SegLength int
	BinFloor  int
	PValue    float64
	LagRange  int // range of the diagnostic lag profiles
	Biweight  bool
	C         float64
	AR        algo.ARFunc
}

// DefaultFocusOptions returns the standard settings for SeriesCorrelation.
func DefaultFocusOptions() FocusOptions {
	return FocusOptions{
		Kind:      schema.SpearmanCorrelation,
		Prewhiten: true,
		SegLength: schema.DefaultSlidePeriod,
		BinFloor:  schema.DefaultBinFloor,
		PValue:    schema.DefaultPValue,
		LagRange:  schema.DefaultFocusLagRange,
		Biweight:  true,
		C:         schema.DefaultBiweightC,
	}
}

// SeriesCorrelation compares one series against the chronology of all others
// over densely overlapping segments, advancing one year at a time, and adds
// lag profiles for segments spaced half a segment apart.
func SeriesCorrelation(ctx context.Context, ds *schema.Dataset, name string, opts FocusOptions) (*schema.FocusResult, error) {
	base := Options{
		Kind:        opts.Kind,
		SlidePeriod: opts.SegLength,
		BinFloor:    opts.BinFloor,
		PValue:      opts.PValue,
		LagRange:    opts.LagRange,
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: no dataset", schema.ErrInvalidInput)
	}
	if _, ok := ds.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
	}
	dataFirst, dataLast, ok := ds.ValidRange()
	if !ok {
		return nil, fmt.Errorf("%w: dataset has no values", schema.ErrInvalidInput)
	}

	ready, skipped, err := prepare(ds, opts.Prewhiten, opts.AR)
	if err != nil {
		return nil, err
	}
	idx, ok := ready.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("prewhitening %s: %w", name, algo.ErrDegenerateFit)
	}
	points := ready.Points(idx)
	if points.Len() == 0 {
		return nil, fmt.Errorf("%w: series %q has no values", schema.ErrInvalidInput, name)
	}
	chron, err := agg.BuildChronology(ready.Without(name), agg.ChronologyOptions{Biweight: opts.Biweight, C: opts.C})
	if err != nil {
		return nil, err
	}

	seg := opts.SegLength
	result := &schema.FocusResult{
		Series:    name,
		Kind:      opts.Kind,
		SegLength: seg,
		Overall:   shiftedCorrelation(points, chron, 0, opts.Kind),
		Critical:  algo.CriticalCorrelation(opts.PValue, seg),
		Skipped:   skipped,
	}
	start, end, ok := RelevantRange(dataFirst, dataLast, points.First(), points.Last(), opts.BinFloor, seg)
	if !ok {
		start, end = points.First(), points.Last()
	}
	result.Start, result.End = start, end

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segStart := i - seg/2
		segment := points.Between(segStart, segStart+seg-1)
		if segment.Len() != seg {
			continue
		}
		result.Points = append(result.Points, schema.FocusPoint{
			Center:      i,
			Start:       segStart,
			End:         segStart + seg - 1,
			Correlation: shiftedCorrelation(segment, chron, 0, opts.Kind),
		})
		if phase := mod(i-start-seg/2, seg); phase == 0 || phase == seg/2 {
			result.Profiles = append(result.Profiles, schema.LagProfile{
				Start: segStart,
				End:   segStart + seg - 1,
				Lags:  LagProfile(segment, chron, opts.LagRange, opts.Kind),
			})
		}
	}
	return result, nil
}
