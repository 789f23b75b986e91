package xdate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/huangsam/dendro/core/agg"
	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
)

// Options configures a crossdating run.
type Options struct {
	Kind         schema.CorrelationKind
	Prewhiten    bool
	SlidePeriod  int // segment length and bin size
	BinFloor     int
	PValue       float64
	SearchLags   bool
	LagRange     int
	LagThreshold float64
	Biweight     bool    // leave-one-out chronologies use the biweight mean
	C            float64 // biweight tuning constant
	Workers      int
	AR           algo.ARFunc // nil means algo.FitAR
}

// DefaultOptions returns the standard crossdating settings.
func DefaultOptions() Options {
	return Options{
		Kind:         schema.SpearmanCorrelation,
		Prewhiten:    true,
		SlidePeriod:  schema.DefaultSlidePeriod,
		BinFloor:     schema.DefaultBinFloor,
		PValue:       schema.DefaultPValue,
		SearchLags:   true,
		LagRange:     schema.DefaultLagRange,
		LagThreshold: schema.DefaultLagThreshold,
		Biweight:     true,
		C:            schema.DefaultBiweightC,
		Workers:      1,
	}
}

func (o Options) validate() error {
	if _, ok := schema.ValidCorrelationKinds[o.Kind]; !ok {
		return fmt.Errorf("%w: unknown correlation %q", schema.ErrInvalidArgument, o.Kind)
	}
	if o.SlidePeriod < 3 {
		return fmt.Errorf("%w: slide period %d must be at least 3", schema.ErrInvalidArgument, o.SlidePeriod)
	}
	if o.BinFloor < 0 {
		return fmt.Errorf("%w: bin floor %d must not be negative", schema.ErrInvalidArgument, o.BinFloor)
	}
	if o.PValue <= 0 || o.PValue >= 1 {
		return fmt.Errorf("%w: p-value %v must be in (0, 1)", schema.ErrInvalidArgument, o.PValue)
	}
	if o.LagRange < 0 {
		return fmt.Errorf("%w: lag range %d must not be negative", schema.ErrInvalidArgument, o.LagRange)
	}
	return nil
}

func (o Options) compareOptions() CompareOptions {
	return CompareOptions{
		SegLength:    o.SlidePeriod,
		Kind:         o.Kind,
		PValue:       o.PValue,
		SearchLags:   o.SearchLags,
		LagRange:     o.LagRange,
		LagThreshold: o.LagThreshold,
	}
}

// seriesOutcome is the result of one leave-one-out pass.
type seriesOutcome struct {
	overall float64
	bins    []float64
	flags   []schema.Flag
	err     error
}

// Crossdate checks every series of ds against the chronology of all the others.
//
// Series are normalised by their mean, optionally prewhitened, and then
// analysed in lexicographic order of name. Series whose prewhitening fails are
// left out of the run and listed in the result's Skipped. The context is
// checked before each series.
func Crossdate(ctx context.Context, ds *schema.Dataset, opts Options) (*schema.XdateResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if ds == nil || len(ds.Series) == 0 {
		return nil, fmt.Errorf("%w: dataset has no series", schema.ErrInvalidInput)
	}
	first, last, ok := ds.ValidRange()
	if !ok {
		return nil, fmt.Errorf("%w: dataset has no values", schema.ErrInvalidInput)
	}
	bins, err := Bins(first, last, opts.BinFloor, opts.SlidePeriod)
	if err != nil {
		return nil, err
	}
	ready, skipped, err := prepare(ds, opts.Prewhiten, opts.AR)
	if err != nil {
		return nil, err
	}

	names := ready.SortedNames()
	outcomes := make([]seriesOutcome, len(names))

	idxCh := make(chan int, len(names))
	var wg sync.WaitGroup
	for range max(1, opts.Workers) {
		wg.Go(func() {
			for i := range idxCh {
				if err := ctx.Err(); err != nil {
					outcomes[i].err = err
					continue
				}
				outcomes[i] = analyzeSeries(ready, names[i], bins, opts)
			}
		})
	}
	for i := range names {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &schema.XdateResult{
		Kind:         opts.Kind,
		SegLength:    opts.SlidePeriod,
		Critical:     algo.CriticalCorrelation(opts.PValue, opts.SlidePeriod),
		LagRange:     opts.LagRange,
		Prewhitened:  opts.Prewhiten,
		Bins:         bins,
		Series:       names,
		Correlations: make([][]float64, len(bins)),
		Overall:      make([]float64, len(names)),
		Skipped:      skipped,
	}
	for b := range bins {
		result.Correlations[b] = make([]float64, len(names))
	}
	for s, out := range outcomes {
		if out.err != nil {
			return nil, out.err
		}
		result.Overall[s] = out.overall
		for b, r := range out.bins {
			result.Correlations[b][s] = r
		}
		result.Flags = append(result.Flags, out.flags...)
	}
	return result, nil
}

// analyzeSeries runs the leave-one-out comparison for one series.
// It only reads ready, so concurrent calls are safe.
func analyzeSeries(ready *schema.Dataset, name string, bins []schema.Bin, opts Options) seriesOutcome {
	out := seriesOutcome{overall: math.NaN(), bins: make([]float64, len(bins))}
	for b := range out.bins {
		out.bins[b] = math.NaN()
	}

	idx, _ := ready.Lookup(name)
	chron, err := agg.BuildChronology(ready.Without(name), agg.ChronologyOptions{Biweight: opts.Biweight, C: opts.C})
	if err != nil {
		out.err = err
		return out
	}
	points := ready.Points(idx)
	if points.Len() == 0 {
		return out
	}
	out.overall = shiftedCorrelation(points, chron, 0, opts.Kind)

	cmp := opts.compareOptions()
	for b, bin := range bins {
		if bin.Start < points.First() || bin.End > points.Last() {
			continue
		}
		segment := points.Between(bin.Start, bin.End)
		if segment.Len() != bin.Len() {
			continue
		}
		r, flag, err := CompareSegment(name, segment, chron, cmp)
		if err != nil {
			out.err = err
			return out
		}
		out.bins[b] = r
		if flag != nil {
			out.flags = append(out.flags, *flag)
		}
	}
	return out
}

// prepare normalises every series by its mean and optionally replaces it with
// its AR residuals. A series whose AR fit is degenerate is dropped and reported.
func prepare(ds *schema.Dataset, prewhiten bool, ar algo.ARFunc) (*schema.Dataset, []schema.SkippedSeries, error) {
	rwi, err := algo.Detrend(ds, schema.HorizontalFit, schema.ResidualMethod)
	if err != nil {
		return nil, nil, err
	}
	if !prewhiten {
		return rwi, nil, nil
	}
	if ar == nil {
		ar = algo.FitAR
	}

	var skipped []schema.SkippedSeries
	series := make([]schema.Series, 0, len(rwi.Series))
	for i, s := range rwi.Series {
		points := rwi.Points(i)
		fit, err := ar(points.Values, algo.ARLag(points.Len()))
		if err != nil {
			if !errors.Is(err, algo.ErrDegenerateFit) {
				return nil, nil, fmt.Errorf("prewhitening %s: %w", s.Name, err)
			}
			skipped = append(skipped, schema.SkippedSeries{Name: s.Name, Reason: err.Error()})
			continue
		}
		offset := points.Len() - len(fit.Residuals)
		residuals := schema.YearSeries{Name: s.Name, Years: points.Years[offset:], Values: fit.Residuals}
		series = append(series, rwi.Align(residuals))
	}
	return &schema.Dataset{Years: rwi.Years, Series: series}, skipped, nil
}
