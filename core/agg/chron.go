// Package agg has aggregation logic for ring-width datasets: chronologies,
// interseries correlation and variance stabilization.
package agg

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
	"gonum.org/v1/gonum/stat"
)

// ChronologyOptions controls how a chronology is aggregated.
type ChronologyOptions struct {
	Biweight  bool        // aggregate with the biweight robust mean instead of the arithmetic mean
	C         float64     // biweight tuning constant; zero means schema.DefaultBiweightC
	Prewhiten bool        // also aggregate AR residuals into Chronology.Whitened
	MaxARLag  int         // AR order cap for prewhitening; zero means schema.DefaultMaxARLag
	AR        algo.ARFunc // AR fitter; nil means algo.FitAR
}

func (o ChronologyOptions) withDefaults() ChronologyOptions {
	if o.C <= 0 {
		o.C = schema.DefaultBiweightC
	}
	if o.MaxARLag <= 0 {
		o.MaxARLag = schema.DefaultMaxARLag
	}
	if o.AR == nil {
		o.AR = algo.FitAR
	}
	return o
}

// BuildChronology aggregates every year of ds into a mean value and sample depth.
// Years without any valid value get a NaN mean and zero depth.
func BuildChronology(ds *schema.Dataset, opts ChronologyOptions) (*schema.Chronology, error) {
	if err := checkShape(ds); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	rows := ds.Rows()
	chron := &schema.Chronology{
		Years: ds.Years,
		Mean:  make([]float64, rows),
		Depth: make([]int, rows),
	}

	column := make([]float64, 0, len(ds.Series))
	for r := range rows {
		column = column[:0]
		for _, s := range ds.Series {
			if s.Valid[r] {
				column = append(column, s.Values[r])
			}
		}
		chron.Depth[r] = len(column)
		chron.Mean[r] = aggregate(column, opts)
	}

	if opts.Prewhiten {
		whitened, skipped := whiten(ds, opts)
		chron.Whitened = whitened
		chron.Skipped = skipped
	}
	return chron, nil
}

// whiten aggregates the AR residuals of every series. Series whose AR fit is
// degenerate are reported as skipped and contribute nothing.
func whiten(ds *schema.Dataset, opts ChronologyOptions) ([]float64, []schema.SkippedSeries) {
	rows := ds.Rows()
	columns := make([][]float64, rows)
	var skipped []schema.SkippedSeries

	for i, s := range ds.Series {
		points := ds.Points(i)
		if points.Len() == 0 {
			continue
		}
		fit, err := opts.AR(points.Values, opts.MaxARLag)
		if err != nil {
			if !errors.Is(err, algo.ErrDegenerateFit) {
				err = fmt.Errorf("%w: %v", algo.ErrDegenerateFit, err)
			}
			skipped = append(skipped, schema.SkippedSeries{Name: s.Name, Reason: err.Error()})
			continue
		}
		offset := points.Len() - len(fit.Residuals)
		for k, v := range fit.Residuals {
			r, _ := ds.Index(points.Years[offset+k])
			columns[r] = append(columns[r], v)
		}
	}

	whitened := make([]float64, rows)
	for r, column := range columns {
		whitened[r] = aggregate(column, opts)
	}
	return whitened, skipped
}

func aggregate(column []float64, opts ChronologyOptions) float64 {
	switch {
	case len(column) == 0:
		return math.NaN()
	case opts.Biweight:
		return algo.RobustMean(column, opts.C)
	default:
		return stat.Mean(column, nil)
	}
}

func checkShape(ds *schema.Dataset) error {
	if ds == nil || ds.Rows() == 0 {
		return fmt.Errorf("%w: empty dataset", schema.ErrInvalidInput)
	}
	for _, s := range ds.Series {
		if len(s.Values) != ds.Rows() || len(s.Valid) != ds.Rows() {
			return fmt.Errorf("%w: series %q is not aligned to the year axis", schema.ErrInvalidInput, s.Name)
		}
	}
	return nil
}
