package agg

import (
	"fmt"
	"math"

	"github.com/huangsam/dendro/schema"
	"gonum.org/v1/gonum/stat"
)

// StabilizeOptions configures a variance-stabilized chronology.
type StabilizeOptions struct {
	Window      int               // running rbar window; zero means schema.DefaultWindow
	MinSegRatio float64           // zero means schema.DefaultMinSegRatio
	Method      schema.RbarMethod // running rbar method; empty means osborn
	Biweight    bool
	C           float64
	RunningRbar bool // keep the running rbar column in the result
}

// Stabilize rescales the chronology of ds by the effective number of independent
// series in each year, so that years with high sample depth do not carry
// inflated variance.
func Stabilize(ds *schema.Dataset, opts StabilizeOptions) (*schema.StabilizedChronology, error) {
	if err := checkShape(ds); err != nil {
		return nil, err
	}
	if opts.Window == 0 {
		opts.Window = schema.DefaultWindow
	}
	if opts.MinSegRatio == 0 {
		opts.MinSegRatio = schema.DefaultMinSegRatio
	}
	if opts.Method == "" {
		opts.Method = schema.OsbornMethod
	}
	if err := checkRatio(opts.MinSegRatio); err != nil {
		return nil, err
	}
	rows := ds.Rows()
	if opts.Window > rows {
		return nil, fmt.Errorf("%w: window %d exceeds the row count %d", schema.ErrInvalidArgument, opts.Window, rows)
	}

	var warnings []string
	w := float64(opts.Window)
	if w < schema.AdvisoryWindowLow*float64(rows) || w >= schema.AdvisoryWindowHigh*float64(rows) {
		warnings = append(warnings, fmt.Sprintf(
			"window %d is outside the recommended range of %.0f%% to %.0f%% of the %d-year chronology",
			opts.Window, schema.AdvisoryWindowLow*100, schema.AdvisoryWindowHigh*100, rows))
	}

	grandMean := GrandMean(ds)
	centred := shift(ds, -grandMean)

	running, err := RunningIntercorrelation(centred, opts.Window, opts.MinSegRatio, opts.Method, schema.PearsonCorrelation)
	if err != nil {
		return nil, err
	}
	chron, err := BuildChronology(centred, ChronologyOptions{Biweight: opts.Biweight, C: opts.C})
	if err != nil {
		return nil, err
	}
	rbarConst := MeanIntercorrelation(centred, opts.MinSegRatio, schema.PearsonCorrelation)

	out := &schema.StabilizedChronology{
		Years:        chron.Years,
		Adjusted:     make([]float64, rows),
		Depth:        chron.Depth,
		RbarConstant: rbarConst,
		GrandMean:    grandMean,
		Warnings:     warnings,
	}
	for t := range rows {
		neff := EffectiveSampleSize(chron.Depth[t], running[t])
		out.Adjusted[t] = chron.Mean[t]*math.Sqrt(neff*rbarConst) + grandMean
	}
	if opts.RunningRbar {
		out.RunningRbar = running
	}
	return out, nil
}

// EffectiveSampleSize returns n/(1+(n-1)·rbar), never more than n.
func EffectiveSampleSize(n int, rbar float64) float64 {
	depth := float64(n)
	return math.Min(depth/(1+(depth-1)*rbar), depth)
}

// GrandMean is the mean of the per-series means of ds.
func GrandMean(ds *schema.Dataset) float64 {
	means := make([]float64, 0, len(ds.Series))
	for i := range ds.Series {
		points := ds.Points(i)
		if points.Len() > 0 {
			means = append(means, stat.Mean(points.Values, nil))
		}
	}
	if len(means) == 0 {
		return math.NaN()
	}
	return stat.Mean(means, nil)
}

// shift returns a copy of ds with delta added to every valid value.
func shift(ds *schema.Dataset, delta float64) *schema.Dataset {
	series := make([]schema.Series, len(ds.Series))
	for i, s := range ds.Series {
		values := make([]float64, len(s.Values))
		for r, v := range s.Values {
			values[r] = v + delta
		}
		series[i] = schema.Series{Name: s.Name, Values: values, Valid: s.Valid}
	}
	return &schema.Dataset{Years: ds.Years, Series: series}
}
