package algo

import (
	"errors"
	"fmt"

	"github.com/huangsam/dendro/schema"
	"gonum.org/v1/gonum/stat"
)

// ErrUnsupportedFit is returned for growth curves dendro does not fit.
var ErrUnsupportedFit = errors.New("unsupported curve fit")

// FitCurve returns the fitted growth curve for the observations of ys.
func FitCurve(ys schema.YearSeries, fit schema.FitKind) ([]float64, error) {
	n := ys.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: series %q has no values", schema.ErrInvalidInput, ys.Name)
	}
	curve := make([]float64, n)
	switch fit {
	case schema.HorizontalFit:
		mean := stat.Mean(ys.Values, nil)
		for i := range curve {
			curve[i] = mean
		}
	case schema.LinearFit:
		if n < 2 {
			return nil, fmt.Errorf("%w: series %q needs two values for a linear fit", schema.ErrInvalidInput, ys.Name)
		}
		x := make([]float64, n)
		for i, y := range ys.Years {
			x[i] = float64(y)
		}
		alpha, beta := stat.LinearRegression(x, ys.Values, nil, false)
		for i := range curve {
			curve[i] = alpha + beta*x[i]
		}
	case schema.SplineFit, schema.NegExpFit, schema.HugershoffFit:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFit, fit)
	default:
		return nil, fmt.Errorf("%w: unknown fit %q", schema.ErrInvalidArgument, fit)
	}
	return curve, nil
}

// DetrendSeries converts ys into an index against the fitted curve.
func DetrendSeries(ys schema.YearSeries, fit schema.FitKind, method schema.DetrendMethod) (schema.YearSeries, error) {
	curve, err := FitCurve(ys, fit)
	if err != nil {
		return schema.YearSeries{}, err
	}
	out := schema.YearSeries{Name: ys.Name, Years: ys.Years, Values: make([]float64, ys.Len())}
	for i, v := range ys.Values {
		switch method {
		case schema.ResidualMethod:
			out.Values[i] = v / curve[i]
		case schema.DifferenceMethod:
			out.Values[i] = v - curve[i]
		default:
			return schema.YearSeries{}, fmt.Errorf("%w: unknown detrending method %q", schema.ErrInvalidArgument, method)
		}
	}
	return out, nil
}

// Detrend applies DetrendSeries to every series of ds and realigns the results.
// Series without any values are carried over unchanged.
func Detrend(ds *schema.Dataset, fit schema.FitKind, method schema.DetrendMethod) (*schema.Dataset, error) {
	series := make([]schema.Series, len(ds.Series))
	for i, s := range ds.Series {
		points := ds.Points(i)
		if points.Len() == 0 {
			series[i] = s
			continue
		}
		detrended, err := DetrendSeries(points, fit, method)
		if err != nil {
			return nil, fmt.Errorf("detrending %s: %w", s.Name, err)
		}
		series[i] = ds.Align(detrended)
	}
	return schema.NewDataset(ds.Years, series)
}
