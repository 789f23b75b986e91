package algo

import (
	"math"

	"github.com/huangsam/dendro/schema"
	"gonum.org/v1/gonum/stat"
)

// Describe computes summary statistics for one series.
// Statistics that cannot be computed for short series are NaN.
func Describe(ys schema.YearSeries) schema.SeriesStats {
	st := schema.SeriesStats{
		Series: ys.Name,
		Mean:   math.NaN(),
		Median: math.NaN(),
		StdDev: math.NaN(),
		Skew:   math.NaN(),
		Gini:   math.NaN(),
		AR1:    math.NaN(),
	}
	if ys.Len() == 0 {
		return st
	}
	st.First, st.Last = ys.First(), ys.Last()
	st.Years = st.Last - st.First + 1
	st.Mean = stat.Mean(ys.Values, nil)
	st.Median = Median(ys.Values)
	st.Gini = gini(ys.Values)
	if ys.Len() < 2 {
		return st
	}
	st.StdDev = stat.StdDev(ys.Values, nil)
	st.Skew = skew(ys.Values, st.Mean, st.StdDev)
	if fit, err := FitAROrder(ys.Values, 1); err == nil {
		st.AR1 = fit.Params[1]
	}
	return st
}

// skew is the mean cubed z-score using the sample standard deviation.
func skew(values []float64, mean, sd float64) float64 {
	if sd == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / float64(len(values))
}

// gini calculates the Gini coefficient of ring widths, ranging from 0 (every
// ring equal) to 1 (all growth in one ring).
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	mean := stat.Mean(values, nil)
	if mean == 0 {
		return 0
	}

	var diffSum float64
	for i := range n {
		for j := range n {
			diffSum += math.Abs(values[i] - values[j])
		}
	}

	g := diffSum / (2 * float64(n*n) * mean)
	return math.Min(math.Max(g, 0), 1)
}
