// Package algo has the numerical building blocks of dendro: robust location,
// correlation, critical values, autoregressive prewhitening and detrending.
package algo

import (
	"math"
	"slices"

	"github.com/huangsam/dendro/schema"
)

// Median returns the median of values, averaging the two middle values for even counts.
// The input is not modified. An empty input yields NaN.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MedianAbsDeviation returns the median of |v - center|.
func MedianAbsDeviation(values []float64, center float64) float64 {
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - center)
	}
	return Median(dev)
}

// RobustMean computes Tukey's biweight robust mean with tuning constant c.
//
// Values further than c median absolute deviations from the median get zero
// weight; the rest are weighted by (1-u²)². The result is NaN for an empty
// input or when every weight is zero.
func RobustMean(values []float64, c float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := Median(values)
	s := MedianAbsDeviation(values, m)

	var sumW, sumWV float64
	for _, v := range values {
		u := (v - m) / (c*s + schema.MADEpsilon)
		if math.Abs(u) > 1 {
			continue
		}
		w := (1 - u*u) * (1 - u*u)
		sumW += w
		sumWV += w * v
	}
	if sumW == 0 {
		return math.NaN()
	}
	return sumWV / sumW
}
