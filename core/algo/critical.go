package algo

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TQuantile returns the inverse CDF of Student's t distribution with df degrees of freedom.
func TQuantile(p, df float64) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return t.Quantile(p)
}

// CriticalCorrelation returns the smallest correlation that is significant at
// pValue (one-tailed) for n paired observations.
func CriticalCorrelation(pValue float64, n int) float64 {
	if n <= 2 || pValue <= 0 || pValue >= 1 {
		return math.NaN()
	}
	df := float64(n - 2)
	t := TQuantile(1-pValue, df)
	cc := math.Pow(t/math.Sqrt(df), 2)
	return math.Sqrt(cc / (1 + cc))
}
