package algo

import (
	"math"
	"sort"

	"github.com/huangsam/dendro/schema"
	"gonum.org/v1/gonum/stat"
)

// Correlate returns the correlation of x and y using the requested kind.
// Only rows where both values are finite take part. The result is NaN when
// fewer than two rows remain or either side has no variance.
func Correlate(x, y []float64, kind schema.CorrelationKind) float64 {
	xs, ys := pairwiseComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	if kind == schema.SpearmanCorrelation {
		xs, ys = Ranks(xs), Ranks(ys)
	}
	return pearson(xs, ys)
}

func pearson(x, y []float64) float64 {
	if constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func pairwiseComplete(x, y []float64) (xs, ys []float64) {
	n := min(len(x), len(y))
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := range n {
		if finite(x[i]) && finite(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ranks returns 1-based ranks of values, giving tied values their average rank.
func Ranks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
