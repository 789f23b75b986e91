package algo

import (
	"math"
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Median(tt.values))
		})
	}

	t.Run("empty is NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(Median(nil)))
	})

	t.Run("input untouched", func(t *testing.T) {
		values := []float64{3, 1, 2}
		Median(values)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})
}

func TestRobustMean(t *testing.T) {
	t.Run("symmetric values give the mean", func(t *testing.T) {
		assert.InDelta(t, 3.0, RobustMean([]float64{1, 2, 3, 4, 5}, schema.DefaultBiweightC), 1e-9)
	})

	t.Run("outlier is downweighted", func(t *testing.T) {
		got := RobustMean([]float64{1, 2, 3, 4, 100}, schema.DefaultBiweightC)
		assert.GreaterOrEqual(t, got, 2.5)
		assert.LessOrEqual(t, got, 3.5)
	})

	t.Run("identical values", func(t *testing.T) {
		assert.Equal(t, 5.0, RobustMean([]float64{5, 5, 5}, schema.DefaultBiweightC))
	})

	t.Run("empty is NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(RobustMean(nil, schema.DefaultBiweightC)))
	})
}

// FuzzRobustMean checks that the biweight mean stays within the range of its inputs.
func FuzzRobustMean(f *testing.F) {
	f.Add(1.0, 2.0, 3.0, 100.0)
	f.Add(0.5, 0.5, 0.5, 0.5)
	f.Add(-3.0, 7.5, 1e6, 0.0)

	f.Fuzz(func(t *testing.T, a, b, c, d float64) {
		values := []float64{a, b, c, d}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e12 {
				return
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		got := RobustMean(values, schema.DefaultBiweightC)
		if math.IsNaN(got) {
			return
		}
		tol := 1e-9 * math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
		if got < lo-tol || got > hi+tol {
			t.Fatalf("RobustMean(%v) = %v outside [%v, %v]", values, got, lo, hi)
		}
	})
}
