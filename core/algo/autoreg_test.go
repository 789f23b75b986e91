package algo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func ar1Series(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	values[0] = 1
	for t := 1; t < n; t++ {
		values[t] = 0.3 + phi*values[t-1] + rng.NormFloat64()*0.1
	}
	return values
}

func TestARLag(t *testing.T) {
	tests := []struct {
		n, expected int
	}{
		{1, 0},
		{5, 4},
		{10, 9},
		{100, 20},
		{300, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ARLag(tt.n), "n=%d", tt.n)
	}
}

func TestFitAR(t *testing.T) {
	values := ar1Series(500, 0.7, 1)

	t.Run("recovers lag one coefficient", func(t *testing.T) {
		fit, err := FitAROrder(values, 1)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, fit.Params[1], 0.15)
		assert.Len(t, fit.Residuals, len(values)-1)
	})

	t.Run("selected order within cap", func(t *testing.T) {
		fit, err := FitAR(values, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fit.Order, 1)
		assert.LessOrEqual(t, fit.Order, 5)
		assert.Len(t, fit.Residuals, len(values)-fit.Order)
		assert.False(t, math.IsInf(fit.AIC, 0))
	})

	t.Run("residuals keep the series mean", func(t *testing.T) {
		fit, err := FitAR(values, 3)
		require.NoError(t, err)
		assert.InDelta(t, fit.Mean, stat.Mean(fit.Residuals, nil), 1e-9)
	})

	t.Run("order capped for short series", func(t *testing.T) {
		fit, err := FitAR(values[:6], 10)
		require.NoError(t, err)
		assert.LessOrEqual(t, fit.Order, 2)
	})
}

func TestFitARDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"too short", []float64{1, 2}},
		{"non-finite", []float64{1, 2, math.NaN(), 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitAR(tt.values, 3)
			assert.ErrorIs(t, err, ErrDegenerateFit)
		})
	}

	t.Run("order too high for data", func(t *testing.T) {
		_, err := FitAROrder([]float64{1, 2, 3}, 2)
		assert.ErrorIs(t, err, ErrDegenerateFit)
	})
}
