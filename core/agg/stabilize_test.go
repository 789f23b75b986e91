package agg

import (
	"math"
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveSampleSize(t *testing.T) {
	t.Run("independent series", func(t *testing.T) {
		for n := 1; n <= 10; n++ {
			assert.Equal(t, float64(n), EffectiveSampleSize(n, 0))
		}
	})

	t.Run("never above depth", func(t *testing.T) {
		for n := 1; n <= 10; n++ {
			for _, r := range []float64{0, 0.1, 0.5, 0.9, 1} {
				assert.LessOrEqual(t, EffectiveSampleSize(n, r), float64(n))
			}
		}
	})

	t.Run("identical series count once", func(t *testing.T) {
		assert.InDelta(t, 1.0, EffectiveSampleSize(8, 1), 1e-12)
	})
}

func signalDataset(t *testing.T, rows int) *schema.Dataset {
	t.Helper()
	a, b, c := make([]float64, rows), make([]float64, rows), make([]float64, rows)
	for i := range rows {
		x := float64(i)
		a[i] = math.Sin(x/2) + 2
		b[i] = math.Sin(x/2) + 2.2 + 0.2*math.Cos(3*x)
		c[i] = math.Sin(x/2) + 1.8 - 0.2*math.Cos(2*x)
	}
	return mustDataset(t, seq(1800, rows), map[string][]float64{"A": a, "B": b, "C": c})
}

func TestStabilize(t *testing.T) {
	ds := signalDataset(t, 20)

	t.Run("adjusted chronology", func(t *testing.T) {
		out, err := Stabilize(ds, StabilizeOptions{Window: 8, MinSegRatio: 0.33, Biweight: true, RunningRbar: true})
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)
		assert.Len(t, out.Adjusted, 20)
		assert.Len(t, out.RunningRbar, 20)
		assert.InDelta(t, GrandMean(ds), out.GrandMean, 1e-12)
		assert.Greater(t, out.RbarConstant, 0.0)
		for i, v := range out.Adjusted {
			assert.False(t, math.IsNaN(v), "row %d", i)
			assert.Equal(t, 3, out.Depth[i])
		}
	})

	t.Run("running rbar omitted by default", func(t *testing.T) {
		out, err := Stabilize(ds, StabilizeOptions{Window: 8, MinSegRatio: 0.33})
		require.NoError(t, err)
		assert.Nil(t, out.RunningRbar)
	})

	t.Run("advisory window", func(t *testing.T) {
		for _, window := range []int{4, 10, 15} {
			out, err := Stabilize(ds, StabilizeOptions{Window: window, MinSegRatio: 0.33})
			require.NoError(t, err)
			assert.Len(t, out.Warnings, 1, "window %d", window)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := Stabilize(ds, StabilizeOptions{Window: 21, MinSegRatio: 0.33})
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)

		_, err = Stabilize(ds, StabilizeOptions{Window: 8, MinSegRatio: -0.1})
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)

		_, err = Stabilize(ds, StabilizeOptions{Window: 8, MinSegRatio: 1.2})
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("input untouched", func(t *testing.T) {
		before := append([]float64(nil), ds.Series[0].Values...)
		_, err := Stabilize(ds, StabilizeOptions{Window: 8})
		require.NoError(t, err)
		assert.Equal(t, before, ds.Series[0].Values)
	})
}
