package xdate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shiftedDataset has 20 years where A and B carry the same signal and C
// carries it three years late.
func shiftedDataset(t *testing.T) *schema.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	signal := make(map[int]float64)
	for y := 1890; y < 1930; y++ {
		signal[y] = 0.5 + rng.Float64()
	}
	years := make([]int, 20)
	a, b, c := make([]float64, 20), make([]float64, 20), make([]float64, 20)
	for i := range years {
		y := 1900 + i
		years[i] = y
		a[i] = signal[y]
		b[i] = 2 * signal[y]
		c[i] = signal[y-3]
	}
	ds, err := schema.DatasetFromColumns(years, []string{"C", "A", "B"}, map[string][]float64{"A": a, "B": b, "C": c})
	require.NoError(t, err)
	return ds
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Kind = schema.PearsonCorrelation
	opts.Prewhiten = false
	opts.SlidePeriod = 10
	opts.BinFloor = 0
	return opts
}

func TestCrossdateFlagsShiftedSeries(t *testing.T) {
	ds := shiftedDataset(t)
	result, err := Crossdate(context.Background(), ds, testOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, result.Series)
	assert.Equal(t, []string{"1900-1909", "1905-1914", "1910-1919"}, labels(result.Bins))
	assert.InDelta(t, 0.5494, result.Critical, 1e-3)

	var lagFlags []schema.Flag
	for _, f := range result.FlagsFor("C") {
		if f.Kind == schema.LagMismatchFlag {
			lagFlags = append(lagFlags, f)
		}
	}
	require.NotEmpty(t, lagFlags)
	for _, f := range lagFlags {
		assert.Equal(t, -3, f.BestLag, "segment %s", f.Bin.Label())
		assert.InDelta(t, 1.0, f.BestCorrelation, 1e-9)
	}

	// Shift -3 needs chronology years before 1900 for the first bin.
	for _, f := range result.FlagsFor("C") {
		if f.Bin.Start == 1900 {
			assert.False(t, f.Profile[schema.DefaultLagRange-3].Valid)
		}
	}
}

func TestCrossdateDeterministic(t *testing.T) {
	ds := shiftedDataset(t)

	opts := testOptions()
	first, err := Crossdate(context.Background(), ds, opts)
	require.NoError(t, err)
	second, err := Crossdate(context.Background(), ds, opts)
	require.NoError(t, err)
	assert.Equal(t, schema.NewXdateView(first), schema.NewXdateView(second))

	opts.Workers = 4
	parallel, err := Crossdate(context.Background(), ds, opts)
	require.NoError(t, err)
	assert.Equal(t, schema.NewXdateView(first), schema.NewXdateView(parallel))
}

func TestCrossdateBinsOutsideSeries(t *testing.T) {
	nan := math.NaN()
	ds := shiftedDataset(t)
	short := make([]float64, ds.Rows())
	for i := range short {
		short[i] = nan
		if i <= 12 {
			short[i] = ds.Series[1].Values[i] * 1.5
		}
	}
	ds, err := schema.NewDataset(ds.Years, append(ds.Series, schema.NewSeries("D", short)))
	require.NoError(t, err)

	result, err := Crossdate(context.Background(), ds, testOptions())
	require.NoError(t, err)
	require.Equal(t, "D", result.Series[3])
	assert.False(t, math.IsNaN(result.Correlations[0][3]))
	assert.True(t, math.IsNaN(result.Correlations[1][3]))
	assert.True(t, math.IsNaN(result.Correlations[2][3]))
	assert.False(t, math.IsNaN(result.Overall[3]))
}

func TestCrossdateSkipsDegenerateSeries(t *testing.T) {
	nan := math.NaN()
	ds := shiftedDataset(t)
	for i := 11; i < ds.Rows(); i++ {
		ds.Series[0].Values[i] = nan
		ds.Series[0].Valid[i] = false
	}
	failShort := func(values []float64, _ int) (*algo.ARFit, error) {
		if len(values) < 15 {
			return nil, fmt.Errorf("%w: %d values", algo.ErrDegenerateFit, len(values))
		}
		return &algo.ARFit{Residuals: values}, nil
	}

	opts := testOptions()
	opts.Prewhiten = true
	opts.AR = failShort
	result, err := Crossdate(context.Background(), ds, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, result.Series)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "C", result.Skipped[0].Name)
	assert.Empty(t, result.FlagsFor("C"))
}

func TestCrossdateErrors(t *testing.T) {
	ds := shiftedDataset(t)

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Crossdate(ctx, ds, testOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no dataset", func(t *testing.T) {
		_, err := Crossdate(context.Background(), nil, testOptions())
		assert.ErrorIs(t, err, schema.ErrInvalidInput)
	})

	t.Run("unknown correlation", func(t *testing.T) {
		opts := testOptions()
		opts.Kind = "kendall"
		_, err := Crossdate(context.Background(), ds, opts)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("p-value out of range", func(t *testing.T) {
		opts := testOptions()
		opts.PValue = 1.5
		_, err := Crossdate(context.Background(), ds, opts)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}
