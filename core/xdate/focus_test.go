package xdate

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focusOptions() FocusOptions {
	opts := DefaultFocusOptions()
	opts.Kind = schema.PearsonCorrelation
	opts.Prewhiten = false
	opts.SegLength = 10
	opts.BinFloor = 0
	return opts
}

func TestSeriesCorrelation(t *testing.T) {
	ds := shiftedDataset(t)
	result, err := SeriesCorrelation(context.Background(), ds, "C", focusOptions())
	require.NoError(t, err)

	assert.Equal(t, "C", result.Series)
	assert.Equal(t, 1900, result.Start)
	assert.Equal(t, 1919, result.End)

	require.Len(t, result.Points, 11)
	assert.Equal(t, 1905, result.Points[0].Center)
	assert.Equal(t, 1900, result.Points[0].Start)
	assert.Equal(t, 1909, result.Points[0].End)
	assert.Equal(t, 1915, result.Points[10].Center)

	require.Len(t, result.Profiles, 3)
	middle := result.Profiles[1]
	assert.Equal(t, 1905, middle.Start)
	assert.Equal(t, 1914, middle.End)
	require.Len(t, middle.Lags, 2*schema.DefaultFocusLagRange+1)

	lagMinus3 := middle.Lags[schema.DefaultFocusLagRange-3]
	assert.Equal(t, -3, lagMinus3.Lag)
	assert.True(t, lagMinus3.Valid)
	assert.InDelta(t, 1.0, lagMinus3.Correlation, 1e-9)
}

func TestSeriesCorrelationErrors(t *testing.T) {
	ds := shiftedDataset(t)

	t.Run("unknown series", func(t *testing.T) {
		_, err := SeriesCorrelation(context.Background(), ds, "Z", focusOptions())
		assert.ErrorIs(t, err, ErrUnknownSeries)
	})

	failShort := func(values []float64, _ int) (*algo.ARFit, error) {
		if len(values) < 15 {
			return nil, fmt.Errorf("%w: %d values", algo.ErrDegenerateFit, len(values))
		}
		return &algo.ARFit{Residuals: values}, nil
	}
	truncate := func(ds *schema.Dataset, name string) {
		idx, ok := ds.Lookup(name)
		require.True(t, ok)
		for i := 11; i < ds.Rows(); i++ {
			ds.Series[idx].Values[i] = math.NaN()
			ds.Series[idx].Valid[i] = false
		}
	}

	t.Run("focus series cannot be prewhitened", func(t *testing.T) {
		ds := shiftedDataset(t)
		truncate(ds, "C")
		opts := focusOptions()
		opts.Prewhiten = true
		opts.AR = failShort
		_, err := SeriesCorrelation(context.Background(), ds, "C", opts)
		assert.ErrorIs(t, err, algo.ErrDegenerateFit)
	})

	t.Run("other series skipped", func(t *testing.T) {
		ds := shiftedDataset(t)
		truncate(ds, "A")
		opts := focusOptions()
		opts.Prewhiten = true
		opts.AR = failShort
		result, err := SeriesCorrelation(context.Background(), ds, "C", opts)
		require.NoError(t, err)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "A", result.Skipped[0].Name)
		assert.NotEmpty(t, result.Points)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := SeriesCorrelation(ctx, shiftedDataset(t), "C", focusOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
