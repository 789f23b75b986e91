package core

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/dendro/core/xdate"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/iocache"
	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sampleNames = []string{"CAM011", "CAM021", "CAM031", "CAM041", "CAM051"}

// writeSampleCSV writes a 120 year dataset whose series share a common signal.
// The last series starts 30 years late.
func writeSampleCSV(t *testing.T) string {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	const first, years = 1880, 120
	signal := make([]float64, years)
	for i := range signal {
		signal[i] = 0.5 + rng.Float64()
	}

	var b strings.Builder
	b.WriteString("Year," + strings.Join(sampleNames, ",") + "\n")
	for i := range years {
		fmt.Fprintf(&b, "%d", first+i)
		for s := range sampleNames {
			if s == len(sampleNames)-1 && i < 30 {
				b.WriteString(",NA")
				continue
			}
			fmt.Fprintf(&b, ",%.3f", signal[i]+0.15*rng.Float64())
		}
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// testConfig mirrors the validated defaults of the CLI.
func testConfig(path string) *contract.Config {
	return &contract.Config{
		InputPath:       path,
		Format:          schema.CSVFormat,
		Output:          schema.CSVOut,
		Precision:       contract.DefaultPrecision,
		Width:           200,
		Workers:         2,
		Biweight:        true,
		BiweightC:       schema.DefaultBiweightC,
		Window:          schema.DefaultWindow,
		MinSegRatio:     schema.DefaultMinSegRatio,
		RbarMethod:      schema.OsbornMethod,
		RbarCorrelation: schema.PearsonCorrelation,
		MaxARLag:        schema.DefaultMaxARLag,
		Correlation:     schema.SpearmanCorrelation,
		Prewhiten:       true,
		SlidePeriod:     schema.DefaultSlidePeriod,
		BinFloor:        schema.DefaultBinFloor,
		PValue:          schema.DefaultPValue,
		ShowFlags:       true,
		LagRange:        schema.DefaultLagRange,
		LagThreshold:    schema.DefaultLagThreshold,
		FocusLagRange:   schema.DefaultFocusLagRange,
		Fit:             schema.LinearFit,
		DetrendMethod:   schema.ResidualMethod,
		DataFormat:      schema.CSVFormat,
		RunBackend:      schema.NoneBackend,
	}
}

// untrackedManager returns a manager without run history or dataset cache.
func untrackedManager() *iocache.MockStoreManager {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(nil)
	mgr.On("GetDatasetCache").Return(nil)
	return mgr
}

func TestLoadDataset(t *testing.T) {
	path := writeSampleCSV(t)

	t.Run("missing input path", func(t *testing.T) {
		_, err := loadDataset(&contract.Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("nil manager reads from disk", func(t *testing.T) {
		ds, err := loadDataset(testConfig(path), nil)
		require.NoError(t, err)
		assert.Equal(t, sampleNames, ds.Names())
		assert.Equal(t, 120, ds.Rows())
	})

	t.Run("cache is reused", func(t *testing.T) {
		cache := iocache.NewDatasetCache(iocache.DefaultDatasetTTL, iocache.DefaultCleanupInterval)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetDatasetCache").Return(cache)
		first, err := loadDataset(testConfig(path), mgr)
		require.NoError(t, err)
		second, err := loadDataset(testConfig(path), mgr)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("unreadable file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("Decade,A\n1900,1\n"), 0o644))
		_, err := loadDataset(testConfig(bad), nil)
		assert.ErrorIs(t, err, schema.ErrInvalidInput)
	})
}

func TestGetChronologyResults(t *testing.T) {
	cfg := testConfig(writeSampleCSV(t))
	cfg.Whiten = true

	chron, duration, err := GetChronologyResults(context.Background(), cfg, untrackedManager())
	require.NoError(t, err)
	assert.Positive(t, duration)
	assert.Len(t, chron.Years, 120)
	assert.Equal(t, 4, chron.Depth[0])
	assert.Equal(t, 5, chron.Depth[119])
	assert.Len(t, chron.Whitened, 120)
}

func TestGetStabilizedAndRbarResults(t *testing.T) {
	cfg := testConfig(writeSampleCSV(t))
	cfg.RunningRbar = true
	mgr := untrackedManager()

	stab, _, err := GetStabilizedResults(context.Background(), cfg, mgr)
	require.NoError(t, err)
	assert.Len(t, stab.Adjusted, 120)
	assert.Len(t, stab.RunningRbar, 120)
	assert.Greater(t, stab.RbarConstant, 0.0)

	rbar, _, err := GetRbarResults(context.Background(), cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, 5, rbar.SeriesCount)
	require.True(t, rbar.HasCommon)
	assert.Equal(t, 1880, rbar.CommonFirst)
	assert.Equal(t, 1999, rbar.CommonLast)
}

func TestGetCrossdateResults(t *testing.T) {
	path := writeSampleCSV(t)

	t.Run("untracked", func(t *testing.T) {
		result, _, err := GetCrossdateResults(context.Background(), testConfig(path), untrackedManager())
		require.NoError(t, err)
		assert.ElementsMatch(t, sampleNames, result.Series)
		assert.NotEmpty(t, result.Bins)
		for s := range result.Series {
			assert.Greater(t, result.Overall[s], result.Critical)
		}
	})

	t.Run("tracked run records every series", func(t *testing.T) {
		cfg := testConfig(path)
		store := &iocache.MockRunStore{}
		store.On("BeginRun", "xdate", cfg.InputPath, mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(21), nil)
		store.On("RecordSeriesResult", int64(21), mock.AnythingOfType("schema.RunSeriesRecord")).Return(nil)
		store.On("EndRun", int64(21), mock.AnythingOfType("time.Time"), len(sampleNames), mock.AnythingOfType("int")).Return(nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(store)
		mgr.On("GetDatasetCache").Return(nil)

		_, _, err := GetCrossdateResults(context.Background(), cfg, mgr)
		require.NoError(t, err)
		store.AssertNumberOfCalls(t, "RecordSeriesResult", len(sampleNames))
		store.AssertExpectations(t)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := GetCrossdateResults(ctx, testConfig(path), untrackedManager())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetSeriesCorrelationResults(t *testing.T) {
	path := writeSampleCSV(t)

	tests := []struct {
		name    string
		series  string
		wantErr error
	}{
		{name: "known series", series: "CAM021"},
		{name: "unknown series", series: "XYZ999", wantErr: xdate.ErrUnknownSeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(path)
			cfg.FocusSeries = tt.series
			result, _, err := GetSeriesCorrelationResults(context.Background(), cfg, untrackedManager())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.series, result.Series)
			assert.NotEmpty(t, result.Points)
		})
	}

	t.Run("series is required", func(t *testing.T) {
		_, _, err := GetSeriesCorrelationResults(context.Background(), testConfig(path), untrackedManager())
		assert.EqualError(t, err, "--series is required")
	})
}

func TestGetStatsResults(t *testing.T) {
	cfg := testConfig(writeSampleCSV(t))
	stats, _, err := GetStatsResults(context.Background(), cfg, untrackedManager())
	require.NoError(t, err)
	require.Len(t, stats, len(sampleNames))
	for i, name := range sampleNames {
		assert.Equal(t, name, stats[i].Series)
	}
	assert.Equal(t, 1910, stats[4].First)
	assert.Equal(t, 90, stats[4].Years)
}

func TestGetDetrendedDataset(t *testing.T) {
	cfg := testConfig(writeSampleCSV(t))

	ds, err := GetDetrendedDataset(cfg, untrackedManager())
	require.NoError(t, err)
	assert.Equal(t, sampleNames, ds.Names())
	assert.InDelta(t, 1.0, meanOf(ds.Points(0).Values), 0.05)

	cfg.Fit = schema.SplineFit
	_, err = GetDetrendedDataset(cfg, untrackedManager())
	assert.Error(t, err)
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
