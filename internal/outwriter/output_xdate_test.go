package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleXdate() *schema.XdateResult {
	bins := []schema.Bin{{Start: 1900, End: 1949}, {Start: 1925, End: 1974}}
	profile := make([]schema.LagCorrelation, 0, 3)
	for lag := -1; lag <= 1; lag++ {
		profile = append(profile, schema.LagCorrelation{Lag: lag, Correlation: 0.1 * float64(lag+2), Valid: lag != 1})
	}
	return &schema.XdateResult{
		Kind:         schema.SpearmanCorrelation,
		SegLength:    50,
		Critical:     0.2353,
		LagRange:     1,
		Prewhitened:  true,
		Bins:         bins,
		Series:       []string{"CAM011", "CAM021"},
		Correlations: [][]float64{{0.65, nan}, {0.55, 0.12}},
		Overall:      []float64{0.6, 0.12},
		Flags: []schema.Flag{{
			Kind:            schema.LowCorrelationFlag,
			Series:          "CAM021",
			Bin:             bins[1],
			Correlation:     0.12,
			Critical:        0.2353,
			BelowCritical:   true,
			BestLag:         -1,
			BestCorrelation: 0.2,
			Profile:         profile,
		}},
		Skipped: []schema.SkippedSeries{{Name: "CAM031", Reason: "degenerate AR fit"}},
	}
}

func TestWriteXdateCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeXdateCSV(&buf, sampleXdate(), 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"series,bin,correlation,label,flag,best_lag",
		"CAM011,1900-1949,0.65,Strong,,",
		"CAM011,1925-1974,0.55,Adequate,,",
		"CAM011,overall,0.60,Strong,,",
		"CAM021,1925-1974,0.12,Below critical,A,-1",
		"CAM021,overall,0.12,Below critical,,",
	}, lines)
}

func TestWriteXdateTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeXdateTable(&buf, sampleXdate(), testConfig(schema.TextOut, ""), 2*time.Second))
	out := buf.String()

	assert.Contains(t, out, "1900-1949")
	assert.Contains(t, out, "0.12A", "flagged cells carry the flag kind")
	assert.Contains(t, out, "Critical correlation: 0.24 (segment length 50, spearman)")
	assert.Contains(t, out, "Flags for CAM021\n[A] Segment  High    -1     0    +1\n   1925-1974   -1  0.10  0.20      \n")
	assert.Contains(t, out, "Skipped CAM031: degenerate AR fit")
	assert.Contains(t, out, "Crossdated 2 series (1 flags)")
}

func TestWriteXdateTable_HideFlags(t *testing.T) {
	cfg := testConfig(schema.TextOut, "")
	cfg.ShowFlags = false
	var buf bytes.Buffer
	require.NoError(t, writeXdateTable(&buf, sampleXdate(), cfg, time.Second))
	assert.NotContains(t, buf.String(), "Flags for")
}

func TestWriteXdate_Files(t *testing.T) {
	result := sampleXdate()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "xdate.json")
		require.NoError(t, WriteXdate(result, testConfig(schema.JSONOut, path), time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var view schema.XdateView
		require.NoError(t, json.Unmarshal(data, &view))
		assert.Equal(t, []string{"1900-1949", "1925-1974"}, view.Bins)
		require.Len(t, view.Series, 2)
		assert.Nil(t, view.Series[1].Bins[0].Correlation)
		require.Len(t, view.Flags, 1)
		assert.Equal(t, schema.LowCorrelationFlag, view.Flags[0].Kind)
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "xdate.parquet")
		require.NoError(t, WriteXdate(result, testConfig(schema.ParquetOut, path), time.Second))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}

func sampleFocus() *schema.FocusResult {
	return &schema.FocusResult{
		Series:    "CAM011",
		Kind:      schema.PearsonCorrelation,
		SegLength: 10,
		Overall:   0.48,
		Critical:  0.5494,
		Start:     1900,
		End:       1920,
		Points: []schema.FocusPoint{
			{Center: 1905, Start: 1900, End: 1909, Correlation: 0.7},
			{Center: 1906, Start: 1901, End: 1910, Correlation: 0.3},
		},
		Profiles: []schema.LagProfile{{
			Start: 1900, End: 1909,
			Lags: []schema.LagCorrelation{{Lag: -1, Valid: false}, {Lag: 0, Correlation: 0.7, Valid: true}, {Lag: 1, Correlation: 0.2, Valid: true}},
		}},
	}
}

func TestWriteFocusCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFocusCSV(&buf, sampleFocus(), 2))
	assert.Equal(t, "center,start,end,correlation,label\n1905,1900,1909,0.70,Strong\n1906,1901,1910,0.30,Below critical\n", buf.String())
}

func TestWriteFocusTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFocusTable(&buf, sampleFocus(), testConfig(schema.TextOut, ""), time.Second))
	out := buf.String()
	assert.Contains(t, out, "Series: CAM011 (overall 0.48, Below critical)")
	assert.Contains(t, out, "Range: 1900-1920, segment length 10, critical 0.55 (pearson)")
	assert.Contains(t, out, "+1")
	assert.Contains(t, out, "1900-1909")
}

func TestWriteFocus_ParquetUnsupported(t *testing.T) {
	err := WriteFocus(sampleFocus(), testConfig(schema.ParquetOut, "x.parquet"), time.Second)
	assert.ErrorContains(t, err, "not supported for series-corr")
}

func TestFormatLag(t *testing.T) {
	assert.Equal(t, "0", formatLag(0))
	assert.Equal(t, "+3", formatLag(3))
	assert.Equal(t, "-2", formatLag(-2))
}
