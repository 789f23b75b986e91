package xdate

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomChronology returns a chronology over years [first, first+n) with uncorrelated values.
func randomChronology(first, n int, seed int64) *schema.Chronology {
	rng := rand.New(rand.NewSource(seed))
	chron := &schema.Chronology{Years: make([]int, n), Mean: make([]float64, n), Depth: make([]int, n)}
	for i := range n {
		chron.Years[i] = first + i
		chron.Mean[i] = 1 + rng.Float64()
		chron.Depth[i] = 3
	}
	return chron
}

// segmentFrom copies chronology values into the years [start, end], reading year y-offset for year y.
func segmentFrom(chron *schema.Chronology, start, end, offset int) schema.YearSeries {
	ys := schema.YearSeries{Name: "s"}
	for y := start; y <= end; y++ {
		v, _ := chron.Lookup(y - offset)
		ys.Years = append(ys.Years, y)
		ys.Values = append(ys.Values, v)
	}
	return ys
}

func compareOpts() CompareOptions {
	return CompareOptions{
		SegLength:    10,
		Kind:         schema.PearsonCorrelation,
		PValue:       0.05,
		SearchLags:   true,
		LagRange:     schema.DefaultLagRange,
		LagThreshold: schema.DefaultLagThreshold,
	}
}

func TestCompareSegmentLagDirection(t *testing.T) {
	chron := randomChronology(1, 40, 7)

	tests := []struct {
		name     string
		offset   int
		expected int
	}{
		{"values recorded late", 3, -3},
		{"values recorded early", -3, 3},
		{"values one year late", 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segment := segmentFrom(chron, 16, 25, tt.offset)
			_, flag, err := CompareSegment("s", segment, chron, compareOpts())
			require.NoError(t, err)
			require.NotNil(t, flag)
			assert.Equal(t, schema.LagMismatchFlag, flag.Kind)
			assert.Equal(t, tt.expected, flag.BestLag)
			assert.InDelta(t, 1.0, flag.BestCorrelation, 1e-9)
			assert.Len(t, flag.Profile, 2*schema.DefaultLagRange+1)
			assert.Equal(t, schema.Bin{Start: 16, End: 25}, flag.Bin)
		})
	}
}

func TestCompareSegment(t *testing.T) {
	chron := randomChronology(1, 40, 11)

	t.Run("matching segment passes", func(t *testing.T) {
		r, flag, err := CompareSegment("s", segmentFrom(chron, 16, 25, 0), chron, compareOpts())
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r, 1e-9)
		assert.Nil(t, flag)
	})

	t.Run("low correlation without lag search", func(t *testing.T) {
		segment := segmentFrom(chron, 16, 25, 0)
		for i, v := range segment.Values {
			segment.Values[i] = 3 - v
		}
		opts := compareOpts()
		opts.SearchLags = false

		r, flag, err := CompareSegment("s", segment, chron, opts)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, r, 1e-9)
		require.NotNil(t, flag)
		assert.Equal(t, schema.LowCorrelationFlag, flag.Kind)
		assert.True(t, flag.BelowCritical)
		assert.InDelta(t, 0.5494, flag.Critical, 1e-3)
		assert.Equal(t, 0, flag.BestLag)
		assert.Nil(t, flag.Profile)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, _, err := CompareSegment("s", segmentFrom(chron, 16, 24, 0), chron, compareOpts())
		assert.ErrorIs(t, err, schema.ErrInvalidInput)
	})
}

func TestLagProfileCoverage(t *testing.T) {
	chron := randomChronology(1, 20, 3)
	profile := LagProfile(segmentFrom(chron, 1, 10, 0), chron, 2, schema.PearsonCorrelation)

	require.Len(t, profile, 5)
	assert.False(t, profile[0].Valid, "shift -2 leaves the reference")
	assert.False(t, profile[1].Valid, "shift -1 leaves the reference")
	assert.True(t, profile[2].Valid)
	assert.InDelta(t, 1.0, profile[2].Correlation, 1e-9)
	assert.True(t, profile[4].Valid)
}

func TestFlagFormatting(t *testing.T) {
	flag := schema.Flag{
		Kind:    schema.LagMismatchFlag,
		Bin:     schema.Bin{Start: 1905, End: 1914},
		BestLag: -3,
		Profile: []schema.LagCorrelation{
			{Lag: -1, Correlation: 0.5, Valid: true},
			{Lag: 0, Correlation: -0.25, Valid: true},
			{Lag: 1},
		},
	}

	assert.Equal(t, "[B] Segment  High    -1     0    +1", FlagHeader(schema.LagMismatchFlag, 1))
	assert.Equal(t, "   1905-1914   -3  0.50 -0.25      ", FlagLine(flag, 1))

	header := FlagHeader(schema.LowCorrelationFlag, 10)
	assert.True(t, strings.HasPrefix(header, "[A] Segment  High   -10    -9"))
	assert.True(t, strings.HasSuffix(header, "    +9   +10"))

	var buf bytes.Buffer
	require.NoError(t, FormatFlags(&buf, "CAM01", []schema.Flag{flag}, 1))
	assert.Equal(t, "Flags for CAM01\n"+FlagHeader(schema.LagMismatchFlag, 1)+"\n"+FlagLine(flag, 1)+"\n\n", buf.String())

	buf.Reset()
	require.NoError(t, FormatFlags(&buf, "CAM02", nil, 1))
	assert.Empty(t, buf.String())
}
