package xdate

import (
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(bins []schema.Bin) []string {
	out := make([]string, len(bins))
	for i, b := range bins {
		out[i] = b.Label()
	}
	return out
}

func TestBins(t *testing.T) {
	tests := []struct {
		name                     string
		first, last, floor, step int
		expected                 []string
	}{
		{"aligned century", 1900, 1999, 100, 50, []string{"1900-1949", "1925-1974", "1950-1999"}},
		{"unaligned start moves to next floor", 1903, 2010, 10, 50, []string{"1910-1959", "1935-1984", "1960-2009"}},
		{"zero floor starts at first year", 1903, 1960, 0, 20, []string{"1903-1922", "1913-1932", "1923-1942", "1933-1952"}},
		{"range shorter than one bin", 1903, 2010, 100, 50, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, err := Bins(tt.first, tt.last, tt.floor, tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, labels(bins))
		})
	}

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := Bins(1900, 1999, 100, 1)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
		_, err = Bins(1900, 1999, -10, 50)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}

func TestRelevantRange(t *testing.T) {
	tests := []struct {
		name                    string
		seriesFirst, seriesLast int
		start, end              int
		ok                      bool
	}{
		{"late starting series", 1920, 1999, 1925, 1999, true},
		{"early ending series", 1900, 1930, 1900, 1974, true},
		{"no tile inside series", 1960, 1999, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := RelevantRange(1900, 1999, tt.seriesFirst, tt.seriesLast, 100, 50)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.start, start)
				assert.Equal(t, tt.end, end)
			}
		})
	}
}

func TestMod(t *testing.T) {
	assert.Equal(t, 25, mod(-25, 50))
	assert.Equal(t, 0, mod(50, 50))
	assert.Equal(t, 3, mod(3, 50))
}
