package cmd

import (
	"bytes"
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"chron", "stabilize", "rbar", "xdate", "series-corr", "stats", "detrend", "convert", "runs", "mcp", "version"} {
		t.Run(name, func(t *testing.T) {
			found, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
		})
	}

	for _, name := range []string{"status", "export", "clear", "migrate"} {
		t.Run("runs "+name, func(t *testing.T) {
			found, _, err := rootCmd.Find([]string{"runs", name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
		})
	}
}

func TestFlagOwnership(t *testing.T) {
	tests := []struct {
		flag      string
		persisted bool
	}{
		{flag: "correlation", persisted: true},
		{flag: "slide-period", persisted: true},
		{flag: "rbar-method", persisted: true},
		{flag: "data-format", persisted: true},
		{flag: "whiten"},
		{flag: "show-flags"},
		{flag: "series"},
		{flag: "fit"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.persisted, rootCmd.PersistentFlags().Lookup(tt.flag) != nil)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	out := buf.String()
	assert.Contains(t, out, "dendro CLI")
	assert.Contains(t, out, "Formats:  csv, rwl")
	assert.Contains(t, out, "Backends: mysql, none, postgresql, sqlite")
}

func TestJoinKeys(t *testing.T) {
	assert.Equal(t, "osborn", joinKeys(map[schema.RbarMethod]struct{}{schema.OsbornMethod: {}}))
	assert.Empty(t, joinKeys(map[schema.DataFormat]struct{}{}))
}
