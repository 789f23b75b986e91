// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteChronology prints a chronology using the configured output format.
func (ow *OutWriter) WriteChronology(chron *schema.Chronology, cfg *contract.Config, duration time.Duration) error {
	return WriteChronology(chron, cfg, duration)
}

// WriteStabilized prints a variance-stabilized chronology using the configured output format.
func (ow *OutWriter) WriteStabilized(result *schema.StabilizedChronology, cfg *contract.Config, duration time.Duration) error {
	return WriteStabilized(result, cfg, duration)
}

// WriteRbar prints an interseries correlation report using the configured output format.
func (ow *OutWriter) WriteRbar(result *schema.RbarResult, cfg *contract.Config, duration time.Duration) error {
	return WriteRbar(result, cfg, duration)
}

// WriteXdate prints a crossdating report using the configured output format.
func (ow *OutWriter) WriteXdate(result *schema.XdateResult, cfg *contract.Config, duration time.Duration) error {
	return WriteXdate(result, cfg, duration)
}

// WriteFocus prints a single-series correlation report using the configured output format.
func (ow *OutWriter) WriteFocus(result *schema.FocusResult, cfg *contract.Config, duration time.Duration) error {
	return WriteFocus(result, cfg, duration)
}

// WriteStats prints summary statistics using the configured output format.
func (ow *OutWriter) WriteStats(stats []schema.SeriesStats, cfg *contract.Config, duration time.Duration) error {
	return WriteStats(stats, cfg, duration)
}

// WriteDataset writes a dataset in the configured data format.
func (ow *OutWriter) WriteDataset(ds *schema.Dataset, cfg *contract.Config) error {
	return WriteDataset(ds, cfg)
}

// GetMaxNameWidth calculates the maximum width for series names in table output
// based on terminal width and the space taken by the other columns.
func GetMaxNameWidth(cfg *contract.Config, reserved int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - reserved - 10
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}
