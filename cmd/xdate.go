package cmd

import (
	"github.com/huangsam/dendro/core"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/spf13/cobra"
)

// xdateCmd crossdates every series against the rest of the site.
var xdateCmd = &cobra.Command{
	Use:   "xdate <file>",
	Short: "Crossdate every series and flag doubtful segments.",
	Long: `Check the dating of every series against a chronology built from all the
other series.

Each series is cut into overlapping segments (--slide-period years, stepping
by half a segment, aligned on --bin-floor). Every segment is correlated with the
leave-one-out chronology and graded against the critical correlation at
--p-value.

Flags:
  [A] the segment correlates below the critical value
  [B] a shift within --lag-range years correlates better by at least --lag-threshold

Series are prewhitened by default, which removes the autocorrelation that would
otherwise inflate every correlation.

Examples:
  # Crossdate a Tucson file with the defaults (50 year segments, Spearman)
  dendro xdate ca533.rwl

  # Shorter segments, Pearson correlation, 8 workers
  dendro xdate ca533.rwl --slide-period 40 --correlation pearson --workers 8

  # Record the run and export the table for later review
  dendro xdate ca533.rwl --run-backend sqlite --output csv --output-file ca533-xdate.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCrossdate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot crossdate series", err)
		}
	},
}

// seriesCorrCmd examines one series in detail.
var seriesCorrCmd = &cobra.Command{
	Use:   "series-corr <file> --series NAME",
	Short: "Examine one series with moving segments and lag profiles.",
	Long: `Correlate one series against the chronology of all other series, with a
segment centred on every year of its relevant range.

Also prints the lag profile of each non-overlapping segment: the correlation
at every shift within --focus-lag-range years. A profile that peaks away from
zero points at a missing or extra ring.

Examples:
  # Examine a series flagged by xdate
  dendro series-corr ca533.rwl --series CAM021

  # Wider lag profiles as JSON
  dendro series-corr ca533.rwl --series CAM021 --focus-lag-range 10 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeriesCorrelation(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot correlate series", err)
		}
	},
}
