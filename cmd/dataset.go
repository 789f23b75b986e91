package cmd

import (
	"github.com/huangsam/dendro/core"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/spf13/cobra"
)

// statsCmd describes every series.
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show summary statistics for every series.",
	Long: `Describe each series of a dataset.

Reports the first and last year, the number of measured years, the mean,
median, standard deviation, skew, Gini coefficient and first-order
autocorrelation (AR1).

Examples:
  # Summary table
  dendro stats ca533.rwl

  # YAML for further processing
  dendro stats ca533.rwl --output yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot describe series", err)
		}
	},
}

// detrendCmd converts ring widths to ring-width indices.
var detrendCmd = &cobra.Command{
	Use:   "detrend <file>",
	Short: "Remove the growth trend and write ring-width indices.",
	Long: `Fit a growth curve to every series and write the resulting index dataset.

Fits:
  horizontal - the series mean
  linear     - a least-squares line over the years

Methods:
  residual   - width divided by the curve
  difference - width minus the curve

The dataset is written as CSV or RWL (--data-format), to stdout or --output-file.

Examples:
  # Linear ratio indices as CSV
  dendro detrend ca533.rwl --fit linear --output-file ca533-rwi.csv

  # Differences from the mean as RWL
  dendro detrend ca533.rwl --method difference --data-format rwl`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDetrend(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot detrend series", err)
		}
	},
}

// convertCmd rewrites a dataset in another format.
var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Rewrite a dataset as CSV or Tucson RWL.",
	Long: `Read a ring-width file and write it back in the format chosen by --data-format.

RWL output stores values in thousandths of a millimetre with a -9999 stop
marker. CSV output has a quoted header and NA for missing years.

Examples:
  # Tucson to CSV
  dendro convert ca533.rwl --output-file ca533.csv

  # CSV to Tucson
  dendro convert ca533.csv --data-format rwl --output-file ca533.rwl`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteConvert(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot convert dataset", err)
		}
	},
}
