package cmd

import (
	"github.com/huangsam/dendro/core"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/spf13/cobra"
)

// chronCmd builds the mean chronology of a site.
var chronCmd = &cobra.Command{
	Use:   "chron <file>",
	Short: "Build the mean chronology and sample depth.",
	Long: `Average every series year by year into a site chronology.

The mean is the Tukey biweight robust mean by default, which keeps a single
damaged or misdated series from dragging the chronology. Each year also
reports its sample depth, the number of series that have a value.

With --whiten, every series is replaced by the residuals of an autoregressive
model (order chosen by AIC up to --max-ar-lag) and a second chronology of those
residuals is added.

Examples:
  # Biweight chronology of a Tucson file
  dendro chron ca533.rwl

  # Arithmetic mean with a whitened column
  dendro chron ca533.rwl --biweight=false --whiten

  # Export to Parquet for pandas or DuckDB
  dendro chron ca533.rwl --output parquet --output-file ca533-chron.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChronology(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build chronology", err)
		}
	},
}

// stabilizeCmd builds a variance-stabilized chronology.
var stabilizeCmd = &cobra.Command{
	Use:   "stabilize <file>",
	Short: "Build a chronology corrected for changing sample depth.",
	Long: `Rescale the chronology so that years with few series do not show
inflated variance.

Each year is scaled by the square root of its effective number of independent
series, derived from the running interseries correlation (rbar). The result is
centred on the grand mean of the dataset.

A warning is printed when --window is outside 30-50% of the record length.

Examples:
  # Stabilize with a 50 year running rbar
  dendro stabilize ca533.rwl

  # Use Frank's rbar and show the running rbar column
  dendro stabilize ca533.rwl --rbar-method frank --running-rbar`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStabilize(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot stabilize chronology", err)
		}
	},
}

// rbarCmd reports interseries correlation.
var rbarCmd = &cobra.Command{
	Use:   "rbar <file>",
	Short: "Report constant and running interseries correlation.",
	Long: `Compute the mean correlation between all pairs of series (rbar).

Reports the rbar over the whole record, the running rbar in a moving window,
and the common interval of the dataset.

Methods:
  osborn - pairs must overlap at least --min-seg-ratio of the window
  frank  - series are padded at their edges so every pair overlaps

Examples:
  # Osborn rbar with a 50 year window
  dendro rbar ca533.rwl

  # Frank rbar by Spearman correlation, as CSV
  dendro rbar ca533.rwl --rbar-method frank --rbar-correlation spearman --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRbar(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute rbar", err)
		}
	},
}
