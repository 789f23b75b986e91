// Package cmd defines the command-line interface for dendro.
package cmd

import (
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(chronCmd)
	rootCmd.AddCommand(stabilizeCmd)
	rootCmd.AddCommand(rbarCmd)
	rootCmd.AddCommand(xdateCmd)
	rootCmd.AddCommand(seriesCorrCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(detrendCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper.
	// Flags read by more than one command live here; viper keeps one value per key.
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().Int("skip-lines", 0, "Number of leading lines to skip when reading the input")
	rootCmd.PersistentFlags().Bool("rwl-header", false, "The RWL input starts with a three-line header block")
	rootCmd.PersistentFlags().Bool("biweight", true, "Aggregate chronologies with the Tukey biweight robust mean")
	rootCmd.PersistentFlags().Float64("biweight-c", schema.DefaultBiweightC, "Biweight tuning constant")
	rootCmd.PersistentFlags().Int("window", schema.DefaultWindow, "Running rbar window in years")
	rootCmd.PersistentFlags().Float64("min-seg-ratio", schema.DefaultMinSegRatio, "Minimum share of the window a series pair must overlap")
	rootCmd.PersistentFlags().String("rbar-method", string(schema.OsbornMethod), "Interseries correlation method: osborn or frank")
	rootCmd.PersistentFlags().String("correlation", string(schema.SpearmanCorrelation), "Correlation statistic: pearson or spearman")
	rootCmd.PersistentFlags().Bool("prewhiten", true, "Replace series with AR residuals before crossdating")
	rootCmd.PersistentFlags().Int("slide-period", schema.DefaultSlidePeriod, "Segment length in years")
	rootCmd.PersistentFlags().Int("bin-floor", schema.DefaultBinFloor, "Bins start at multiples of this year (0 = first year)")
	rootCmd.PersistentFlags().Float64("p-value", schema.DefaultPValue, "Significance level of the critical correlation")
	rootCmd.PersistentFlags().Int("lag-range", schema.DefaultLagRange, "Largest shift in years searched for lag flags")
	rootCmd.PersistentFlags().Float64("lag-threshold", schema.DefaultLagThreshold, "Gain a shifted segment needs over its dated position to be flagged")
	rootCmd.PersistentFlags().String("data-format", string(schema.CSVFormat), "Dataset output format for detrend and convert: csv or rwl")
	rootCmd.PersistentFlags().String("run-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of chronCmd to Viper
	chronCmd.Flags().Bool("whiten", false, "Add a chronology of AR residuals")
	chronCmd.Flags().Int("max-ar-lag", schema.DefaultMaxARLag, "Largest AR order tried when whitening")
	if err := viper.BindPFlags(chronCmd.Flags()); err != nil {
		contract.LogFatal("Error binding chron flags", err)
	}

	// Bind all flags of stabilizeCmd to Viper
	stabilizeCmd.Flags().Bool("running-rbar", false, "Include the running rbar column")
	if err := viper.BindPFlags(stabilizeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding stabilize flags", err)
	}

	// Bind all flags of rbarCmd to Viper
	rbarCmd.Flags().String("rbar-correlation", string(schema.PearsonCorrelation), "Correlation statistic for rbar: pearson or spearman")
	if err := viper.BindPFlags(rbarCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rbar flags", err)
	}

	// Bind all flags of xdateCmd to Viper
	xdateCmd.Flags().Bool("show-flags", true, "Search shifted alignments and print the flag blocks")
	if err := viper.BindPFlags(xdateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding xdate flags", err)
	}

	// Bind all flags of seriesCorrCmd to Viper
	seriesCorrCmd.Flags().String("series", "", "Name of the series to examine")
	seriesCorrCmd.Flags().Int("focus-lag-range", schema.DefaultFocusLagRange, "Shift range of the lag profiles")
	if err := viper.BindPFlags(seriesCorrCmd.Flags()); err != nil {
		contract.LogFatal("Error binding series-corr flags", err)
	}

	// Bind all flags of detrendCmd to Viper
	detrendCmd.Flags().String("fit", string(schema.HorizontalFit), "Growth curve: horizontal or linear")
	detrendCmd.Flags().String("method", string(schema.ResidualMethod), "Index method: residual or difference")
	if err := viper.BindPFlags(detrendCmd.Flags()); err != nil {
		contract.LogFatal("Error binding detrend flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
