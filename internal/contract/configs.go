package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/dendro/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 6
	MinSlidePeriod   = 3
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the validated settings for one dendro invocation.
type Config struct {
	// Input and reading
	InputPath string
	Format    schema.DataFormat // detected from the input extension
	SkipLines int
	RWLHeader bool

	// Output
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int
	UseColors  bool
	Workers    int

	// Robust mean
	Biweight  bool
	BiweightC float64

	// Interseries correlation and stabilization
	Window          int
	MinSegRatio     float64
	RbarMethod      schema.RbarMethod
	RbarCorrelation schema.CorrelationKind
	RunningRbar     bool

	// Chronology
	Whiten   bool
	MaxARLag int

	// Crossdating
	Correlation   schema.CorrelationKind
	Prewhiten     bool
	SlidePeriod   int
	BinFloor      int
	PValue        float64
	ShowFlags     bool
	LagRange      int
	LagThreshold  float64
	FocusSeries   string
	FocusLagRange int

	// Detrending and conversion
	Fit           schema.FitKind
	DetrendMethod schema.DetrendMethod
	DataFormat    schema.DataFormat

	// Run history
	RunBackend   schema.DatabaseBackend
	RunDBConnect string
}

// ConfigRawInput is the raw configuration unmarshalled by viper from flags,
// environment variables and the config file.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	InputPathStr    string  `mapstructure:"input"`
	SkipLines       int     `mapstructure:"skip-lines"`
	RWLHeader       bool    `mapstructure:"rwl-header"`
	Output          string  `mapstructure:"output"`
	OutputFile      string  `mapstructure:"output-file"`
	Precision       int     `mapstructure:"precision"`
	Width           int     `mapstructure:"width"`
	Color           string  `mapstructure:"color"`
	Workers         int     `mapstructure:"workers"`
	Biweight        bool    `mapstructure:"biweight"`
	BiweightC       float64 `mapstructure:"biweight-c"`
	Window          int     `mapstructure:"window"`
	MinSegRatio     float64 `mapstructure:"min-seg-ratio"`
	Correlation     string  `mapstructure:"correlation"`
	Prewhiten       bool    `mapstructure:"prewhiten"`
	SlidePeriod     int     `mapstructure:"slide-period"`
	BinFloor        int     `mapstructure:"bin-floor"`
	PValue          float64 `mapstructure:"p-value"`
	LagRange        int     `mapstructure:"lag-range"`
	LagThreshold    float64 `mapstructure:"lag-threshold"`
	DataFormat      string  `mapstructure:"data-format"`
	RunBackend      string  `mapstructure:"run-backend"`
	RunDBConnect    string  `mapstructure:"run-db-connect"`
	ProfilePrefix   string  `mapstructure:"profile"`
	ConfigFilePath  string  `mapstructure:"config"`

	// --- Fields from chronCmd.Flags() ---
	Whiten   bool `mapstructure:"whiten"`
	MaxARLag int  `mapstructure:"max-ar-lag"`

	// --- Fields from stabilizeCmd.Flags() and rbarCmd.Flags() ---
	RunningRbar     bool   `mapstructure:"running-rbar"`
	RbarMethod      string `mapstructure:"rbar-method"`
	RbarCorrelation string `mapstructure:"rbar-correlation"`

	// --- Fields from xdateCmd.Flags() ---
	ShowFlags bool `mapstructure:"show-flags"`

	// --- Fields from seriesCorrCmd.Flags() ---
	FocusSeries   string `mapstructure:"series"`
	FocusLagRange int    `mapstructure:"focus-lag-range"`

	// --- Fields from detrendCmd.Flags() ---
	Fit           string `mapstructure:"fit"`
	DetrendMethod string `mapstructure:"method"`
}

// Clone returns a copy of the config that can be changed without side effects.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate converts raw input into cfg, validating every field.
// The input file is resolved only when InputPathStr is set, so commands that
// do not read a dataset can share the same config.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateAnalysisInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if input.InputPathStr != "" {
		if err := resolveInputPath(cfg, input.InputPathStr); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the run history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := input.RunBackend
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// validateSimpleInputs processes and validates the output and reader fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.RWLHeader = input.RWLHeader
	cfg.Width = input.Width
	cfg.ShowFlags = input.ShowFlags
	cfg.Whiten = input.Whiten
	cfg.RunningRbar = input.RunningRbar
	cfg.Biweight = input.Biweight
	cfg.Prewhiten = input.Prewhiten
	cfg.FocusSeries = strings.TrimSpace(input.FocusSeries)

	// --- 1. Workers Validation ---
	cfg.Workers = input.Workers
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be a positive number (received %d)", input.Workers)
	}

	// --- 2. Precision and Output Validation ---
	cfg.Precision = input.Precision
	if cfg.Precision < 1 || cfg.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}

	// --- 3. Color Validation ---
	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}

	// --- 4. Reader Validation ---
	cfg.SkipLines = input.SkipLines
	if cfg.SkipLines < 0 {
		return fmt.Errorf("skip-lines cannot be negative (received %d)", input.SkipLines)
	}
	cfg.DataFormat = schema.DataFormat(strings.ToLower(input.DataFormat))
	if cfg.DataFormat == "" {
		cfg.DataFormat = schema.CSVFormat
	}
	if _, ok := schema.ValidDataFormats[cfg.DataFormat]; !ok {
		return fmt.Errorf("invalid data format '%s'. must be csv or rwl", input.DataFormat)
	}

	return nil
}

// validateAnalysisInputs processes and validates the statistical tuning fields.
func validateAnalysisInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Robust Mean Validation ---
	cfg.BiweightC = input.BiweightC
	if cfg.BiweightC <= 0 {
		return fmt.Errorf("biweight-c must be positive (received %g)", input.BiweightC)
	}

	// --- 2. Rbar Validation ---
	cfg.Window = input.Window
	if cfg.Window < 2 {
		return fmt.Errorf("window must be at least 2 (received %d)", input.Window)
	}
	cfg.MinSegRatio = input.MinSegRatio
	if cfg.MinSegRatio <= 0 || cfg.MinSegRatio > 1 {
		return fmt.Errorf("min-seg-ratio must be in (0, 1] (received %g)", input.MinSegRatio)
	}
	cfg.RbarMethod = schema.RbarMethod(strings.ToLower(input.RbarMethod))
	if cfg.RbarMethod == "" {
		cfg.RbarMethod = schema.OsbornMethod
	}
	if _, ok := schema.ValidRbarMethods[cfg.RbarMethod]; !ok {
		return fmt.Errorf("invalid rbar method '%s'. must be osborn or frank", input.RbarMethod)
	}
	kind, err := parseCorrelationKind(input.RbarCorrelation, schema.PearsonCorrelation)
	if err != nil {
		return err
	}
	cfg.RbarCorrelation = kind

	// --- 3. Crossdating Validation ---
	kind, err = parseCorrelationKind(input.Correlation, schema.SpearmanCorrelation)
	if err != nil {
		return err
	}
	cfg.Correlation = kind
	cfg.SlidePeriod = input.SlidePeriod
	if cfg.SlidePeriod < MinSlidePeriod {
		return fmt.Errorf("slide-period must be at least %d (received %d)", MinSlidePeriod, input.SlidePeriod)
	}
	cfg.BinFloor = input.BinFloor
	if cfg.BinFloor < 0 {
		return fmt.Errorf("bin-floor cannot be negative (received %d)", input.BinFloor)
	}
	cfg.PValue = input.PValue
	if cfg.PValue <= 0 || cfg.PValue >= 0.5 {
		return fmt.Errorf("p-value must be in (0, 0.5) (received %g)", input.PValue)
	}
	cfg.LagRange = input.LagRange
	if cfg.LagRange < 1 {
		return fmt.Errorf("lag-range must be at least 1 (received %d)", input.LagRange)
	}
	cfg.FocusLagRange = input.FocusLagRange
	if cfg.FocusLagRange == 0 {
		cfg.FocusLagRange = schema.DefaultFocusLagRange
	}
	if cfg.FocusLagRange < 1 {
		return fmt.Errorf("focus-lag-range must be at least 1 (received %d)", input.FocusLagRange)
	}
	cfg.LagThreshold = input.LagThreshold
	if cfg.LagThreshold < 0 {
		return fmt.Errorf("lag-threshold cannot be negative (received %g)", input.LagThreshold)
	}

	// --- 4. Chronology and Detrending Validation ---
	cfg.MaxARLag = input.MaxARLag
	if cfg.MaxARLag == 0 {
		cfg.MaxARLag = schema.DefaultMaxARLag
	}
	if cfg.MaxARLag < 1 {
		return fmt.Errorf("max-ar-lag must be at least 1 (received %d)", input.MaxARLag)
	}
	cfg.Fit = schema.FitKind(input.Fit)
	if cfg.Fit == "" {
		cfg.Fit = schema.HorizontalFit
	}
	cfg.DetrendMethod = schema.DetrendMethod(strings.ToLower(input.DetrendMethod))
	if cfg.DetrendMethod == "" {
		cfg.DetrendMethod = schema.ResidualMethod
	}
	if cfg.DetrendMethod != schema.ResidualMethod && cfg.DetrendMethod != schema.DifferenceMethod {
		return fmt.Errorf("invalid detrend method '%s'. must be residual or difference", input.DetrendMethod)
	}

	return nil
}

// parseCorrelationKind falls back to def when raw is empty.
func parseCorrelationKind(raw string, def schema.CorrelationKind) (schema.CorrelationKind, error) {
	if raw == "" {
		return def, nil
	}
	kind := schema.CorrelationKind(strings.ToLower(raw))
	if _, ok := schema.ValidCorrelationKinds[kind]; !ok {
		return "", fmt.Errorf("invalid correlation '%s'. must be pearson or spearman", raw)
	}
	return kind, nil
}

// resolveInputPath checks the dataset exists and detects its format from the extension.
func resolveInputPath(cfg *Config, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read input %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %q is a directory, expected a .csv or .rwl file", path)
	}
	format, err := DetectFormat(absPath)
	if err != nil {
		return err
	}
	cfg.InputPath = absPath
	cfg.Format = format
	return nil
}

// DetectFormat maps a file extension to a ring-width format, case-insensitively.
func DetectFormat(path string) (schema.DataFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return schema.CSVFormat, nil
	case ".rwl":
		return schema.RWLFormat, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q, expected .csv or .rwl", filepath.Ext(path))
	}
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateTool resolves the input path and re-checks the tuning fields of a
// config whose values were overridden after ProcessAndValidate, as the MCP
// tools do per request.
func RevalidateTool(cfg *Config, path string) error {
	if path == "" {
		return fmt.Errorf("path is required")
	}
	if err := resolveInputPath(cfg, path); err != nil {
		return err
	}
	if _, ok := schema.ValidCorrelationKinds[cfg.Correlation]; !ok {
		return fmt.Errorf("invalid correlation '%s'. must be pearson or spearman", cfg.Correlation)
	}
	if _, ok := schema.ValidRbarMethods[cfg.RbarMethod]; !ok {
		return fmt.Errorf("invalid rbar method '%s'. must be osborn or frank", cfg.RbarMethod)
	}
	if cfg.SlidePeriod < MinSlidePeriod {
		return fmt.Errorf("slide-period must be at least %d (received %d)", MinSlidePeriod, cfg.SlidePeriod)
	}
	if cfg.BinFloor < 0 {
		return fmt.Errorf("bin-floor cannot be negative (received %d)", cfg.BinFloor)
	}
	if cfg.PValue <= 0 || cfg.PValue >= 0.5 {
		return fmt.Errorf("p-value must be in (0, 0.5) (received %g)", cfg.PValue)
	}
	if cfg.Window < 2 {
		return fmt.Errorf("window must be at least 2 (received %d)", cfg.Window)
	}
	if cfg.LagRange < 1 {
		return fmt.Errorf("lag-range must be at least 1 (received %d)", cfg.LagRange)
	}
	return nil
}
