package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// CorrelationKind selects the correlation statistic.
	CorrelationKind string

	// RbarMethod selects how series with poor window coverage are treated.
	RbarMethod string

	// FlagKind labels a segment flag in the crossdating report.
	FlagKind string

	// FitKind is the growth curve used by detrending.
	FitKind string

	// DetrendMethod is how a series is normalised against its fitted curve.
	DetrendMethod string

	// DataFormat is a ring-width file format.
	DataFormat string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// Correlation kinds.
const (
	PearsonCorrelation  CorrelationKind = "pearson"
	SpearmanCorrelation CorrelationKind = "spearman" // default for crossdating
)

// Interseries correlation methods.
const (
	OsbornMethod RbarMethod = "osborn" // default
	FrankMethod  RbarMethod = "frank"
)

// Flag kinds raised by segment comparison.
const (
	LowCorrelationFlag FlagKind = "A"
	LagMismatchFlag    FlagKind = "B"
)

// Detrending fits and methods.
const (
	HorizontalFit FitKind = "horizontal"
	LinearFit     FitKind = "linear"
	SplineFit     FitKind = "spline"
	NegExpFit     FitKind = "ModNegEx"
	HugershoffFit FitKind = "Hugershoff"

	ResidualMethod   DetrendMethod = "residual"
	DifferenceMethod DetrendMethod = "difference"
)

// Ring-width file formats.
const (
	CSVFormat DataFormat = "csv"
	RWLFormat DataFormat = "rwl"
)

// All run history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Calibration constants. Each one has a matching config key.
const (
	DefaultBiweightC     = 9.0
	MADEpsilon           = 1e-8
	DefaultLagThreshold  = 0.08
	DefaultLagRange      = 10
	DefaultFocusLagRange = 5
	AdvisoryWindowLow    = 0.30 // window below this share of the row count is advised against
	AdvisoryWindowHigh   = 0.50 // window at or above this share of the row count is advised against
	DefaultWindow        = 50
	DefaultMinSegRatio   = 0.33
	DefaultSlidePeriod   = 50
	DefaultBinFloor      = 100
	DefaultPValue        = 0.05
	DefaultMaxARLag      = 5
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidCorrelationKinds lists all valid correlation kinds.
var ValidCorrelationKinds = map[CorrelationKind]struct{}{
	PearsonCorrelation:  {},
	SpearmanCorrelation: {},
}

// ValidRbarMethods lists all valid interseries correlation methods.
var ValidRbarMethods = map[RbarMethod]struct{}{
	OsbornMethod: {},
	FrankMethod:  {},
}

// ValidDataFormats lists the formats that can be written back out.
var ValidDataFormats = map[DataFormat]struct{}{
	CSVFormat: {},
	RWLFormat: {},
}

// ValidDatabaseBackends lists all valid run history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
