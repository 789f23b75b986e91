package schema

import "math"

// Nullable returns nil for NaN so that missing values encode as null.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ChronologyRow is one year of a chronology report.
type ChronologyRow struct {
	Year     int      `json:"year" yaml:"year"`
	Mean     *float64 `json:"mean" yaml:"mean"`
	Whitened *float64 `json:"whitened,omitempty" yaml:"whitened,omitempty"`
	Depth    int      `json:"depth" yaml:"depth"`
}

// ChronologyRows converts a chronology into report rows.
func ChronologyRows(c *Chronology) []ChronologyRow {
	rows := make([]ChronologyRow, len(c.Years))
	for i, y := range c.Years {
		rows[i] = ChronologyRow{Year: y, Mean: Nullable(c.Mean[i]), Depth: c.Depth[i]}
		if c.Whitened != nil {
			rows[i].Whitened = Nullable(c.Whitened[i])
		}
	}
	return rows
}

// StabilizedRow is one year of a variance-stabilized chronology report.
type StabilizedRow struct {
	Year        int      `json:"year" yaml:"year"`
	Adjusted    *float64 `json:"adjusted" yaml:"adjusted"`
	RunningRbar *float64 `json:"running_rbar,omitempty" yaml:"running_rbar,omitempty"`
	Depth       int      `json:"depth" yaml:"depth"`
}

// StabilizedView is the encodable form of a StabilizedChronology.
type StabilizedView struct {
	RbarConstant *float64        `json:"rbar_constant" yaml:"rbar_constant"`
	GrandMean    *float64        `json:"grand_mean" yaml:"grand_mean"`
	Warnings     []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Rows         []StabilizedRow `json:"rows" yaml:"rows"`
}

// NewStabilizedView converts a stabilized chronology for encoding.
func NewStabilizedView(s *StabilizedChronology) StabilizedView {
	view := StabilizedView{
		RbarConstant: Nullable(s.RbarConstant),
		GrandMean:    Nullable(s.GrandMean),
		Warnings:     s.Warnings,
		Rows:         make([]StabilizedRow, len(s.Years)),
	}
	for i, y := range s.Years {
		view.Rows[i] = StabilizedRow{Year: y, Adjusted: Nullable(s.Adjusted[i]), Depth: s.Depth[i]}
		if s.RunningRbar != nil {
			view.Rows[i].RunningRbar = Nullable(s.RunningRbar[i])
		}
	}
	return view
}

// RbarView is the encodable form of an RbarResult.
type RbarView struct {
	Method      RbarMethod   `json:"method" yaml:"method"`
	Correlation string       `json:"correlation" yaml:"correlation"`
	Constant    *float64     `json:"constant" yaml:"constant"`
	Window      int          `json:"window" yaml:"window"`
	MinSegRatio float64      `json:"min_seg_ratio" yaml:"min_seg_ratio"`
	SeriesCount int          `json:"series_count" yaml:"series_count"`
	CommonStart *int         `json:"common_start,omitempty" yaml:"common_start,omitempty"`
	CommonEnd   *int         `json:"common_end,omitempty" yaml:"common_end,omitempty"`
	Running     []YearValue  `json:"running" yaml:"running"`
}

// YearValue pairs a year with an optional value.
type YearValue struct {
	Year  int      `json:"year" yaml:"year"`
	Value *float64 `json:"value" yaml:"value"`
}

// NewRbarView converts an RbarResult for encoding.
func NewRbarView(r *RbarResult) RbarView {
	view := RbarView{
		Method:      r.Method,
		Correlation: string(r.CorrelatedBy),
		Constant:    Nullable(r.Constant),
		Window:      r.Window,
		MinSegRatio: r.MinSegRatio,
		SeriesCount: r.SeriesCount,
		Running:     make([]YearValue, len(r.Years)),
	}
	if r.HasCommon {
		first, last := r.CommonFirst, r.CommonLast
		view.CommonStart, view.CommonEnd = &first, &last
	}
	for i, y := range r.Years {
		view.Running[i] = YearValue{Year: y, Value: Nullable(r.Running[i])}
	}
	return view
}

// LagView is one shift of a lag profile.
type LagView struct {
	Lag         int      `json:"lag" yaml:"lag"`
	Correlation *float64 `json:"correlation" yaml:"correlation"`
}

func newLagViews(profile []LagCorrelation) []LagView {
	out := make([]LagView, len(profile))
	for i, l := range profile {
		out[i] = LagView{Lag: l.Lag}
		if l.Valid {
			out[i].Correlation = Nullable(l.Correlation)
		}
	}
	return out
}

// FlagView is the encodable form of a Flag.
type FlagView struct {
	Kind            FlagKind  `json:"kind" yaml:"kind"`
	Series          string    `json:"series" yaml:"series"`
	Segment         string    `json:"segment" yaml:"segment"`
	Correlation     *float64  `json:"correlation" yaml:"correlation"`
	Critical        float64   `json:"critical" yaml:"critical"`
	BelowCritical   bool      `json:"below_critical" yaml:"below_critical"`
	BestLag         int       `json:"best_lag" yaml:"best_lag"`
	BestCorrelation *float64  `json:"best_correlation" yaml:"best_correlation"`
	Profile         []LagView `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// BinCorrelation is one bin cell of the crossdating table.
type BinCorrelation struct {
	Bin         string   `json:"bin" yaml:"bin"`
	Correlation *float64 `json:"correlation" yaml:"correlation"`
}

// SeriesXdateView collects one series' column of the crossdating table.
type SeriesXdateView struct {
	Series  string           `json:"series" yaml:"series"`
	Overall *float64         `json:"overall" yaml:"overall"`
	Bins    []BinCorrelation `json:"bins" yaml:"bins"`
}

// XdateView is the encodable form of an XdateResult.
type XdateView struct {
	Correlation string            `json:"correlation" yaml:"correlation"`
	SegLength   int               `json:"seg_length" yaml:"seg_length"`
	Critical    *float64          `json:"critical" yaml:"critical"`
	Prewhitened bool              `json:"prewhitened" yaml:"prewhitened"`
	Bins        []string          `json:"bins" yaml:"bins"`
	Series      []SeriesXdateView `json:"series" yaml:"series"`
	Flags       []FlagView        `json:"flags" yaml:"flags"`
	Skipped     []SkippedSeries   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewXdateView converts a crossdating result for encoding.
func NewXdateView(r *XdateResult) XdateView {
	view := XdateView{
		Correlation: string(r.Kind),
		SegLength:   r.SegLength,
		Critical:    Nullable(r.Critical),
		Prewhitened: r.Prewhitened,
		Bins:        make([]string, len(r.Bins)),
		Series:      make([]SeriesXdateView, len(r.Series)),
		Flags:       make([]FlagView, len(r.Flags)),
		Skipped:     r.Skipped,
	}
	for b, bin := range r.Bins {
		view.Bins[b] = bin.Label()
	}
	for s, name := range r.Series {
		col := SeriesXdateView{Series: name, Overall: Nullable(r.Overall[s]), Bins: make([]BinCorrelation, len(r.Bins))}
		for b, bin := range r.Bins {
			col.Bins[b] = BinCorrelation{Bin: bin.Label(), Correlation: Nullable(r.Correlations[b][s])}
		}
		view.Series[s] = col
	}
	for i, f := range r.Flags {
		view.Flags[i] = FlagView{
			Kind:            f.Kind,
			Series:          f.Series,
			Segment:         f.Bin.Label(),
			Correlation:     Nullable(f.Correlation),
			Critical:        f.Critical,
			BelowCritical:   f.BelowCritical,
			BestLag:         f.BestLag,
			BestCorrelation: Nullable(f.BestCorrelation),
			Profile:         newLagViews(f.Profile),
		}
	}
	return view
}

// FocusPointView is one centred segment correlation.
type FocusPointView struct {
	Center      int      `json:"center" yaml:"center"`
	Segment     string   `json:"segment" yaml:"segment"`
	Correlation *float64 `json:"correlation" yaml:"correlation"`
}

// LagProfileView is one lag profile of a focus analysis.
type LagProfileView struct {
	Segment string    `json:"segment" yaml:"segment"`
	Lags    []LagView `json:"lags" yaml:"lags"`
}

// FocusView is the encodable form of a FocusResult.
type FocusView struct {
	Series      string           `json:"series" yaml:"series"`
	Correlation string           `json:"correlation" yaml:"correlation"`
	SegLength   int              `json:"seg_length" yaml:"seg_length"`
	Overall     *float64         `json:"overall" yaml:"overall"`
	Critical    *float64         `json:"critical" yaml:"critical"`
	Range       string           `json:"range" yaml:"range"`
	Points      []FocusPointView `json:"points" yaml:"points"`
	Profiles    []LagProfileView `json:"profiles" yaml:"profiles"`
	Skipped     []SkippedSeries  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewFocusView converts a focus result for encoding.
func NewFocusView(r *FocusResult) FocusView {
	view := FocusView{
		Series:      r.Series,
		Correlation: string(r.Kind),
		SegLength:   r.SegLength,
		Overall:     Nullable(r.Overall),
		Critical:    Nullable(r.Critical),
		Range:       Bin{Start: r.Start, End: r.End}.Label(),
		Points:      make([]FocusPointView, len(r.Points)),
		Profiles:    make([]LagProfileView, len(r.Profiles)),
		Skipped:     r.Skipped,
	}
	for i, p := range r.Points {
		view.Points[i] = FocusPointView{
			Center:      p.Center,
			Segment:     Bin{Start: p.Start, End: p.End}.Label(),
			Correlation: Nullable(p.Correlation),
		}
	}
	for i, p := range r.Profiles {
		view.Profiles[i] = LagProfileView{Segment: Bin{Start: p.Start, End: p.End}.Label(), Lags: newLagViews(p.Lags)}
	}
	return view
}

// StatsView is the encodable form of SeriesStats.
type StatsView struct {
	Series string   `json:"series" yaml:"series"`
	First  int      `json:"first" yaml:"first"`
	Last   int      `json:"last" yaml:"last"`
	Years  int      `json:"year" yaml:"year"`
	Mean   *float64 `json:"mean" yaml:"mean"`
	Median *float64 `json:"median" yaml:"median"`
	StdDev *float64 `json:"stdev" yaml:"stdev"`
	Skew   *float64 `json:"skew" yaml:"skew"`
	Gini   *float64 `json:"gini" yaml:"gini"`
	AR1    *float64 `json:"ar1" yaml:"ar1"`
}

// NewStatsViews converts summary statistics for encoding.
func NewStatsViews(stats []SeriesStats) []StatsView {
	out := make([]StatsView, len(stats))
	for i, s := range stats {
		out[i] = StatsView{
			Series: s.Series,
			First:  s.First,
			Last:   s.Last,
			Years:  s.Years,
			Mean:   Nullable(s.Mean),
			Median: Nullable(s.Median),
			StdDev: Nullable(s.StdDev),
			Skew:   Nullable(s.Skew),
			Gini:   Nullable(s.Gini),
			AR1:    Nullable(s.AR1),
		}
	}
	return out
}
