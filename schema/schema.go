// Package schema has models and constants for all parts of dendro.
package schema

import (
	"fmt"
	"math"
)

// Chronology is the per-year aggregate of a dataset.
// Mean is NaN in years without any contributing series.
type Chronology struct {
	Years    []int
	Mean     []float64
	Depth    []int
	Whitened []float64 // aggregate of AR residuals; nil unless prewhitening was requested
	Skipped  []SkippedSeries
}

// Lookup returns the chronology value for year when it is defined.
func (c *Chronology) Lookup(year int) (float64, bool) {
	lo, hi := 0, len(c.Years)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Years[mid] < year {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(c.Years) || c.Years[lo] != year || math.IsNaN(c.Mean[lo]) {
		return 0, false
	}
	return c.Mean[lo], true
}

// SkippedSeries names a series excluded from a run and why.
type SkippedSeries struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// StabilizedChronology is a variance-adjusted chronology.
type StabilizedChronology struct {
	Years        []int
	Adjusted     []float64
	Depth        []int
	RunningRbar  []float64 // nil unless requested
	RbarConstant float64
	GrandMean    float64
	Warnings     []string
}

// RbarResult reports interseries correlation statistics for a dataset.
type RbarResult struct {
	Method       RbarMethod
	Constant     float64
	Window       int
	Years        []int
	Running      []float64
	CommonFirst  int
	CommonLast   int
	HasCommon    bool
	SeriesCount  int
	MinSegRatio  float64
	CorrelatedBy CorrelationKind
}

// Bin is a closed year window used for segment comparison.
type Bin struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Label renders the bin as "start-end".
func (b Bin) Label() string {
	return fmt.Sprintf("%d-%d", b.Start, b.End)
}

// Len returns the number of years covered.
func (b Bin) Len() int {
	return b.End - b.Start + 1
}

// LagCorrelation is the correlation of a segment shifted by Lag years.
// Valid is false when the shifted segment did not fully overlap the reference.
type LagCorrelation struct {
	Lag         int
	Correlation float64
	Valid       bool
}

// Flag annotates a series segment that failed crossdating checks.
type Flag struct {
	Kind            FlagKind
	Series          string
	Bin             Bin
	Correlation     float64
	Critical        float64
	BelowCritical   bool
	BestLag         int
	BestCorrelation float64
	Profile         []LagCorrelation
}

// XdateResult is the outcome of a crossdating run.
// Correlations is indexed [bin][series], NaN where a bin does not apply.
type XdateResult struct {
	Kind         CorrelationKind
	SegLength    int
	Critical     float64
	LagRange     int
	Prewhitened  bool
	Bins         []Bin
	Series       []string
	Correlations [][]float64
	Overall      []float64
	Flags        []Flag
	Skipped      []SkippedSeries
}

// FlagsFor returns the flags raised for one series, in bin order.
func (r *XdateResult) FlagsFor(name string) []Flag {
	var out []Flag
	for _, f := range r.Flags {
		if f.Series == name {
			out = append(out, f)
		}
	}
	return out
}

// FocusPoint is a segment correlation centred on one year.
type FocusPoint struct {
	Center      int
	Start       int
	End         int
	Correlation float64
}

// LagProfile is the correlation of one segment across a range of shifts.
type LagProfile struct {
	Start int
	End   int
	Lags  []LagCorrelation
}

// FocusResult is the single-series crossdating diagnostic.
type FocusResult struct {
	Series    string
	Kind      CorrelationKind
	SegLength int
	Overall   float64
	Critical  float64
	Start     int
	End       int
	Points    []FocusPoint
	Profiles  []LagProfile
	Skipped   []SkippedSeries
}

// SeriesStats holds summary statistics for one series.
type SeriesStats struct {
	Series string  `json:"series"`
	First  int     `json:"first"`
	Last   int     `json:"last"`
	Years  int     `json:"year"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdev"`
	Skew   float64 `json:"skew"`
	Gini   float64 `json:"gini"`
	AR1    float64 `json:"ar1"`
}
