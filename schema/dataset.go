package schema

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// Sentinel errors shared by the analysis packages.
var (
	// ErrInvalidInput marks data that does not have the year-indexed shape the engine expects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidArgument marks a parameter outside its allowed range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Series is one named ring-width sequence aligned to its dataset's year axis.
// Valid marks the years that carry a measurement; Values at invalid years are NaN.
type Series struct {
	Name   string
	Values []float64
	Valid  []bool
}

// NewSeries copies values into a Series and derives its validity bitmap.
// NaN and infinite values are treated as missing.
func NewSeries(name string, values []float64) Series {
	s := Series{
		Name:   name,
		Values: make([]float64, len(values)),
		Valid:  make([]bool, len(values)),
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.Values[i] = math.NaN()
			continue
		}
		s.Values[i] = v
		s.Valid[i] = true
	}
	return s
}

// ValidCount returns the number of years with a measurement.
func (s Series) ValidCount() int {
	n := 0
	for _, ok := range s.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Dataset is a collection of series sharing one strictly increasing year axis.
// A Dataset is never mutated after construction; views returned by its methods
// share the underlying series storage.
type Dataset struct {
	Years  []int
	Series []Series
}

// NewDataset validates the year axis and series alignment.
func NewDataset(years []int, series []Series) (*Dataset, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: dataset has no years", ErrInvalidInput)
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return nil, fmt.Errorf("%w: years must be strictly increasing (%d follows %d)", ErrInvalidInput, years[i], years[i-1])
		}
	}
	seen := make(map[string]struct{}, len(series))
	for _, s := range series {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: series without a name", ErrInvalidInput)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate series %q", ErrInvalidInput, s.Name)
		}
		seen[s.Name] = struct{}{}
		if len(s.Values) != len(years) || len(s.Valid) != len(years) {
			return nil, fmt.Errorf("%w: series %q has %d values for %d years", ErrInvalidInput, s.Name, len(s.Values), len(years))
		}
	}
	return &Dataset{Years: years, Series: series}, nil
}

// DatasetFromColumns builds a dataset from raw columns keyed by series name.
// Series are stored in the order given by names.
func DatasetFromColumns(years []int, names []string, columns map[string][]float64) (*Dataset, error) {
	series := make([]Series, 0, len(names))
	for _, name := range names {
		col, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: no column for series %q", ErrInvalidInput, name)
		}
		series = append(series, NewSeries(name, col))
	}
	return NewDataset(years, series)
}

// Rows returns the length of the year axis.
func (ds *Dataset) Rows() int {
	return len(ds.Years)
}

// Index returns the row holding year.
func (ds *Dataset) Index(year int) (int, bool) {
	i := sort.SearchInts(ds.Years, year)
	if i < len(ds.Years) && ds.Years[i] == year {
		return i, true
	}
	return 0, false
}

// Names returns the series names in storage order.
func (ds *Dataset) Names() []string {
	names := make([]string, len(ds.Series))
	for i, s := range ds.Series {
		names[i] = s.Name
	}
	return names
}

// SortedNames returns the series names in lexicographic order.
func (ds *Dataset) SortedNames() []string {
	names := ds.Names()
	slices.Sort(names)
	return names
}

// Lookup returns the position of the named series.
func (ds *Dataset) Lookup(name string) (int, bool) {
	for i, s := range ds.Series {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Without returns a view of the dataset excluding the named series.
// The receiver is left untouched.
func (ds *Dataset) Without(name string) *Dataset {
	rest := make([]Series, 0, len(ds.Series))
	for _, s := range ds.Series {
		if s.Name != name {
			rest = append(rest, s)
		}
	}
	return &Dataset{Years: ds.Years, Series: rest}
}

// Window returns a view over rows [start, end).
func (ds *Dataset) Window(start, end int) *Dataset {
	view := make([]Series, len(ds.Series))
	for i, s := range ds.Series {
		view[i] = Series{Name: s.Name, Values: s.Values[start:end], Valid: s.Valid[start:end]}
	}
	return &Dataset{Years: ds.Years[start:end], Series: view}
}

// SeriesRange returns the first and last valid year of series i.
func (ds *Dataset) SeriesRange(i int) (first, last int, ok bool) {
	s := ds.Series[i]
	lo, hi := -1, -1
	for r, valid := range s.Valid {
		if !valid {
			continue
		}
		if lo < 0 {
			lo = r
		}
		hi = r
	}
	if lo < 0 {
		return 0, 0, false
	}
	return ds.Years[lo], ds.Years[hi], true
}

// ValidRange returns the first and last year in which any series has a value.
func (ds *Dataset) ValidRange() (first, last int, ok bool) {
	for i := range ds.Series {
		f, l, has := ds.SeriesRange(i)
		if !has {
			continue
		}
		if !ok || f < first {
			first = f
		}
		if !ok || l > last {
			last = l
		}
		ok = true
	}
	return first, last, ok
}

// Points returns the valid years and values of series i.
func (ds *Dataset) Points(i int) YearSeries {
	s := ds.Series[i]
	ys := YearSeries{Name: s.Name}
	for r, valid := range s.Valid {
		if valid {
			ys.Years = append(ys.Years, ds.Years[r])
			ys.Values = append(ys.Values, s.Values[r])
		}
	}
	return ys
}

// Align places a YearSeries onto the dataset's year axis.
// Years outside the axis are dropped.
func (ds *Dataset) Align(ys YearSeries) Series {
	values := make([]float64, len(ds.Years))
	for i := range values {
		values[i] = math.NaN()
	}
	for k, y := range ys.Years {
		if r, ok := ds.Index(y); ok {
			values[r] = ys.Values[k]
		}
	}
	return NewSeries(ys.Name, values)
}

// YearSeries is a compact series holding only valid observations, in ascending year order.
type YearSeries struct {
	Name   string
	Years  []int
	Values []float64
}

// Len returns the number of observations.
func (ys YearSeries) Len() int {
	return len(ys.Years)
}

// First returns the earliest year; it panics on an empty series.
func (ys YearSeries) First() int {
	return ys.Years[0]
}

// Last returns the latest year; it panics on an empty series.
func (ys YearSeries) Last() int {
	return ys.Years[len(ys.Years)-1]
}

// Between returns the observations falling in [start, end].
func (ys YearSeries) Between(start, end int) YearSeries {
	lo := sort.SearchInts(ys.Years, start)
	hi := sort.SearchInts(ys.Years, end+1)
	return YearSeries{Name: ys.Name, Years: ys.Years[lo:hi], Values: ys.Values[lo:hi]}
}
