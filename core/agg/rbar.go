package agg

import (
	"fmt"
	"math"

	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/schema"
)

// MeanIntercorrelation returns the mean pairwise correlation between the series of ds.
//
// Self-correlations are excluded, and so is every pair whose overlap is not
// greater than ds.Rows()*minSegRatio years. The result is NaN when no pair remains.
func MeanIntercorrelation(ds *schema.Dataset, minSegRatio float64, kind schema.CorrelationKind) float64 {
	minOverlap := float64(ds.Rows()) * minSegRatio

	var sum float64
	var count int
	for i := 0; i < len(ds.Series); i++ {
		for j := i + 1; j < len(ds.Series); j++ {
			a, b := ds.Series[i], ds.Series[j]
			if float64(overlap(a, b)) <= minOverlap {
				continue
			}
			r := algo.Correlate(a.Values, b.Values, kind)
			if math.IsNaN(r) {
				continue
			}
			sum += r
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// overlap counts the rows where both series are valid.
func overlap(a, b schema.Series) int {
	n := 0
	for r := range a.Valid {
		if a.Valid[r] && b.Valid[r] {
			n++
		}
	}
	return n
}

// IntercorrelationFor applies the selected method to ds.
// The frank method first drops every series whose coverage of ds is below minSegRatio.
func IntercorrelationFor(ds *schema.Dataset, minSegRatio float64, method schema.RbarMethod, kind schema.CorrelationKind) float64 {
	if method == schema.FrankMethod {
		ds = coveredOnly(ds, minSegRatio)
	}
	return MeanIntercorrelation(ds, minSegRatio, kind)
}

func coveredOnly(ds *schema.Dataset, minSegRatio float64) *schema.Dataset {
	kept := make([]schema.Series, 0, len(ds.Series))
	for _, s := range ds.Series {
		if float64(s.ValidCount())/float64(ds.Rows()) >= minSegRatio {
			kept = append(kept, s)
		}
	}
	return &schema.Dataset{Years: ds.Years, Series: kept}
}

// RunningIntercorrelation computes the interseries correlation in every full
// window of length window and assigns it to the window's centre year,
// start+window/2. Years before the first and after the last centre take the
// nearest defined value.
func RunningIntercorrelation(ds *schema.Dataset, window int, minSegRatio float64, method schema.RbarMethod, kind schema.CorrelationKind) ([]float64, error) {
	if err := checkShape(ds); err != nil {
		return nil, err
	}
	if err := checkRatio(minSegRatio); err != nil {
		return nil, err
	}
	rows := ds.Rows()
	if window < 2 || window > rows {
		return nil, fmt.Errorf("%w: window %d must be between 2 and the row count %d", schema.ErrInvalidArgument, window, rows)
	}

	running := make([]float64, rows)
	for i := range running {
		running[i] = math.NaN()
	}
	target := window / 2
	for i := 0; i+window <= rows; i++ {
		running[i+target] = IntercorrelationFor(ds.Window(i, i+window), minSegRatio, method, kind)
	}
	padEdges(running, target, rows-window+target)
	return running, nil
}

// padEdges copies the first and last defined values within [lo, hi] outwards.
func padEdges(values []float64, lo, hi int) {
	first, last := -1, -1
	for i := lo; i <= hi; i++ {
		if !math.IsNaN(values[i]) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}
	for i := 0; i < first; i++ {
		values[i] = values[first]
	}
	for i := last + 1; i < len(values); i++ {
		values[i] = values[last]
	}
}

// CommonInterval finds the block of consecutive years that maximises the
// product of its length and its minimum sample depth. The earliest, shortest
// block wins ties. ok is false when no year has any value.
func CommonInterval(ds *schema.Dataset) (first, last int, ok bool) {
	rows := ds.Rows()
	depth := make([]int, rows)
	for _, s := range ds.Series {
		for r, valid := range s.Valid {
			if valid {
				depth[r]++
			}
		}
	}

	best, bestStart, bestEnd := 0, 0, 0
	for start := range rows {
		minDepth := math.MaxInt
		for end := start; end < rows; end++ {
			minDepth = min(minDepth, depth[end])
			if minDepth == 0 {
				break
			}
			if score := minDepth * (end - start + 1); score > best {
				best, bestStart, bestEnd = score, start, end
			}
		}
	}
	if best == 0 {
		return 0, 0, false
	}
	return ds.Years[bestStart], ds.Years[bestEnd], true
}

// RbarOptions configures an interseries correlation report.
type RbarOptions struct {
	Window      int
	MinSegRatio float64
	Method      schema.RbarMethod
	Kind        schema.CorrelationKind
}

// Rbar reports the constant and running interseries correlation of ds, plus its common interval.
func Rbar(ds *schema.Dataset, opts RbarOptions) (*schema.RbarResult, error) {
	running, err := RunningIntercorrelation(ds, opts.Window, opts.MinSegRatio, opts.Method, opts.Kind)
	if err != nil {
		return nil, err
	}
	result := &schema.RbarResult{
		Method:       opts.Method,
		Constant:     IntercorrelationFor(ds, opts.MinSegRatio, opts.Method, opts.Kind),
		Window:       opts.Window,
		Years:        ds.Years,
		Running:      running,
		SeriesCount:  len(ds.Series),
		MinSegRatio:  opts.MinSegRatio,
		CorrelatedBy: opts.Kind,
	}
	result.CommonFirst, result.CommonLast, result.HasCommon = CommonInterval(ds)
	return result, nil
}

func checkRatio(minSegRatio float64) error {
	if minSegRatio <= 0 || minSegRatio > 1 {
		return fmt.Errorf("%w: min segment ratio %v must be in (0, 1]", schema.ErrInvalidArgument, minSegRatio)
	}
	return nil
}
