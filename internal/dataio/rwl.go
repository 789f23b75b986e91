package dataio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/dendro/schema"
)

// Tucson stop markers and the divisors they imply.
const (
	stopHundredths  = "999"
	stopThousandths = "-9999"
	divHundredths   = 100.0
	divThousandths  = 1000.0
)

type rwlSeries struct {
	values  map[int]float64
	divisor float64
}

// ReadRWL parses a Tucson decadal file: each line holds a series id, the year of its
// first value and up to ten integer widths. A 999 stop marker scales the series by
// 1/100 and -9999 by 1/1000; series without a marker default to 1/100.
func ReadRWL(r io.Reader, opts ReadOptions) (*schema.Dataset, error) {
	skip := opts.SkipLines
	if opts.Header {
		skip += rwlHeaderLines
	}
	scanner := bufio.NewScanner(skipLines(r, skip))

	var order []string
	series := make(map[string]*rwlSeries)
	first, last, seen := 0, 0, false
	lineNo := skip
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected series id and start year", schema.ErrInvalidInput, lineNo)
		}
		id := fields[0]
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid year %q", schema.ErrInvalidInput, lineNo, fields[1])
		}
		s, ok := series[id]
		if !ok {
			s = &rwlSeries{values: make(map[int]float64), divisor: divHundredths}
			series[id] = s
			order = append(order, id)
		}
		for k, tok := range fields[2:] {
			year := start + k
			switch tok {
			case stopHundredths:
				s.divisor = divHundredths
				continue
			case stopThousandths:
				s.divisor = divThousandths
				continue
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid width %q", schema.ErrInvalidInput, lineNo, tok)
			}
			s.values[year] = float64(v)
			if !seen || year < first {
				first = year
			}
			if !seen || year > last {
				last = year
			}
			seen = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !seen {
		return nil, fmt.Errorf("%w: rwl file has no measurements", schema.ErrInvalidInput)
	}

	years := make([]int, last-first+1)
	for i := range years {
		years[i] = first + i
	}
	columns := make(map[string][]float64, len(order))
	for _, id := range order {
		s := series[id]
		col := make([]float64, len(years))
		for i, y := range years {
			if v, ok := s.values[y]; ok {
				col[i] = v / s.divisor
			} else {
				col[i] = math.NaN()
			}
		}
		columns[id] = col
	}
	return schema.DatasetFromColumns(years, order, columns)
}

// WriteRWL writes ds in Tucson form at 1/1000 precision. Every run of values is
// closed by a -9999 marker, so interior gaps survive a round trip.
func WriteRWL(w io.Writer, ds *schema.Dataset) error {
	bw := bufio.NewWriter(w)
	for i, s := range ds.Series {
		lo, hi := -1, -1
		for r, ok := range s.Valid {
			if ok {
				if lo < 0 {
					lo = r
				}
				hi = r
			}
		}
		if lo < 0 {
			continue
		}
		if err := writeRWLSeries(bw, ds.Years, ds.Series[i], lo, hi); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRWLSeries(w *bufio.Writer, years []int, s schema.Series, lo, hi int) error {
	r := lo
	writeLabel(w, s.Name, years[r])
	for r <= hi {
		if !s.Valid[r] {
			_, _ = fmt.Fprintf(w, "%6s\n", stopThousandths)
			for r <= hi && !s.Valid[r] {
				r++
			}
			if r <= hi {
				writeLabel(w, s.Name, years[r])
			}
			continue
		}
		_, _ = fmt.Fprintf(w, "%6d", int(math.Round(s.Values[r]*divThousandths)))
		r++
		if r > hi || !s.Valid[r] {
			continue
		}
		switch {
		case years[r] != years[r-1]+1:
			_, _ = fmt.Fprintf(w, "%6s\n", stopThousandths)
			writeLabel(w, s.Name, years[r])
		case years[r]%10 == 0:
			_, _ = fmt.Fprintln(w)
			writeLabel(w, s.Name, years[r])
		}
	}
	_, err := fmt.Fprintf(w, "%6s\n", stopThousandths)
	return err
}

// writeLabel writes the fixed-width id and year columns; negative years borrow
// one column from the id.
func writeLabel(w *bufio.Writer, name string, year int) {
	if year < 0 {
		_, _ = fmt.Fprintf(w, "%-7s%5d", name, year)
		return
	}
	_, _ = fmt.Fprintf(w, "%-8s%4d", name, year)
}
