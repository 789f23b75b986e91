package dataio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/dendro/schema"
)

func newLineReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// ReadCSV parses a wide CSV table: a Year column followed by one column per series.
// Empty, NA and NaN cells are missing values.
func ReadCSV(r io.Reader, opts ReadOptions) (*schema.Dataset, error) {
	reader := csv.NewReader(skipLines(r, opts.SkipLines))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", schema.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidInput, err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "year") {
		return nil, fmt.Errorf("%w: csv header must start with Year followed by series names", schema.ErrInvalidInput)
	}
	names := make([]string, len(header)-1)
	for i, h := range header[1:] {
		names[i] = strings.TrimSpace(h)
	}

	var years []int
	columns := make(map[string][]float64, len(names))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schema.ErrInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid year %q", schema.ErrInvalidInput, line, record[0])
		}
		years = append(years, year)
		for i, name := range names {
			v, err := parseCell(record[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: series %s: %v", schema.ErrInvalidInput, line, name, err)
			}
			columns[name] = append(columns[name], v)
		}
	}
	return schema.DatasetFromColumns(years, names, columns)
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToUpper(cell) {
	case "", "NA", "NAN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// WriteCSV writes ds as a quoted-header wide table, with NA for missing values.
func WriteCSV(w io.Writer, ds *schema.Dataset) error {
	bw := bufio.NewWriter(w)
	quoted := make([]string, 0, len(ds.Series)+1)
	quoted = append(quoted, quoteField("Year"))
	for _, s := range ds.Series {
		quoted = append(quoted, quoteField(s.Name))
	}
	if _, err := fmt.Fprintln(bw, strings.Join(quoted, ",")); err != nil {
		return err
	}

	row := make([]string, len(ds.Series)+1)
	for r, year := range ds.Years {
		row[0] = strconv.Itoa(year)
		for i, s := range ds.Series {
			if s.Valid[r] {
				row[i+1] = strconv.FormatFloat(s.Values[r], 'f', -1, 64)
			} else {
				row[i+1] = "NA"
			}
		}
		if _, err := fmt.Fprintln(bw, strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
