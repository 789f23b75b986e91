package xdate

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/dendro/schema"
)

// FlagHeader renders the column header of a flag block.
func FlagHeader(kind schema.FlagKind, lagRange int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Segment  High", kind)
	for lag := -lagRange; lag <= lagRange; lag++ {
		label := "0"
		if lag != 0 {
			label = fmt.Sprintf("%+d", lag)
		}
		fmt.Fprintf(&b, " %5s", label)
	}
	return b.String()
}

// FlagLine renders one flag as a fixed-width row under FlagHeader.
func FlagLine(f schema.Flag, lagRange int) string {
	cells := []string{fmt.Sprintf("%12s", f.Bin.Label()), fmt.Sprintf("%4d", f.BestLag)}
	byLag := make(map[int]schema.LagCorrelation, len(f.Profile))
	for _, l := range f.Profile {
		byLag[l.Lag] = l
	}
	for lag := -lagRange; lag <= lagRange; lag++ {
		if l, ok := byLag[lag]; ok && l.Valid {
			cells = append(cells, fmt.Sprintf("%5.2f", l.Correlation))
		} else {
			cells = append(cells, "     ")
		}
	}
	return strings.Join(cells, " ")
}

// FormatFlags writes the flag blocks of one series. Nothing is written when
// the series has no flags.
func FormatFlags(w io.Writer, series string, flags []schema.Flag, lagRange int) error {
	if len(flags) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Flags for %s\n", series); err != nil {
		return err
	}
	for _, kind := range []schema.FlagKind{schema.LowCorrelationFlag, schema.LagMismatchFlag} {
		header := false
		for _, f := range flags {
			if f.Kind != kind {
				continue
			}
			if !header {
				if _, err := fmt.Fprintln(w, FlagHeader(kind, lagRange)); err != nil {
					return err
				}
				header = true
			}
			if _, err := fmt.Fprintln(w, FlagLine(f, lagRange)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
