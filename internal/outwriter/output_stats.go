package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteStats outputs per-series summary statistics.
func WriteStats(stats []schema.SeriesStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewStatsViews(stats))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.NewStatsViews(stats))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsCSV(w, stats, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "stats")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsTable(w, stats, cfg, duration)
		}, "Wrote table")
	}
}

func statsRecord(s schema.SeriesStats, name string, fmtFloat func(float64) string, fmtInt func(int) string) []string {
	return []string{
		name,
		fmtInt(s.First),
		fmtInt(s.Last),
		fmtInt(s.Years),
		fmtFloat(s.Mean),
		fmtFloat(s.Median),
		fmtFloat(s.StdDev),
		fmtFloat(s.Skew),
		fmtFloat(s.Gini),
		fmtFloat(s.AR1),
	}
}

func writeStatsCSV(w io.Writer, stats []schema.SeriesStats, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision, missingCSV)
	header := []string{"series", "first", "last", "year", "mean", "median", "stdev", "skew", "gini", "ar1"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range stats {
			if err := cw.Write(statsRecord(s, s.Series, fmtFloat, fmtInt)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeStatsTable(w io.Writer, stats []schema.SeriesStats, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision, "-")
	nameWidth := GetMaxNameWidth(cfg, 80)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Series", "First", "Last", "Years", "Mean", "Median", "StdDev", "Skew", "Gini", "AR1"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range stats {
		data = append(data, statsRecord(s, contract.TruncateName(s.Series, nameWidth), fmtFloat, fmtInt))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Described %d series in %v\n", len(stats), duration)
	return err
}
