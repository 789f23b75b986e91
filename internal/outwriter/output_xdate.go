package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/huangsam/dendro/core/xdate"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/parquet"
	"github.com/huangsam/dendro/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// overallBin labels the whole-series row in long-form outputs.
const overallBin = "overall"

// WriteXdate outputs a crossdating report, dispatching based on the output format configured.
func WriteXdate(result *schema.XdateResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewXdateView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.NewXdateView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeXdateCSV(w, result, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertXdate(result))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeXdateTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// flagIndex maps a series and bin start to the flag raised there.
type flagIndex map[string]map[int]schema.Flag

func indexFlags(flags []schema.Flag) flagIndex {
	idx := make(flagIndex)
	for _, f := range flags {
		if idx[f.Series] == nil {
			idx[f.Series] = make(map[int]schema.Flag)
		}
		idx[f.Series][f.Bin.Start] = f
	}
	return idx
}

func writeXdateCSV(w io.Writer, result *schema.XdateResult, precision int) error {
	fmtFloat, _ := createFormatters(precision, missingCSV)
	flags := indexFlags(result.Flags)
	header := []string{"series", "bin", "correlation", "label", "flag", "best_lag"}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for s, name := range result.Series {
			for b, bin := range result.Bins {
				v := result.Correlations[b][s]
				if math.IsNaN(v) {
					continue
				}
				rec := []string{name, bin.Label(), fmtFloat(v), contract.GetPlainLabel(v, result.Critical), "", ""}
				if f, ok := flags[name][bin.Start]; ok {
					rec[4] = string(f.Kind)
					rec[5] = strconv.Itoa(f.BestLag)
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			overall := result.Overall[s]
			rec := []string{name, overallBin, fmtFloat(overall), contract.GetPlainLabel(overall, result.Critical), "", ""}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeXdateTable(w io.Writer, result *schema.XdateResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision, "-")
	flags := indexFlags(result.Flags)
	nameWidth := GetMaxNameWidth(cfg, 8*(len(result.Bins)+3))

	headers := []string{"Series"}
	for _, bin := range result.Bins {
		headers = append(headers, bin.Label())
	}
	headers = append(headers, "Overall", "Label", "Flags")

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for s, name := range result.Series {
		row := []string{contract.TruncateName(name, nameWidth)}
		for b, bin := range result.Bins {
			f, flagged := flags[name][bin.Start]
			row = append(row, formatXdateCell(result.Correlations[b][s], f, flagged, fmtFloat))
		}
		overall := result.Overall[s]
		row = append(row,
			fmtFloat(overall),
			contract.GetColorLabel(overall, result.Critical),
			strconv.Itoa(len(flags[name])),
		)
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Critical correlation: %s (segment length %d, %s)\n\n",
		fmtFloat(result.Critical), result.SegLength, result.Kind); err != nil {
		return err
	}
	if cfg.ShowFlags {
		for _, name := range result.Series {
			if err := xdate.FormatFlags(w, name, result.FlagsFor(name), result.LagRange); err != nil {
				return err
			}
		}
	}
	if err := writeSkipped(w, result.Skipped); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Crossdated %d series (%d flags) in %v with %d workers. Run backend: %s\n",
		len(result.Series), len(result.Flags), duration, cfg.Workers, cfg.RunBackend)
	return err
}

// formatXdateCell renders one bin correlation, suffixed with the flag kind
// and coloured when the bin was flagged.
func formatXdateCell(v float64, f schema.Flag, flagged bool, fmtFloat func(float64) string) string {
	text := fmtFloat(v)
	if !flagged {
		return text
	}
	text += string(f.Kind)
	if f.BelowCritical {
		return contract.BelowCriticalColor.Sprint(text)
	}
	return contract.WeakColor.Sprint(text)
}

// WriteFocus outputs a single-series correlation report.
func WriteFocus(result *schema.FocusResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewFocusView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.NewFocusView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFocusCSV(w, result, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "series-corr")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFocusTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

func writeFocusCSV(w io.Writer, result *schema.FocusResult, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision, missingCSV)
	header := []string{"center", "start", "end", "correlation", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range result.Points {
			rec := []string{
				fmtInt(p.Center),
				fmtInt(p.Start),
				fmtInt(p.End),
				fmtFloat(p.Correlation),
				contract.GetPlainLabel(p.Correlation, result.Critical),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFocusTable(w io.Writer, result *schema.FocusResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision, "-")

	if _, err := fmt.Fprintf(w, "Series: %s (overall %s, %s)\n", result.Series,
		fmtFloat(result.Overall), contract.GetColorLabel(result.Overall, result.Critical)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Range: %s, segment length %d, critical %s (%s)\n",
		schema.Bin{Start: result.Start, End: result.End}.Label(), result.SegLength, fmtFloat(result.Critical), result.Kind); err != nil {
		return err
	}

	points := tablewriter.NewWriter(w)
	points.Header([]string{"Center", "Segment", "Correlation", "Label"})
	points.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, p := range result.Points {
		data = append(data, []string{
			fmtInt(p.Center),
			schema.Bin{Start: p.Start, End: p.End}.Label(),
			fmtFloat(p.Correlation),
			contract.GetColorLabel(p.Correlation, result.Critical),
		})
	}
	if err := points.Bulk(data); err != nil {
		return err
	}
	if err := points.Render(); err != nil {
		return err
	}

	if len(result.Profiles) > 0 {
		headers := []string{"Segment"}
		for _, l := range result.Profiles[0].Lags {
			headers = append(headers, formatLag(l.Lag))
		}
		profiles := tablewriter.NewWriter(w)
		profiles.Header(headers)
		profiles.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		data = data[:0]
		for _, p := range result.Profiles {
			row := []string{schema.Bin{Start: p.Start, End: p.End}.Label()}
			for _, l := range p.Lags {
				if l.Valid {
					row = append(row, fmtFloat(l.Correlation))
				} else {
					row = append(row, "")
				}
			}
			data = append(data, row)
		}
		if err := profiles.Bulk(data); err != nil {
			return err
		}
		if err := profiles.Render(); err != nil {
			return err
		}
	}

	if err := writeSkipped(w, result.Skipped); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration)
	return err
}

// formatLag renders a shift the way flag headers do: signed, with a bare zero.
func formatLag(lag int) string {
	if lag == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", lag)
}
