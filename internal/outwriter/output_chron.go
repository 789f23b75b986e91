package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/parquet"
	"github.com/huangsam/dendro/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteChronology outputs a chronology, dispatching based on the output format configured.
func WriteChronology(chron *schema.Chronology, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.ChronologyRows(chron))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.ChronologyRows(chron))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChronologyCSV(w, chron, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertChronology(chron))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChronologyTable(w, chron, cfg, duration)
		}, "Wrote table")
	}
}

func writeChronologyCSV(w io.Writer, chron *schema.Chronology, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision, missingCSV)
	header := []string{"year", "mean"}
	if chron.Whitened != nil {
		header = append(header, "whitened")
	}
	header = append(header, "depth")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, y := range chron.Years {
			rec := []string{fmtInt(y), fmtFloat(chron.Mean[i])}
			if chron.Whitened != nil {
				rec = append(rec, fmtFloat(chron.Whitened[i]))
			}
			rec = append(rec, fmtInt(chron.Depth[i]))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeChronologyTable(w io.Writer, chron *schema.Chronology, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision, "-")
	table := tablewriter.NewWriter(w)

	headers := []string{"Year", "Mean"}
	if chron.Whitened != nil {
		headers = append(headers, "Whitened")
	}
	headers = append(headers, "Depth")
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, y := range chron.Years {
		row := []string{fmtInt(y), fmtFloat(chron.Mean[i])}
		if chron.Whitened != nil {
			row = append(row, fmtFloat(chron.Whitened[i]))
		}
		row = append(row, fmtInt(chron.Depth[i]))
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if err := writeSkipped(w, chron.Skipped); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Chronology of %d years built in %v\n", len(chron.Years), duration)
	return err
}

// WriteStabilized outputs a variance-stabilized chronology.
func WriteStabilized(result *schema.StabilizedChronology, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewStabilizedView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.NewStabilizedView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStabilizedCSV(w, result, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "stabilize")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStabilizedTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

func writeStabilizedCSV(w io.Writer, result *schema.StabilizedChronology, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision, missingCSV)
	header := []string{"year", "adjusted"}
	if result.RunningRbar != nil {
		header = append(header, "running_rbar")
	}
	header = append(header, "depth")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, y := range result.Years {
			rec := []string{fmtInt(y), fmtFloat(result.Adjusted[i])}
			if result.RunningRbar != nil {
				rec = append(rec, fmtFloat(result.RunningRbar[i]))
			}
			rec = append(rec, fmtInt(result.Depth[i]))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeStabilizedTable(w io.Writer, result *schema.StabilizedChronology, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision, "-")
	table := tablewriter.NewWriter(w)

	headers := []string{"Year", "Adjusted"}
	if result.RunningRbar != nil {
		headers = append(headers, "Running rbar")
	}
	headers = append(headers, "Depth")
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, y := range result.Years {
		row := []string{fmtInt(y), fmtFloat(result.Adjusted[i])}
		if result.RunningRbar != nil {
			row = append(row, fmtFloat(result.RunningRbar[i]))
		}
		row = append(row, fmtInt(result.Depth[i]))
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		if _, err := fmt.Fprintf(w, "⚠️  %s\n", warning); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Rbar constant: %s, grand mean: %s (completed in %v)\n",
		fmtFloat(result.RbarConstant), fmtFloat(result.GrandMean), duration)
	return err
}

// WriteRbar outputs an interseries correlation report.
func WriteRbar(result *schema.RbarResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewRbarView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.NewRbarView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRbarCSV(w, result, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "rbar")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRbarTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

func writeRbarCSV(w io.Writer, result *schema.RbarResult, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision, missingCSV)
	return writeCSVWithHeader(w, []string{"year", "running_rbar"}, func(cw *csv.Writer) error {
		for i, y := range result.Years {
			if err := cw.Write([]string{fmtInt(y), fmtFloat(result.Running[i])}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRbarTable(w io.Writer, result *schema.RbarResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision, "-")

	common := "none"
	if result.HasCommon {
		common = schema.Bin{Start: result.CommonFirst, End: result.CommonLast}.Label()
	}
	lines := []string{
		fmt.Sprintf("Method: %s (%s), window %d, min segment ratio %.2f", result.Method, result.CorrelatedBy, result.Window, result.MinSegRatio),
		fmt.Sprintf("Rbar constant: %s over %d series", fmtFloat(result.Constant), result.SeriesCount),
		fmt.Sprintf("Common interval: %s", common),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Year", "Running rbar"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, y := range result.Years {
		data = append(data, []string{fmtInt(y), fmtFloat(result.Running[i])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration)
	return err
}

// writeSkipped lists the series that were left out of a run.
func writeSkipped(w io.Writer, skipped []schema.SkippedSeries) error {
	for _, s := range skipped {
		if _, err := fmt.Fprintf(w, "⚠️  Skipped %s: %s\n", s.Name, s.Reason); err != nil {
			return err
		}
	}
	return nil
}
