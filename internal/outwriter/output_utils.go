package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/parquet"
	"github.com/huangsam/dendro/schema"
	"gopkg.in/yaml.v3"
)

// missingCSV marks a missing value in CSV output, matching the dataset writer.
const missingCSV = "NA"

// errParquetStdout is returned when parquet output has no file to go to.
var errParquetStdout = errors.New("parquet output requires --output-file")

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeYAML encodes data as a YAML document.
func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// writeParquetFile writes rows to the configured output file.
func writeParquetFile[T any](outputFile string, rows []T) error {
	if outputFile == "" {
		return errParquetStdout
	}
	if err := parquet.WriteFile(outputFile, rows); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
// Missing values render as the given placeholder.
func createFormatters(precision int, missing string) (fmtFloat func(float64) string, fmtInt func(int) string) {
	fmtFloat = func(v float64) string {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return missing
		}
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	return fmtFloat, strconv.Itoa
}

// unsupportedOutput reports an output mode that a result type cannot be written in.
func unsupportedOutput(mode schema.OutputMode, what string) error {
	return fmt.Errorf("%s output is not supported for %s", mode, what)
}
