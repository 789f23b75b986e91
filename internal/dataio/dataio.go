// Package dataio reads and writes ring-width datasets in CSV and Tucson RWL form.
package dataio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/dendro/schema"
)

// ReadOptions controls how a ring-width file is parsed.
type ReadOptions struct {
	SkipLines int  // leading lines to drop before parsing
	Header    bool // RWL only: the file starts with a three-line header
}

// rwlHeaderLines is the length of a standard Tucson header block.
const rwlHeaderLines = 3

// ReadDataset opens path and parses it according to its extension.
func ReadDataset(path string, opts ReadOptions) (*schema.Dataset, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var ds *schema.Dataset
	switch format {
	case schema.RWLFormat:
		ds, err = ReadRWL(f, opts)
	default:
		ds, err = ReadCSV(f, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// WriteDataset encodes ds to w in the given format.
func WriteDataset(w io.Writer, ds *schema.Dataset, format schema.DataFormat) error {
	switch format {
	case schema.CSVFormat:
		return WriteCSV(w, ds)
	case schema.RWLFormat:
		return WriteRWL(w, ds)
	default:
		return fmt.Errorf("%w: unsupported data format %q", schema.ErrInvalidArgument, format)
	}
}

func formatOf(path string) (schema.DataFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return schema.CSVFormat, nil
	case ".rwl":
		return schema.RWLFormat, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension %q, expected .csv or .rwl", schema.ErrInvalidInput, filepath.Ext(path))
	}
}

// skipLines drops n lines from r. Running out of input is not an error.
func skipLines(r io.Reader, n int) io.Reader {
	if n <= 0 {
		return r
	}
	br := newLineReader(r)
	for range n {
		if _, err := br.ReadString('\n'); err != nil {
			break
		}
	}
	return br
}
