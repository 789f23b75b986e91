package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/dataio"
	"github.com/huangsam/dendro/schema"
)

// WriteDataset writes ds in the configured data format, to the output file or stdout.
func WriteDataset(ds *schema.Dataset, cfg *contract.Config) error {
	format := cfg.DataFormat
	if format == "" {
		format = schema.CSVFormat
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return dataio.WriteDataset(w, ds, format)
	}, fmt.Sprintf("Wrote %s dataset", format))
}
