package outwriter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
)

// LogRunHeader prints a concise, 2-line header describing the dataset being analyzed.
func LogRunHeader(w io.Writer, command string, cfg *contract.Config, ds *schema.Dataset) {
	name := filepath.Base(cfg.InputPath)
	if name == "" || name == "." {
		name = "stdin"
	}

	// Line 1: The input and command
	_, _ = fmt.Fprintf(w, "🌲 Input: %s (Command: %s)\n", name, command)

	// Line 2: The span of years that carry data
	first, last, ok := ds.ValidRange()
	if !ok {
		_, _ = fmt.Fprintf(w, "📅 Span: empty (%d series)\n", len(ds.Series))
		return
	}
	_, _ = fmt.Fprintf(w, "📅 Span: %d → %d (%d series)\n", first, last, len(ds.Series))
}
