package cmd

import (
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/dendro/schema"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dendro.",
	Long: `Display version information, build details and the supported file formats
and run history backends.

Include this output when reporting a bug.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("dendro CLI\n")
		cmd.Printf("  Version:  %s\n", version)
		cmd.Printf("  Commit:   %s\n", commit)
		cmd.Printf("  Built:    %s\n", date)
		cmd.Printf("  Runtime:  %s\n", runtime.Version())
		cmd.Printf("  Formats:  %s\n", joinKeys(schema.ValidDataFormats))
		cmd.Printf("  Backends: %s\n", joinKeys(schema.ValidDatabaseBackends))
	},
}

// joinKeys lists the keys of a lookup set in sorted order.
func joinKeys[K ~string](set map[K]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, string(k))
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
