package contract

import (
	"testing"
)

// FuzzDetectFormat fuzzes DetectFormat with random file names.
func FuzzDetectFormat(f *testing.F) {
	seeds := []string{"data.csv", "ca533.RWL", "noext", "", ".rwl", "dir.csv/file.txt"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, path string) {
		format, err := DetectFormat(path)
		if err == nil && format == "" {
			t.Errorf("DetectFormat(%q) returned an empty format without error", path)
		}
	})
}

// FuzzParseBoolString checks that every accepted value round-trips through its canonical form.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "No", "TRUE", "0", "maybe", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParseBoolString(s)
		if err != nil {
			return
		}
		canonical := "false"
		if v {
			canonical = "true"
		}
		again, err := ParseBoolString(canonical)
		if err != nil || again != v {
			t.Errorf("ParseBoolString(%q) = %v did not round-trip", s, v)
		}
	})
}
