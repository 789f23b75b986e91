package contract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Correlation label constants.
const (
	StrongValue        = "Strong"         // Strong agreement with the reference
	AdequateValue      = "Adequate"       // Adequate agreement
	WeakValue          = "Weak"           // Significant but weak agreement
	BelowCriticalValue = "Below critical" // Not significant at the chosen p-value
	NoValue            = "n/a"            // No overlap with the reference
)

// Correlation thresholds for the labels above critical.
const (
	StrongThreshold   = 0.6
	AdequateThreshold = 0.4
)

// Color variables for console output.
var (
	StrongColor        = color.New(color.FgGreen, color.Bold) // StrongColor represents a confident match.
	AdequateColor      = color.New(color.FgCyan)              // AdequateColor represents a usable match.
	WeakColor          = color.New(color.FgYellow)            // WeakColor represents standard caution, not bold.
	BelowCriticalColor = color.New(color.FgRed, color.Bold)   // BelowCriticalColor represents standard danger.
)

// GetPlainLabel returns a plain text label grading a correlation against the
// critical value of its test. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(r, critical float64) string {
	switch {
	case math.IsNaN(r):
		return NoValue
	case r < critical:
		return BelowCriticalValue
	case r >= StrongThreshold:
		return StrongValue
	case r >= AdequateThreshold:
		return AdequateValue
	default:
		return WeakValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(r, critical float64) string {
	text := GetPlainLabel(r, critical)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case AdequateValue:
		return AdequateColor.Sprint(text)
	case WeakValue:
		return WeakColor.Sprint(text)
	case BelowCriticalValue:
		return BelowCriticalColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".dendro_runs.db"
	}
	return filepath.Join(homeDir, ".dendro_runs.db")
}

// TruncateName truncates a series name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
