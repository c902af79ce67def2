package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/timelapse/schema"
)

// Color variables for console output.
var (
	MorningColor   = color.New(color.FgYellow, color.Bold) // MorningColor marks early work.
	AfternoonColor = color.New(color.FgGreen)              // AfternoonColor marks daytime work.
	EveningColor   = color.New(color.FgMagenta)            // EveningColor marks late work.
	NightColor     = color.New(color.FgBlue, color.Bold)   // NightColor marks overnight work.
	HeadingColor   = color.New(color.FgCyan, color.Bold)   // HeadingColor marks section headings.
)

// GetColorBucket returns a colored time bucket label for console output (table).
// An empty bucket renders as "-".
func GetColorBucket(bucket schema.TimeBucket) string {
	switch bucket {
	case schema.Morning:
		return MorningColor.Sprint(bucket)
	case schema.Afternoon:
		return AfternoonColor.Sprint(bucket)
	case schema.Evening:
		return EveningColor.Sprint(bucket)
	case schema.Night:
		return NightColor.Sprint(bucket)
	default:
		return "-"
	}
}

// GetPlainBucket returns the plain time bucket label, or "-" when empty.
func GetPlainBucket(bucket schema.TimeBucket) string {
	if bucket == "" {
		return "-"
	}
	return string(bucket)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
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

// GetCacheDBFilePath returns the path to the SQLite DB file for parse cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timelapse_cache.db"
	}
	return filepath.Join(homeDir, ".timelapse_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timelapse_runs.db"
	}
	return filepath.Join(homeDir, ".timelapse_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
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
