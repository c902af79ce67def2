package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultURLPrefix   = "https://github.com/vis-society/lab-7/commit/"
	DefaultInputFile   = "loc.csv"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ErrInvalidCursor is returned when a cursor specification cannot be parsed.
var ErrInvalidCursor = errors.New("invalid cursor")

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// CursorSpec is a user-provided cursor position, resolved against a corpus later.
// Exactly one of Progress, At or Relative is set when Set is true.
type CursorSpec struct {
	Set      bool
	Progress *float64
	At       time.Time
	Relative string // "N units ago", relative to the newest commit
}

// Config holds the runtime configuration for a replay.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string
	URLPrefix   string
	Cursor      CursorSpec
	Brush       *schema.Rect
	Step        int // narrative step to enter (-1 = none)
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Units       bool
	Strict      bool
	Verbose     bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Input          string `mapstructure:"input"`
	URLPrefix      string `mapstructure:"url-prefix"`
	At             string `mapstructure:"at"`
	OutputFile     string `mapstructure:"output-file"`
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Width          int    `mapstructure:"width"`
	Strict         bool   `mapstructure:"strict"`
	Verbose        bool   `mapstructure:"verbose"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from selectCmd.Flags() ---
	Brush string `mapstructure:"brush"`

	// --- Fields from filesCmd.Flags() ---
	Units bool `mapstructure:"units"`

	// --- Fields from narrativeCmd.Flags() ---
	Step int `mapstructure:"step"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Brush != nil {
		b := *c.Brush
		clone.Brush = &b
	}
	if c.Cursor.Progress != nil {
		p := *c.Cursor.Progress
		clone.Cursor.Progress = &p
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCursor(cfg, input); err != nil {
		return err
	}
	if err := processBrush(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		cfg.RunBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// Cache and runs must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runDBPath := cfg.RunDBConnect
		if runDBPath == "" {
			runDBPath = GetRunDBFilePath()
		}
		if cacheDBPath == runDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Strict = input.Strict
	cfg.Verbose = input.Verbose
	cfg.Units = input.Units
	cfg.Step = input.Step

	cfg.URLPrefix = input.URLPrefix
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 3. Narrative Step Validation ---
	if cfg.Step < -1 {
		return fmt.Errorf("step must be -1 (none) or a non-negative index (received %d)", cfg.Step)
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processCursor parses the --at flag into a cursor specification.
func processCursor(cfg *Config, input *ConfigRawInput) error {
	spec, err := ParseCursorSpec(input.At)
	if err != nil {
		return err
	}
	cfg.Cursor = spec
	return nil
}

// processBrush parses the --brush flag into a normalized rectangle.
func processBrush(cfg *Config, input *ConfigRawInput) error {
	cfg.Brush = nil
	if strings.TrimSpace(input.Brush) == "" {
		return nil
	}
	rect, err := ParseRect(input.Brush)
	if err != nil {
		return fmt.Errorf("invalid --brush value: %w", err)
	}
	cfg.Brush = &rect
	return nil
}

// ParseRect parses "x0,y0,x1,y1" into a normalized rectangle.
func ParseRect(s string) (schema.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return schema.Rect{}, fmt.Errorf("expected 'x0,y0,x1,y1', got %q", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return schema.Rect{}, fmt.Errorf("coordinate %d (%q): %w", i, p, err)
		}
		vals[i] = v
	}
	return schema.Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}.Normalize(), nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveInputPath resolves the input table from the positional argument, flag or default.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	path := input.InputPathStr
	if path == "" {
		path = input.Input
	}
	if path == "" {
		path = DefaultInputFile
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("input table %q is not accessible: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input table %q is a directory", path)
	}

	cfg.InputPath = absPath
	return nil
}
