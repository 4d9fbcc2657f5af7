// =============================================================================
// TSV to XLSX Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and fills
// in defaults for every option the file leaves out. A missing configuration
// file is not an error for single-file conversion: the built-in defaults are
// enough to convert one TSV file into one workbook.
//
// CONFIGURATION FILE (config.yaml):
//   input_dir: ./input
//   output_dir: ./output
//   input_archive_dir: ./input_archive
//   input_pattern: "*.tsv"
//   output_name_format: "{original}.xlsx"
//   archive_on_success: true
//   archive_timestamp_subdirs: false
//   log_level: info
//   log_format: text
//   tsv_settings:
//     encoding: UTF-8
//   workbook:
//     sheet_name: Sheet1
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSheetName is the name of the single worksheet written to every
// workbook unless configured otherwise.
const DefaultSheetName = "Sheet1"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS (batch processing)
	// =========================================================================

	// InputDir is scanned by the 'process' command for TSV files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated workbooks.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// InputPattern is the glob used to discover input files.
	// Default: "*.tsv"
	InputPattern string `yaml:"input_pattern"`

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "{original}.xlsx"
	OutputNameFormat string `yaml:"output_name_format"`

	// ArchiveOnSuccess moves converted inputs into InputArchiveDir.
	// A nil value means the option was absent; the default is true.
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// ArchiveTimestampSubdirs archives into YYYY/MM/DD subdirectories of
	// InputArchiveDir. Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel: "debug", "info", "warn" or "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat: "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// CONVERSION SETTINGS
	// =========================================================================

	TSVSettings TSVSettings    `yaml:"tsv_settings"`
	Workbook    WorkbookConfig `yaml:"workbook"`
}

// TSVSettings contains settings for reading the tab-delimited input.
// The delimiter itself is fixed: fields are always split on a single tab and
// no quoting is interpreted.
type TSVSettings struct {
	// Encoding is the character encoding of the input file.
	// Supported: "UTF-8", "UTF-8-BOM", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// WorkbookConfig contains settings for the output workbook.
type WorkbookConfig struct {
	// SheetName is the name of the single worksheet.
	// Default: "Sheet1"
	SheetName string `yaml:"sheet_name"`
}

// ArchiveEnabled reports whether converted inputs should be archived.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, except that a configuration file which does
// not exist yields the built-in defaults instead of an error.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML configuration data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.InputPattern == "" {
		cfg.InputPattern = "*.tsv"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{original}.xlsx"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.TSVSettings.Encoding == "" {
		cfg.TSVSettings.Encoding = "UTF-8"
	}
	if cfg.Workbook.SheetName == "" {
		cfg.Workbook.SheetName = DefaultSheetName
	}
}

// Validate checks the option values that can be checked without touching
// the file system. Directories are created on demand by the commands that
// need them.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json' (got %q)", c.LogFormat)
	}

	if strings.ContainsAny(c.OutputNameFormat, `/\`) {
		return fmt.Errorf("output_name_format must be a file name, not a path: %q", c.OutputNameFormat)
	}

	return nil
}
