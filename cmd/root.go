// =============================================================================
// TSV to XLSX Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the flags shared
// by every subcommand.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── convertCmd (converter convert INPUT [OUTPUT])
//   ├── processCmd (converter process)
//   ├── inspectCmd (converter inspect WORKBOOK)
//   └── versionCmd (converter version)
//
// CONFIGURATION PRECEDENCE:
//   command-line flags > config file > built-in defaults
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// logLevel and logFormat override the config file logging settings.
var (
	logLevel  string
	logFormat string
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "TSV to XLSX Converter - Copy tab-separated files into Excel workbooks",
	Long: `TSV to XLSX Converter reads tab-separated text files and writes every line
as a row of a single-sheet XLSX workbook. Fields are copied verbatim as text:
no quoting, trimming or type conversion is applied.

Example Usage:
  converter convert data.tsv                 # Writes data.xlsx
  converter convert data.tsv out/report.xlsx # Explicit output path
  converter process --config ./config.yaml   # Convert every file in input_dir
  converter inspect data.xlsx                # Print a workbook as TSV`,

	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI with os.Args. It is called by main.main() and exits
// the process with status 1 on any error.
func Execute() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the command tree against explicit arguments and writers.
func execute(args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration file. The default config.yaml is
// optional; a file named explicitly with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(cfgFile)
	}
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	return cfg, nil
}

// newLogger builds the command logger. Logs go to stderr so stdout stays
// clean for command output.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (optional unless set explicitly)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"Log level: debug, info, warn, error (overrides config)",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides config)",
	)
}
