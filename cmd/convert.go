// =============================================================================
// TSV to XLSX Converter - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   converter convert INPUT [OUTPUT] [flags]
//
// OUTPUT defaults to INPUT with its extension replaced by ".xlsx". An
// existing OUTPUT is overwritten, but only once the new workbook has been
// written completely.
//
// FLAGS:
//   --sheet     : Worksheet name (default from config, "Sheet1")
//   --encoding  : Input encoding (default from config, "UTF-8")
//   --verify    : Read the workbook back and compare it with the input
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/converter"
	"github.com/spf13/cobra"
)

var (
	sheetName    string
	encodingName string
	verifyOutput bool
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert INPUT [OUTPUT]",
	Short: "Convert one TSV file into an XLSX workbook",
	Long: `Convert copies every line of a tab-separated file into a row of a
single-sheet XLSX workbook, in order. Line i, field j lands in row i+1,
column j+1 as a text cell.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&sheetName, "sheet", "", "Worksheet name")
	convertCmd.Flags().StringVar(&encodingName, "encoding", "", "Input encoding: UTF-8, UTF-8-BOM, ISO-8859-1, Windows-1252")
	convertCmd.Flags().BoolVar(&verifyOutput, "verify", false, "Read the workbook back and compare it with the input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sheetName != "" {
		cfg.Workbook.SheetName = sheetName
	}
	if encodingName != "" {
		cfg.TSVSettings.Encoding = encodingName
	}

	logger := newLogger(cmd, cfg)
	opts := converter.OptionsFromConfig(cfg, logger)

	inputPath := args[0]
	outputPath := defaultOutputPath(inputPath)
	if len(args) == 2 {
		outputPath = args[1]
	}

	result, err := converter.New(inputPath, outputPath, opts).Run()
	if err != nil {
		return err
	}

	if verifyOutput {
		if err := converter.Verify(inputPath, outputPath, opts); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Workbook verified", "output", outputPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d rows)\n",
		inputPath, outputPath, result.Stats.RowsWritten)

	return nil
}

// defaultOutputPath derives the workbook path from the input path.
func defaultOutputPath(inputPath string) string {
	output := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".xlsx"
	if output == inputPath {
		output += ".xlsx"
	}
	return output
}
