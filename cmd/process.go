// =============================================================================
// TSV to XLSX Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every TSV file in
// the configured input directory.
//
// COMMAND USAGE:
//   converter process [flags]
//
// FLAGS:
//   --dry-run : List what would be converted without writing anything
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover input files (input_dir / input_pattern)
//   3. For each file, in name order:
//      a. Convert it into output_dir using output_name_format
//      b. Archive the input on success
//   4. Write a processing summary into output_dir
//
// Files are converted one after another. A failed file does not stop the
// run, but the command exits non-zero if any file failed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/converter"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/pkg/utils"
	"github.com/spf13/cobra"
)

// dryRun lists planned conversions without writing output files.
var dryRun bool

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every TSV file in the input directory",
	Long: `The process command scans input_dir for files matching input_pattern and
converts each one into a workbook in output_dir.

On success:
  - The workbook is placed in the output directory
  - The input file is moved to the input archive (archive_on_success)

On error:
  - The input file remains in the input directory
  - Processing continues with the next file
  - The command exits with a non-zero status

A processing summary is written to the output directory after every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List planned conversions without writing output files",
	)
}

// runProcess orchestrates a batch run.
func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	okMark := color.New(color.FgGreen).SprintFunc()
	failMark := color.New(color.FgRed).SprintFunc()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	opts := converter.OptionsFromConfig(cfg, logger)

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveEnabled() && !dryRun
	fm.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs

	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles(cfg.InputPattern)
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No files matching %s found in %s\n", cfg.InputPattern, cfg.InputDir)
		return nil
	}

	logger.Info("Discovered input files", "count", len(inputFiles), "dir", cfg.InputDir)

	// =========================================================================
	// STEP 3: CONVERT FILES
	// =========================================================================

	summary := utils.ProcessingSummary{StartTime: time.Now()}

	for _, inputPath := range inputFiles {
		outputPath := filepath.Join(cfg.OutputDir, utils.GenerateOutputFileName(cfg.OutputNameFormat, inputPath))

		if dryRun {
			fmt.Fprintf(out, "  - %s -> %s\n", filepath.Base(inputPath), outputPath)
			continue
		}

		result, err := converter.New(inputPath, outputPath, opts).Run()
		if err != nil {
			summary.AddFailure(inputPath, err)
			logger.Error("Conversion failed", "input", inputPath, "error", err)
			fmt.Fprintf(out, "  %s %s: %v\n", failMark("✗"), filepath.Base(inputPath), err)
			continue
		}

		archivePath, err := fm.ArchiveInputFile(inputPath)
		if err != nil {
			// The workbook is complete; a failed archive only leaves the input
			// in place for the next run.
			logger.Warn("Failed to archive input", "input", inputPath, "error", err)
			archivePath = ""
		}

		summary.AddSuccess(utils.ProcessedFileInfo{
			InputFile:   inputPath,
			OutputFile:  result.OutputFile,
			ArchivePath: archivePath,
			Rows:        result.Stats.RowsWritten,
			ProcessTime: result.Stats.ProcessingTime,
		})
		fmt.Fprintf(out, "  %s %s -> %s\n", okMark("✓"), filepath.Base(inputPath), result.OutputFile)
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d file(s) would be converted\n", len(inputFiles))
		return nil
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		logger.Warn("Failed to write summary", "error", err)
	} else {
		logger.Debug("Wrote summary", "path", summaryPath)
	}

	fmt.Fprintf(out, "\nTotal files: %d  Successful: %d  Failed: %d  Rows: %d  Time: %s\n",
		summary.TotalFiles, summary.SuccessfulFiles, summary.FailedFiles, summary.TotalRows,
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed to convert", summary.FailedFiles, summary.TotalFiles)
	}

	return nil
}
