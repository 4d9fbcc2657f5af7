// =============================================================================
// TSV to XLSX Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic: one linear pass that
// copies every line of a tab-separated file into a row of a single-sheet
// workbook.
//
// CONVERSION PIPELINE:
//   1. Open the input TSV file (nothing is written if this fails)
//   2. Create the output workbook (checks the target is writable)
//   3. Copy each record into the next worksheet row, in input order
//   4. Finalize the workbook and move it onto the output path
//
// GUARANTEES:
//   - Row i, column j holds field j of line i (both zero-based), verbatim
//   - The workbook has exactly one worksheet
//   - A failure never leaves a partial workbook at the output path
//   - Input and workbook are released on every exit path
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/logging"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/tsvparser"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/xlsxparser"
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/xlsxwriter"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// InputFile is the path to the TSV file that was read.
	InputFile string

	// OutputFile is the path to the generated workbook.
	OutputFile string

	// SheetName is the name of the worksheet that was written.
	SheetName string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the conversion.
type ProcessingStats struct {
	// RowsWritten is the number of input lines copied into the worksheet.
	RowsWritten int

	// MaxColumns is the field count of the widest line.
	MaxColumns int

	// ProcessingTime is the time taken to convert the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options controls a conversion.
type Options struct {
	// SheetName names the worksheet. Empty means "Sheet1".
	SheetName string

	// Encoding is the input character encoding. Empty means UTF-8.
	Encoding string

	// Logger receives progress messages. Nil discards them.
	Logger *slog.Logger
}

// OptionsFromConfig builds conversion options from the application config.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		SheetName: cfg.Workbook.SheetName,
		Encoding:  cfg.TSVSettings.Encoding,
		Logger:    logger,
	}
}

// Converter converts one TSV file into one workbook.
type Converter struct {
	inputPath  string
	outputPath string
	opts       Options
	logger     *slog.Logger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The TSV file to read.
//   - outputPath: The workbook to create or overwrite.
//   - opts: Conversion options.
func New(inputPath, outputPath string, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Converter{
		inputPath:  inputPath,
		outputPath: outputPath,
		opts:       opts,
		logger:     logger,
	}
}

// Convert converts inputPath into outputPath with default options.
func Convert(inputPath, outputPath string) error {
	_, err := New(inputPath, outputPath, Options{}).Run()
	return err
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion.
//
// RETURNS:
//   - A Result describing what was written.
//   - A *FileAccessError if the input cannot be read or the output cannot be
//     written; other errors for invalid options, input that is not valid in
//     its encoding, and fields a workbook cannot hold verbatim
//     (xlsxwriter.ErrUnsupportedText).
func (c *Converter) Run() (Result, error) {
	startTime := time.Now()
	result := Result{
		InputFile:  c.inputPath,
		OutputFile: c.outputPath,
	}

	log := c.logger.With("input", c.inputPath, "output", c.outputPath)
	log.Debug("Starting conversion")

	if err := tsvparser.CheckEncoding(c.opts.Encoding); err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 1: OPEN INPUT
	// =========================================================================

	reader, err := tsvparser.Open(c.inputPath, config.TSVSettings{Encoding: c.opts.Encoding})
	if err != nil {
		return result, newFileAccessError("open input", c.inputPath, err)
	}
	defer reader.Close()

	// =========================================================================
	// STEP 2: CREATE WORKBOOK
	// =========================================================================

	wb, err := xlsxwriter.Create(c.outputPath, xlsxwriter.Options{SheetName: c.opts.SheetName})
	if err != nil {
		if errors.Is(err, xlsxwriter.ErrInvalidSheetName) {
			return result, err
		}
		return result, newFileAccessError("create output", c.outputPath, err)
	}
	defer wb.Abort()

	result.SheetName = wb.SheetName()

	// =========================================================================
	// STEP 3: COPY RECORDS
	// =========================================================================

	for reader.Next() {
		record := reader.Record()
		if err := wb.WriteRow(record); err != nil {
			return result, fmt.Errorf("failed to write line %d: %w", reader.Line(), err)
		}
		if len(record) > result.Stats.MaxColumns {
			result.Stats.MaxColumns = len(record)
		}
	}

	if err := reader.Err(); err != nil {
		if errors.Is(err, tsvparser.ErrInvalidUTF8) {
			return result, fmt.Errorf("%w; set the input encoding (--encoding or tsv_settings.encoding)", err)
		}
		return result, newFileAccessError("read input", c.inputPath, err)
	}

	log.Debug("Copied records", "rows", wb.Rows(), "max_columns", result.Stats.MaxColumns)

	// =========================================================================
	// STEP 4: FINALIZE
	// =========================================================================

	if err := wb.Close(); err != nil {
		return result, newFileAccessError("write output", c.outputPath, err)
	}

	result.Stats.RowsWritten = wb.Rows()
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info("Converted file",
		"rows", result.Stats.RowsWritten,
		"sheet", result.SheetName,
		"duration", result.Stats.ProcessingTime,
	)

	return result, nil
}

// =============================================================================
// VERIFICATION
// =============================================================================

// Verify reads the input file and the workbook back and checks that every
// worksheet row equals the corresponding input record.
//
// Trailing empty fields and trailing empty lines are ignored, because a
// worksheet does not record empty cells at the end of a row or empty rows at
// the end of a sheet.
//
// RETURNS:
//   - nil if the workbook matches.
//   - An error wrapping ErrRowMismatch naming the first differing row.
//   - A *FileAccessError if either file cannot be read.
func Verify(inputPath, outputPath string, opts Options) error {
	data, err := tsvparser.ReadAll(inputPath, config.TSVSettings{Encoding: opts.Encoding})
	if err != nil {
		return newFileAccessError("read input", inputPath, err)
	}

	sheet, err := xlsxparser.Parse(outputPath)
	if err != nil {
		return newFileAccessError("read output", outputPath, err)
	}

	expected := trimTrailingEmptyRows(data.Records)
	actual := make([]tsvparser.Record, len(sheet.Rows))
	for i, row := range sheet.Rows {
		actual[i] = row
	}
	actual = trimTrailingEmptyRows(actual)

	for i := 0; i < len(expected) || i < len(actual); i++ {
		var want, got tsvparser.Record
		if i < len(expected) {
			want = expected[i]
		}
		if i < len(actual) {
			got = actual[i]
		}
		if !slices.Equal(trimTrailingEmptyFields(want), trimTrailingEmptyFields(got)) {
			return fmt.Errorf("%w: row %d: expected %q, got %q",
				ErrRowMismatch, i, tsvparser.Join(want), tsvparser.Join(got))
		}
	}

	return nil
}

// trimTrailingEmptyFields drops empty fields at the end of a record.
func trimTrailingEmptyFields(record tsvparser.Record) tsvparser.Record {
	end := len(record)
	for end > 0 && record[end-1] == "" {
		end--
	}
	return record[:end]
}

// trimTrailingEmptyRows drops records at the end that hold no values.
func trimTrailingEmptyRows(records []tsvparser.Record) []tsvparser.Record {
	end := len(records)
	for end > 0 && len(trimTrailingEmptyFields(records[end-1])) == 0 {
		end--
	}
	return records[:end]
}
