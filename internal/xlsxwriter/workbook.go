// =============================================================================
// TSV to XLSX Converter - XLSX Workbook Writer
// =============================================================================
//
// This module writes rows of string values into a single-sheet XLSX
// workbook using the excelize stream writer.
//
// WRITE STRATEGY:
//   - Create checks that the target is writable before any row is accepted
//   - A symlinked target is resolved, so the file it points to is replaced
//   - Rows are streamed, so excelize spills large sheets to disk
//   - Close saves into a temporary file next to the target and renames it
//     into place, so a failed run never leaves a truncated workbook and
//     never clobbers an existing one
//   - An existing target keeps its permissions; a new one gets 0666 minus
//     the umask, as os.Create would give it
//   - Text that a workbook cannot hold unchanged is rejected, never altered
//   - The workbook is finalized exactly once
//
// =============================================================================

package xlsxwriter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/config"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrFinalized is returned when a workbook is used after Close or Abort.
	ErrFinalized = errors.New("workbook already finalized")

	// ErrInvalidSheetName wraps excelize's sheet name validation errors.
	ErrInvalidSheetName = errors.New("invalid sheet name")

	// ErrUnsupportedText is returned by WriteRow for a field the workbook
	// cannot store verbatim: invalid UTF-8, characters outside the XML 1.0
	// range (most C0 controls) or more than excelize.TotalCellChars UTF-16
	// units.
	ErrUnsupportedText = errors.New("field cannot be stored in a workbook cell")
)

// Options configures a new workbook.
type Options struct {
	// SheetName is the name of the only worksheet. Empty means "Sheet1".
	SheetName string
}

// Workbook is an XLSX file being written row by row.
type Workbook struct {
	path     string
	target   string
	sheet    string
	file     *excelize.File
	stream   *excelize.StreamWriter
	tmp      *os.File
	perm     os.FileMode
	keepPerm bool
	rows     int
	done     bool
}

// Create prepares a workbook that will be saved at path.
//
// PARAMETERS:
//   - path: The destination file. It is created or overwritten by Close.
//   - opts: Workbook options.
//
// RETURNS:
//   - A Workbook ready for WriteRow.
//   - An error if the destination is not writable or the sheet name is
//     rejected by excelize.
func Create(path string, opts Options) (*Workbook, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = config.DefaultSheetName
	}

	wb := &Workbook{path: path, sheet: sheet}
	if err := wb.init(); err != nil {
		wb.Abort()
		return nil, err
	}

	if err := wb.prepareTarget(); err != nil {
		wb.Abort()
		return nil, err
	}

	// The temporary file doubles as the writability check for the target
	// directory. O_EXCL with 0666 lets the umask decide the mode of a new
	// output.
	tmpName := filepath.Join(filepath.Dir(wb.target),
		"."+filepath.Base(wb.target)+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		wb.Abort()
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	wb.tmp = tmp

	return wb, nil
}

// prepareTarget resolves symlinks in the output path and checks that an
// existing output can be overwritten.
func (w *Workbook) prepareTarget() error {
	w.target = w.path

	resolved, err := filepath.EvalSymlinks(w.path)
	if errors.Is(err, os.ErrNotExist) {
		// Nothing there yet, or the parent directory is missing; the
		// temporary file reports the latter.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	w.target = resolved

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("failed to stat output file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("output path %s is a directory", w.path)
	}

	f, err := os.OpenFile(resolved, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("output file is not writable: %w", err)
	}
	f.Close()

	w.perm = info.Mode().Perm()
	w.keepPerm = true
	return nil
}

// init creates the excelize file with one sheet named w.sheet.
func (w *Workbook) init() error {
	w.file = excelize.NewFile()

	defaultSheet := w.file.GetSheetName(0)
	if w.sheet != defaultSheet {
		if err := w.file.SetSheetName(defaultSheet, w.sheet); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidSheetName, w.sheet, err)
		}
	}

	stream, err := w.file.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	w.stream = stream

	return nil
}

// WriteRow appends the next row, starting at column A. Every field is stored
// as a string cell. A row with no fields is left empty but still consumes a
// row index. A field that cannot be stored verbatim fails with
// ErrUnsupportedText and nothing of the row is written.
func (w *Workbook) WriteRow(fields []string) error {
	if w.done {
		return ErrFinalized
	}

	w.rows++
	if len(fields) == 0 {
		return nil
	}

	for i, field := range fields {
		if err := checkCellText(field); err != nil {
			return fmt.Errorf("row %d, column %d: %w", w.rows, i+1, err)
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, w.rows)
	if err != nil {
		return fmt.Errorf("row %d: %w", w.rows, err)
	}

	values := make([]interface{}, len(fields))
	for i, field := range fields {
		values[i] = field
	}

	if err := w.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.rows, err)
	}

	return nil
}

// checkCellText reports text that excelize would store altered: invalid
// UTF-8 and non-XML characters become U+FFFD, long text is truncated.
func checkCellText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: invalid UTF-8", ErrUnsupportedText)
	}

	units := 0
	for _, r := range text {
		if !isXMLChar(r) {
			return fmt.Errorf("%w: character %U", ErrUnsupportedText, r)
		}
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		}
	}
	if units > excelize.TotalCellChars {
		return fmt.Errorf("%w: %d characters, the limit is %d",
			ErrUnsupportedText, units, excelize.TotalCellChars)
	}

	return nil
}

// isXMLChar matches the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// Rows returns the number of rows written so far.
func (w *Workbook) Rows() int {
	return w.rows
}

// Path returns the destination path as given to Create, before symlinks are
// resolved.
func (w *Workbook) Path() string {
	return w.path
}

// SheetName returns the name of the worksheet.
func (w *Workbook) SheetName() string {
	return w.sheet
}

// Close finalizes the workbook and moves it onto the destination path.
// On failure the destination is left as it was.
func (w *Workbook) Close() error {
	if w.done {
		return ErrFinalized
	}

	if err := w.save(); err != nil {
		w.Abort()
		return err
	}

	w.done = true
	return nil
}

func (w *Workbook) save() error {
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}

	if err := w.file.Write(w.tmp); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to release workbook: %w", err)
	}
	w.file = nil

	if w.keepPerm {
		if err := w.tmp.Chmod(w.perm); err != nil {
			return fmt.Errorf("failed to set output permissions: %w", err)
		}
	}
	if err := w.tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := w.tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(w.tmp.Name(), w.target); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	w.tmp = nil

	return nil
}

// Abort discards everything written so far. It is safe to call after Close,
// which makes it suitable for a deferred cleanup.
func (w *Workbook) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	var errs []error
	if w.file != nil {
		errs = append(errs, w.file.Close())
		w.file = nil
	}
	if w.tmp != nil {
		// Close may already have happened in save; the error is irrelevant.
		w.tmp.Close()
		if err := os.Remove(w.tmp.Name()); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
		w.tmp = nil
	}

	return errors.Join(errs...)
}
