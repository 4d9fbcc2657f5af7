// =============================================================================
// TSV to XLSX Converter - XLSX Parser
// =============================================================================
//
// This module reads a workbook back into plain string rows. It is used to
// verify conversions (round trip against the source TSV) and by the
// 'inspect' command.
//
// READ SEMANTICS:
//   - Only the first worksheet is read
//   - Every cell is returned as its stored string value, no number parsing
//   - Rows follow excelize GetRows: trailing empty cells and trailing empty
//     rows are not returned, empty rows in the middle are returned as []
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET STRUCTURE
// =============================================================================

// Sheet is the content of one worksheet.
type Sheet struct {
	// SourceFile is the path to the workbook.
	SourceFile string

	// Name is the worksheet name.
	Name string

	// Rows holds the cell values, row-major.
	Rows [][]string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first worksheet of an XLSX file.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - A pointer to the Sheet.
//   - An error if the file cannot be opened or has no sheets.
func Parse(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return &Sheet{
		SourceFile: path,
		Name:       sheetName,
		Rows:       rows,
	}, nil
}

// SheetCount returns the number of worksheets in an XLSX file.
func SheetCount(path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.SheetCount, nil
}

// =============================================================================
// SHEET HELPERS
// =============================================================================

// Lines returns every row joined with tabs, the inverse of the conversion.
func (s *Sheet) Lines() []string {
	lines := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		lines[i] = strings.Join(row, "\t")
	}
	return lines
}

// Cell returns the value at a zero-based position, or "" if the position is
// outside the populated area.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}
