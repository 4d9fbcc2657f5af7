package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Words"))
	require.NoError(t, f.SetSheetRow("Words", "A1", &[]interface{}{"lang", "score"}))
	require.NoError(t, f.SetSheetRow("Words", "A2", &[]interface{}{"en", "0.75"}))
	require.NoError(t, f.SetCellValue("Words", "A4", "tail"))

	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))

	sheet, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "Words", sheet.Name)
	require.Equal(t, path, sheet.SourceFile)
	require.Len(t, sheet.Rows, 4)
	require.Equal(t, []string{"lang\tscore", "en\t0.75", "", "tail"}, sheet.Lines())

	require.Equal(t, "0.75", sheet.Cell(1, 1))
	require.Equal(t, "", sheet.Cell(2, 0))
	require.Equal(t, "", sheet.Cell(0, 5))
	require.Equal(t, "", sheet.Cell(-1, 0))
}

func TestSheetCount(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("Second")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "two.xlsx")
	require.NoError(t, f.SaveAs(path))

	count, err := SheetCount(path)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.ErrorContains(t, err, "failed to open workbook")
}
