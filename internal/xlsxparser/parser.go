// =============================================================================
// Wide-to-Long Normalizer - XLSX Reader Module
// =============================================================================
//
// This module reads a wide worksheet from an .xlsx workbook into the same row
// grid the CSV reader produces, so the analyzer and transformer can treat
// both sources identically.
//
// NUMERIC CELLS:
//   Workbooks store numbers in machine notation ("1250.5"). The reader renders
//   such raw numeric cells in European notation ("1250,5") so the Number
//   Parser applies unchanged. Text cells ("1.250.000") are passed through.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReadRows opens a workbook and returns the rows of a worksheet.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The rows as string slices.
//   - An error if the workbook or sheet cannot be read.
func ReadRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// Read reads a workbook from r and returns the rows of a worksheet.
func Read(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("failed to read type of cell %s: %w", name, err)
			}
			// Numeric cells carry no type attribute or an explicit "n".
			if cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset {
				row[c] = europeanize(cell)
			}
		}
	}
	return rows, nil
}

// europeanize renders a machine-notation number with a decimal comma.
// Anything that is not a plain number is returned unchanged.
func europeanize(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return cell
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return cell
	}
	return strings.Replace(d.String(), ".", ",", 1)
}
