// =============================================================================
// SAP Scripts Generator - XLSX Sheet Reader
// =============================================================================
//
// This module reads the raw rows of a single worksheet from an uploaded
// workbook. It does not interpret the rows: positional column names, status
// filtering and type coercion belong to the normalizer.
//
// Cells are returned as stored, not as displayed: a quantity formatted
// "#,##0" reads "1500", not "1,500". Whitespace is kept.
//
// SHEET STRUCTURE:
//   Row 1 holds human headers and is skipped by the normalizer. Every other
//   row is a reservation request line. Columns are positional; the schema
//   descriptor in the normalizer names them.
//
//   | Column A | Column B | Column C  | ... | Column Q |
//   |----------|----------|-----------|-----|----------|
//   | PO       | EECC     | Localidad | ... | ESTADO   |
//   | 2025-1   | COBRA    | LIMA      | ... | PENDIENTE|
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSheetNotFound is returned when the requested sheet does not exist.
type ErrSheetNotFound struct {
	Sheet     string
	Available []string
}

func (e *ErrSheetNotFound) Error() string {
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read loads the named sheet from an xlsx byte stream.
//
// PARAMETERS:
//   - r: The workbook bytes (an uploaded file or an opened file).
//   - sheet: The sheet to read. If empty, the first sheet is used.
//
// RETURNS:
//   - The raw rows of the sheet.
//   - *ErrSheetNotFound if the sheet is absent, or a read error.
func Read(r io.Reader, sheet string) (*types.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// readSheet extracts the rows of one sheet from an open workbook.
func readSheet(f *excelize.File, sheet string) (*types.RawTable, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil || index < 0 {
		return nil, &ErrSheetNotFound{Sheet: sheet, Available: f.GetSheetList()}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return &types.RawTable{Sheet: sheet, Rows: rows}, nil
}
