// =============================================================================
// SAP Scripts Generator - Record Normalizer
// =============================================================================
//
// This module turns the raw rows of a reservation sheet into typed records.
//
// NORMALIZATION STEPS:
//   1. Check the raw table against the schema (fatal on mismatch)
//   2. Skip the header rows
//   3. Keep only rows whose status cell equals "PENDIENTE" exactly
//   4. Title-case the request type and derive the operation
//      (status and request type are compared as stored; stray spaces are
//      removed with a "trim" cleanup rule, not here)
//   5. Coerce numeric columns (material, quantity, position, movement);
//      anything non-numeric becomes 0
//   6. Render the storage code as a 4-digit zero padded numeral
//
// The raw table is never modified; records are new values.
//
// =============================================================================

package normalizer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/csvparser"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/validation"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/xlsxparser"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PendingStatus is the status a row must carry to be processed.
const PendingStatus = "PENDIENTE"

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer converts raw tables into records. A Normalizer holds a
// stateful caser and must not be shared between goroutines.
type Normalizer struct {
	caser cases.Caser
}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{
		caser: cases.Title(language.Und),
	}
}

// LoadXLSX reads the schema's sheet from a workbook and normalizes it.
func (n *Normalizer) LoadXLSX(r io.Reader, schema *types.Schema) ([]types.Record, error) {
	table, err := ReadXLSX(r, schema)
	if err != nil {
		return nil, err
	}
	return n.Normalize(table, schema)
}

// LoadCSV reads a CSV export of the schema's sheet and normalizes it.
func (n *Normalizer) LoadCSV(r io.Reader, schema *types.Schema, settings csvparser.Settings) ([]types.Record, error) {
	table, err := ReadCSV(r, schema, settings)
	if err != nil {
		return nil, err
	}
	return n.Normalize(table, schema)
}

// ReadXLSX reads the schema's sheet. A missing sheet is a schema error.
func ReadXLSX(r io.Reader, schema *types.Schema) (*types.RawTable, error) {
	table, err := xlsxparser.Read(r, schema.Sheet)
	if err != nil {
		var missing *xlsxparser.ErrSheetNotFound
		if errors.As(err, &missing) {
			return nil, validation.SheetMissing(schema, missing.Available)
		}
		return nil, err
	}
	return table, nil
}

// ReadCSV reads a CSV export standing in for the schema's sheet.
func ReadCSV(r io.Reader, schema *types.Schema, settings csvparser.Settings) (*types.RawTable, error) {
	if settings.Sheet == "" {
		settings.Sheet = schema.Sheet
	}
	return csvparser.Read(r, settings)
}

// Normalize converts a raw table to pending records.
//
// PARAMETERS:
//   - table: The raw rows, header rows included.
//   - schema: The positional layout of the file kind.
//
// RETURNS:
//   - The pending records in sheet order (possibly empty).
//   - *validation.SchemaError if the table does not match the schema.
func (n *Normalizer) Normalize(table *types.RawTable, schema *types.Schema) ([]types.Record, error) {
	if table == nil {
		return nil, fmt.Errorf("failed to normalize: nil table")
	}
	if err := validation.CheckSchema(schema, table, requiredColumns(schema)); err != nil {
		return nil, err
	}

	cols := resolveColumns(schema)
	records := make([]types.Record, 0, len(table.Rows))

	for i := schema.HeaderRows; i < len(table.Rows); i++ {
		row := table.Rows[i]
		status := rawCell(row, schema.StatusColumn)
		if status != PendingStatus {
			continue
		}

		requestType := n.caser.String(rawCell(row, cols.requestType))
		records = append(records, types.Record{
			Row:            i + 1,
			TransactionKey: cell(row, cols.key),
			OrderCode:      cell(row, cols.po),
			RequestCode:    cell(row, cols.svr),
			Operation:      types.ParseOperation(requestType),
			RequestType:    requestType,
			MovementCode:   strconv.Itoa(CoerceInt(cell(row, cols.movement))),
			SecondaryID:    cell(row, cols.ip),
			ContextCode:    cell(row, cols.eecc),
			ReservationID:  Identifier(cell(row, cols.vr)),
			MaterialCode:   CoerceInt(cell(row, cols.material)),
			Quantity:       CoerceInt(cell(row, cols.quantity)),
			Position:       CoerceInt(cell(row, cols.position)),
			StorageCode:    PadStorage(CoerceInt(cell(row, cols.storage))),
			CostElement:    cell(row, cols.costElement),
			Status:         status,
		})
	}

	return records, nil
}

// =============================================================================
// COERCION
// =============================================================================

// CoerceInt parses a numeric cell and truncates it to an integer.
// Empty, non-numeric or out of range values coerce to 0; this is not an
// error.
func CoerceInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	n := d.BigInt()
	if n.Cmp(minInt) < 0 || n.Cmp(maxInt) > 0 {
		return 0
	}
	return int(n.Int64())
}

var (
	minInt = big.NewInt(math.MinInt)
	maxInt = big.NewInt(math.MaxInt)
)

// Identifier renders an identifier cell. Integral numbers lose any decimal
// notation ("1234567.0" -> "1234567"); other text is kept as is.
func Identifier(value string) string {
	value = strings.TrimSpace(value)
	d, err := decimal.NewFromString(value)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return value
	}
	return d.String()
}

// PadStorage renders a storage code as a zero padded 4-digit numeral.
// Codes wider than four digits are kept whole.
func PadStorage(code int) string {
	return fmt.Sprintf("%04d", code)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// columnIndexes caches the schema positions read for every row.
// Optional columns absent from the schema resolve to -1.
type columnIndexes struct {
	key, po, svr, requestType, movement   int
	material, quantity, storage, position int
	costElement, ip, eecc, vr             int
}

func resolveColumns(schema *types.Schema) columnIndexes {
	return columnIndexes{
		key:         schema.Index(schema.KeyColumn),
		po:          schema.Index(ColumnPO),
		svr:         schema.Index(ColumnSVR),
		requestType: schema.Index(ColumnRequestType),
		movement:    schema.Index(ColumnMovement),
		material:    schema.Index(ColumnMaterial),
		quantity:    schema.Index(ColumnQuantity),
		storage:     schema.Index(ColumnStorage),
		position:    schema.Index(ColumnPosition),
		costElement: schema.Index(ColumnCostElement),
		ip:          schema.Index(ColumnIP),
		eecc:        schema.Index(ColumnEECC),
		vr:          schema.Index(ColumnVR),
	}
}

// cell safely returns the trimmed cell at index, or "" when out of range.
func cell(row []string, index int) string {
	return strings.TrimSpace(rawCell(row, index))
}

// rawCell returns the cell at index as stored, or "" when out of range.
func rawCell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return row[index]
	}
	return ""
}
