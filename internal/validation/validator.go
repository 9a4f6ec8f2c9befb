// =============================================================================
// SAP Scripts Generator - Schema Validation
// =============================================================================
//
// This module checks that a raw table can be read with a schema before any
// record is produced. A schema mismatch is the only fatal condition of the
// normalization step: the whole input is rejected, no partial result.
//
// CHECKS:
//   1. The schema names every column the normalizer reads
//   2. The status column index points inside the schema
//   3. The header row is at least as wide as the schema
//
// Value-level problems (a non-numeric quantity, an empty cost element) are
// NOT validation errors: the normalizer coerces them.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Rule names the check that failed.
const (
	RuleSheet          = "sheet"
	RuleRequiredColumn = "required_column"
	RuleStatusColumn   = "status_column"
	RuleColumnCount    = "column_count"
)

// ValidationError represents a single schema problem.
type ValidationError struct {
	// Rule is the validation rule that was violated.
	Rule string

	// Column is the schema column involved, if any.
	Column string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the 1-based sheet row the problem was found on (0 = n/a).
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Rule)
	if e.Column != "" {
		fmt.Fprintf(&b, " %q", e.Column)
	}
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " (row %d)", e.RowNumber)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// SchemaError is returned when a table does not match its schema.
// Callers detect it with errors.As.
type SchemaError struct {
	Schema   string
	Sheet    string
	Problems []*ValidationError
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %q mismatch on sheet %q: %s", e.Schema, e.Sheet, FormatErrors(e.Problems))
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// CheckSchema validates a raw table against a schema.
//
// PARAMETERS:
//   - schema: The positional layout expected for this file kind.
//   - table: The raw rows read from the input.
//   - required: The column names the caller will read from every row.
//
// RETURNS:
//   - nil if the table can be read with the schema.
//   - *SchemaError listing every problem otherwise.
func CheckSchema(schema *types.Schema, table *types.RawTable, required []string) error {
	var problems []*ValidationError

	for _, column := range required {
		if schema.Index(column) < 0 {
			problems = append(problems, &ValidationError{
				Rule:    RuleRequiredColumn,
				Column:  column,
				Message: "column is not part of the schema",
			})
		}
	}

	if schema.StatusColumn < 0 || schema.StatusColumn >= len(schema.Columns) {
		problems = append(problems, &ValidationError{
			Rule:    RuleStatusColumn,
			Message: fmt.Sprintf("status column index %d outside %d columns", schema.StatusColumn, len(schema.Columns)),
		})
	}

	// An empty sheet is valid input with nothing pending; only a present
	// header row can be checked for width.
	if schema.HeaderRows > 0 && len(table.Rows) >= schema.HeaderRows {
		header := table.Rows[schema.HeaderRows-1]
		if len(header) < len(schema.Columns) {
			missing := schema.Columns[len(header):]
			problems = append(problems, &ValidationError{
				Rule:      RuleColumnCount,
				Column:    missing[0],
				RowNumber: schema.HeaderRows,
				Message:   fmt.Sprintf("expected %d columns, found %d (missing %s)", len(schema.Columns), len(header), strings.Join(missing, ", ")),
			})
		}
	}

	if len(problems) > 0 {
		return &SchemaError{Schema: schema.Name, Sheet: table.Sheet, Problems: problems}
	}
	return nil
}

// SheetMissing builds the schema error for an absent sheet.
func SheetMissing(schema *types.Schema, available []string) *SchemaError {
	return &SchemaError{
		Schema: schema.Name,
		Sheet:  schema.Sheet,
		Problems: []*ValidationError{{
			Rule:    RuleSheet,
			Message: fmt.Sprintf("sheet %q not found (available: %s)", schema.Sheet, strings.Join(available, ", ")),
		}},
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "no validation errors"
	}

	parts := make([]string, len(errors))
	for i, err := range errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
