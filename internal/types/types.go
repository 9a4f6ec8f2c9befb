// =============================================================================
// SAP Scripts Generator - Shared Types
// =============================================================================
//
// This package contains the types shared by every stage of the pipeline to
// avoid import cycles. Types defined here are used by:
//   - normalizer  (produces Records)
//   - classifier  (partitions Records)
//   - synth       (consumes Records, produces Scripts)
//   - converter   (orchestrates the stages)
//   - server/cmd  (serialize Scripts)
//
// =============================================================================

package types

import (
	"strings"
)

// =============================================================================
// OPERATION TYPES
// =============================================================================

// OperationType is the business transaction requested by a record.
type OperationType int

const (
	// OperationEmission creates a new reservation. Records whose request type
	// matches none of the explicit labels below are emissions.
	OperationEmission OperationType = iota
	// OperationReturn creates a return reservation (movement 222/202).
	OperationReturn
	// OperationAdd adds lines to an existing reservation.
	OperationAdd
	// OperationModify changes quantities of existing positions.
	OperationModify
	// OperationDelete flags positions for deletion.
	OperationDelete
	// OperationFinalize sets the final-issue flag on positions.
	OperationFinalize
)

// operationLabels maps the title-cased request type to its operation.
var operationLabels = map[string]OperationType{
	"Devolucion": OperationReturn,
	"Adicionar":  OperationAdd,
	"Modificar":  OperationModify,
	"Borrar":     OperationDelete,
	"Sfin":       OperationFinalize,
}

// ParseOperation resolves a title-cased request type label.
// Unknown labels resolve to OperationEmission.
func ParseOperation(label string) OperationType {
	if op, ok := operationLabels[label]; ok {
		return op
	}
	return OperationEmission
}

// Operations lists every operation type in a stable order.
func Operations() []OperationType {
	return []OperationType{
		OperationEmission,
		OperationReturn,
		OperationAdd,
		OperationModify,
		OperationDelete,
		OperationFinalize,
	}
}

// String returns the short name used in script keys and log messages.
func (o OperationType) String() string {
	switch o {
	case OperationEmission:
		return "emission"
	case OperationReturn:
		return "return"
	case OperationAdd:
		return "add"
	case OperationModify:
		return "mod"
	case OperationDelete:
		return "del"
	case OperationFinalize:
		return "sfin"
	default:
		return "unknown"
	}
}

// =============================================================================
// MOVEMENT BUCKETS
// =============================================================================

// MovementBucket is the routing dimension inside the create-reservation family.
type MovementBucket string

const (
	// Movement201 is consumption to cost center.
	Movement201 MovementBucket = "201"
	// Movement221 is consumption to project element.
	Movement221 MovementBucket = "221"
)

// ReturnMovement is the movement type used when the bucket is synthesized as
// a return: 201 -> 202, 221 -> 222.
func (b MovementBucket) ReturnMovement() string {
	switch b {
	case Movement201:
		return "202"
	case Movement221:
		return "222"
	default:
		return string(b)
	}
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one normalized, pending reservation request line.
// Records are created once by the normalizer and never mutated afterwards.
type Record struct {
	// Row is the 1-based row number in the source sheet.
	Row int

	// TransactionKey is the grouping identity (PO or SVR, fixed per schema).
	TransactionKey string

	// OrderCode is the purchase order (PO) the record belongs to.
	OrderCode string

	// RequestCode is the request number (SVR), "" for schemas without one.
	RequestCode string

	// Operation is derived from the title-cased request type.
	Operation OperationType

	// RequestType is the title-cased label the operation was derived from.
	RequestType string

	// MovementCode is the integer-coerced movement column rendered as text.
	MovementCode string

	// SecondaryID is the investment-project code linked to the transaction (IP).
	SecondaryID string

	// ContextCode is the contractor / execution-context code (EECC).
	ContextCode string

	// ReservationID is the existing reservation number (VR), "" when absent.
	// Numeric values are rendered without a fractional part.
	ReservationID string

	MaterialCode int
	Quantity     int
	Position     int

	// StorageCode is always four characters, zero padded.
	StorageCode string

	// CostElement is kept as text; some values are free-form identifiers.
	CostElement string

	Status string
}

// =============================================================================
// SCRIPT OUTPUT
// =============================================================================

// Status tells a caller whether a synthesizer had anything to work on.
type Status int

const (
	// StatusNoInput means the record set was empty and nothing was generated.
	StatusNoInput Status = iota
	// StatusGenerated means a command sequence was produced.
	StatusGenerated
)

// LogEntry describes one generated reservation for the external VR log.
// Field order is fixed for every flow: PO, IP, movement, EECC[, SVR].
type LogEntry struct {
	OrderCode    string
	SecondaryID  string
	MovementCode string
	ContextCode  string

	// RequestCode is only written for return flows.
	RequestCode string
	Return      bool
}

// String renders the comma separated log line.
func (e LogEntry) String() string {
	fields := []string{e.OrderCode, e.SecondaryID, e.MovementCode, e.ContextCode}
	if e.Return {
		fields = append(fields, e.RequestCode)
	}
	return strings.Join(fields, ",")
}

// Skip records a group or position left out of a script, with the reason.
type Skip struct {
	Key    string
	Reason string
}

// Script is the ordered command sequence produced by one synthesizer call.
type Script struct {
	// Name is the output key, e.g. "221", "202", "mod".
	Name string

	Operation    OperationType
	MovementType string
	Status       Status

	Lines      []string
	LogEntries []LogEntry
	Skipped    []Skip
}

// Empty reports whether the script carries no command lines.
func (s *Script) Empty() bool {
	return s == nil || len(s.Lines) == 0
}

// Text joins the command lines with newlines.
func (s *Script) Text() string {
	if s.Empty() {
		return ""
	}
	return strings.Join(s.Lines, "\n")
}

// LogLines renders the log entries in generation order.
func (s *Script) LogLines() []string {
	lines := make([]string, len(s.LogEntries))
	for i, e := range s.LogEntries {
		lines[i] = e.String()
	}
	return lines
}

// =============================================================================
// RAW INPUT
// =============================================================================

// RawTable is the untyped, positional content of one sheet or CSV export.
type RawTable struct {
	// Sheet is the sheet (or section) the rows were read from.
	Sheet string

	// Rows contains every row, header rows included. Rows may have
	// different widths because readers trim trailing empty cells.
	Rows [][]string
}

// Width returns the number of cells of the widest row.
func (t *RawTable) Width() int {
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Schema describes the fixed positional layout of one file kind.
type Schema struct {
	// Name identifies the file kind, e.g. "emisiones" or "solicitudes".
	Name string

	// Sheet is the sheet (section) the rows are read from.
	Sheet string

	// Columns names every positional column, in order.
	Columns []string

	// HeaderRows is the number of leading rows skipped before data.
	HeaderRows int

	// StatusColumn is the index of the column compared to the pending sentinel.
	StatusColumn int

	// KeyColumn names the transaction key column for this file kind.
	KeyColumn string
}

// Index returns the position of a named column, or -1 when absent.
func (s *Schema) Index(column string) int {
	for i, c := range s.Columns {
		if c == column {
			return i
		}
	}
	return -1
}
