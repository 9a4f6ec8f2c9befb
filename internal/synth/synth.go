// =============================================================================
// SAP Scripts Generator - Script Synthesizers
// =============================================================================
//
// This module turns classified records into SAP GUI command sequences. There
// is one synthesizer per business transaction:
//
//   Reservation  - MB21 create (emission 221/201) and return (222/202)
//   Modify       - MB22 quantity change per position
//   Delete       - MB22 deletion flag per position
//   Finalize     - MB22 final-issue flag per position
//   Add          - MB22 add-line dialog
//
// GROUPING:
//   Records are grouped by transaction key (create family) or reservation id
//   (change family). Groups keep first-seen order and live only for the
//   duration of one call.
//
// OUTCOMES:
//   Empty input yields a Script with StatusNoInput and no lines. Groups that
//   cannot be generated are left out and listed in Script.Skipped.
//
// =============================================================================

package synth

import (
	"time"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// DateFormat is the requirement-date format expected by the add-line dialog.
const DateFormat = "02.01.2006"

// Skip reasons reported in Script.Skipped.
const (
	ReasonNoCostElement = "no cost element"
	ReasonNoReservation = "no reservation id"
	ReasonBadPosition   = "position out of range"
	ReasonNoPositions   = "no valid positions"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Synthesizer.
type Options struct {
	// User is the SAP user written as goods recipient.
	User string

	// Plant is the SAP plant code.
	Plant string

	// LogPath is the VR log file the generated scripts append to.
	LogPath string

	// CostCenters is the cost-center to area-function table.
	// The zero value is an empty table.
	CostCenters templates.CostCenters

	// Today returns the current date; defaults to time.Now.
	Today func() time.Time
}

// =============================================================================
// SYNTHESIZER
// =============================================================================

// Synthesizer generates scripts. It holds no mutable state, so a single
// instance may be used from several goroutines.
type Synthesizer struct {
	lib     *templates.Library
	logPath string
	today   func() time.Time
}

// New creates a Synthesizer from options.
func New(opts Options) *Synthesizer {
	today := opts.Today
	if today == nil {
		today = time.Now
	}
	return &Synthesizer{
		lib:     templates.New(opts.User, opts.Plant, opts.CostCenters),
		logPath: opts.LogPath,
		today:   today,
	}
}

// noInput builds the result of a synthesizer called with nothing to do.
func noInput(name string, op types.OperationType, movementType string) *types.Script {
	return &types.Script{
		Name:         name,
		Operation:    op,
		MovementType: movementType,
		Status:       types.StatusNoInput,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// scriptBuilder accumulates command lines. The first render error sticks
// and every later add is ignored.
type scriptBuilder struct {
	lines []string
	err   error
}

func (b *scriptBuilder) add(lines []string, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.lines = append(b.lines, lines...)
}

// group is a run of records sharing a key, in first-seen order.
type group[K comparable] struct {
	key     K
	records []types.Record
}

// groupBy partitions records by key, preserving the order keys first appear.
func groupBy[K comparable](records []types.Record, key func(types.Record) K) []group[K] {
	index := make(map[K]int)
	var groups []group[K]
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group[K]{key: k})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

// orderedInts is an insertion-ordered int -> int map where later writes
// replace the value but keep the first position.
type orderedInts struct {
	keys   []int
	values map[int]int
}

func newOrderedInts() *orderedInts {
	return &orderedInts{values: make(map[int]int)}
}

func (m *orderedInts) set(key, value int) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedInts) len() int {
	return len(m.keys)
}
