// =============================================================================
// SAP Scripts Generator - Cell Cleanup
// =============================================================================
//
// This module rewrites raw cells before normalization. Exports produced by
// different teams disagree on small things: "Pendiente" vs "PENDIENTE",
// padded cost centers, request types with stray spaces. A file kind may
// declare cleanup rules so those files still normalize.
//
// ACTION TYPES:
//   - trim, uppercase, lowercase, collapse_spaces
//   - prepend / append
//   - replace / regex_replace
//   - lookup
//   - default
//
// Rules address columns by schema name and run before the pending filter,
// so they may decide which rows survive.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// =============================================================================
// CLEANER
// =============================================================================

// cleanupStep is one compiled action bound to a column index.
type cleanupStep struct {
	column int
	action config.CleanupAction
	re     *regexp.Regexp
}

// Cleaner applies compiled cleanup rules to raw tables.
type Cleaner struct {
	steps []cleanupStep
}

// NewCleaner compiles rules against a schema.
//
// RETURNS:
//   - A Cleaner; with no rules it leaves tables untouched.
//   - An error if a rule names an unknown column or an invalid regex.
func NewCleaner(rules []config.CleanupRule, schema *types.Schema) (*Cleaner, error) {
	c := &Cleaner{}
	for _, rule := range rules {
		index := schema.Index(rule.Column)
		if index < 0 {
			return nil, fmt.Errorf("cleanup rule: column %q is not in schema %s", rule.Column, schema.Name)
		}
		for _, action := range rule.Actions {
			step := cleanupStep{column: index, action: action}
			if action.Type == "regex_replace" && action.Find != "" {
				re, err := regexp.Compile(action.Find)
				if err != nil {
					return nil, fmt.Errorf("cleanup rule %s: invalid regex pattern: %w", rule.Column, err)
				}
				step.re = re
			}
			c.steps = append(c.steps, step)
		}
	}
	return c, nil
}

// Apply returns a cleaned copy of table; header rows are left as read.
// The input table is not modified.
func (c *Cleaner) Apply(table *types.RawTable, headerRows int) *types.RawTable {
	if len(c.steps) == 0 || table == nil {
		return table
	}

	out := &types.RawTable{Sheet: table.Sheet, Rows: make([][]string, len(table.Rows))}
	for i, row := range table.Rows {
		if i < headerRows {
			out.Rows[i] = row
			continue
		}

		cells := make([]string, len(row))
		copy(cells, row)
		for _, step := range c.steps {
			if step.column >= len(cells) {
				// Only "default" can fill a cell the row does not have.
				if step.action.Type != "default" || step.action.Value == "" {
					continue
				}
				cells = append(cells, make([]string, step.column-len(cells)+1)...)
			}
			cells[step.column] = step.apply(cells[step.column])
		}
		out.Rows[i] = cells
	}
	return out
}

// apply runs one action on a cell value.
func (s cleanupStep) apply(value string) string {
	a := s.action
	switch a.Type {
	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "collapse_spaces":
		return strings.Join(strings.Fields(value), " ")

	case "prepend":
		return a.Value + value

	case "append":
		return value + a.Value

	case "replace":
		if a.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, a.Find, a.Value)

	case "regex_replace":
		if s.re == nil {
			return value
		}
		return s.re.ReplaceAllString(value, a.Value)

	case "lookup":
		if replacement, ok := a.LookupTable[value]; ok {
			return replacement
		}
		return value

	case "default":
		if strings.TrimSpace(value) == "" {
			return a.Value
		}
		return value

	default:
		// Unknown types are rejected by config validation.
		return value
	}
}
