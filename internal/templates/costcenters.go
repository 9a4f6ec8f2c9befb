package templates

import (
	"maps"
	"slices"
)

// AreaFunctionFallback is written when a cost center has no area function.
// The generated script must carry it verbatim.
const AreaFunctionFallback = "Default if not found"

// CostCenters maps cost-center codes to secondary area-function codes.
// The table is copied on construction and never mutated afterwards.
type CostCenters struct {
	areas map[string]string
}

// NewCostCenters builds a table from a code -> area function map.
func NewCostCenters(areas map[string]string) CostCenters {
	return CostCenters{areas: maps.Clone(areas)}
}

// DefaultCostCenters is the table used when configuration provides none.
func DefaultCostCenters() CostCenters {
	return NewCostCenters(map[string]string{
		"200000703": "90010010", // EDIFICIOS - BROWNFIELD
		"200000702": "92030040", // DIFERENCIAS, MERMAS
	})
}

// AreaFunction resolves a cost center, or AreaFunctionFallback when unmapped.
func (c CostCenters) AreaFunction(code string) string {
	if area, ok := c.areas[code]; ok {
		return area
	}
	return AreaFunctionFallback
}

// Contains reports whether code is a mapped cost center.
func (c CostCenters) Contains(code string) bool {
	_, ok := c.areas[code]
	return ok
}

// Codes lists the mapped cost centers in sorted order.
func (c CostCenters) Codes() []string {
	return slices.Sorted(maps.Keys(c.areas))
}
