// =============================================================================
// SAP Scripts Generator - Template Library
// =============================================================================
//
// This module renders the SAP GUI scripting blocks the synthesizers assemble
// into command sequences. Every block is a named text/template parsed once at
// start-up; rendering never mutates shared state, so one Library can serve
// concurrent requests.
//
// BLOCKS:
//   header          - attach to the running SAP GUI session
//   create / change - enter transaction MB21 / MB22
//   details         - VBScript variables later written to the VR log
//   select          - one check line per material
//   context         - business context (project element or cost center)
//   fill            - material / quantity / storage per line
//   confirm         - post the reservation and read its number
//   writelog        - append the reservation to the VR log file
//   join            - open an existing reservation
//   modify / delete / finalize - per-position edits
//   add.*           - add-line dialog and confirmation
//   save / back     - toolbar buttons
//
// =============================================================================

package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Fixed values written by the project-element (221/222) blocks.
const (
	// NoBudget is the functional area used for project-element consumption.
	NoBudget = "NO_PRESUP"

	// ReturnAccount is the G/L account entered for 222 returns.
	ReturnAccount = "2303000000"
)

// blocks is parsed once and only executed afterwards.
var blocks = template.Must(template.New("blocks").Funcs(funcMap()).Parse(blockSource))

func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	// VBScript string literals escape a double quote by doubling it.
	funcs["vbs"] = func(s string) string {
		return strings.ReplaceAll(s, `"`, `""`)
	}
	return funcs
}

// =============================================================================
// LIBRARY
// =============================================================================

// Library renders blocks for one automation user and plant.
type Library struct {
	user    string
	plant   string
	centers CostCenters
}

// New creates a Library. centers is the cost-center lookup used by the
// 201/202 context block and by the add-line sub-family inference.
func New(user, plant string, centers CostCenters) *Library {
	return &Library{user: user, plant: plant, centers: centers}
}

// CostCenters returns the lookup table the library was built with.
func (l *Library) CostCenters() CostCenters {
	return l.centers
}

// Item is one material line of a fill block.
type Item struct {
	Material int
	Quantity int
	Storage  string
}

// PositionQuantity is one quantity change of a modify block.
type PositionQuantity struct {
	Position int
	Quantity int
}

// Details carries the values of the VBScript variables written to the VR log.
type Details struct {
	OrderCode    string
	SecondaryID  string
	MovementCode string
	ContextCode  string
	RequestCode  string
	Return       bool
}

// =============================================================================
// CREATE-RESERVATION BLOCKS
// =============================================================================

// Header attaches the script to the running SAP GUI session.
func (l *Library) Header() ([]string, error) {
	return render("header", nil)
}

// Create enters MB21 for a movement type.
func (l *Library) Create(movementType string) ([]string, error) {
	return render("create", struct{ MovementType, Plant string }{movementType, l.plant})
}

// Details assigns the log variables for one transaction.
func (l *Library) Details(d Details) ([]string, error) {
	return render("details", d)
}

// Select checks the first count material rows.
func (l *Library) Select(count int) ([]string, error) {
	return render("select", count)
}

// BusinessContext fills the account-assignment block for a movement type.
//
// MOVEMENT TYPES:
//   - 221: project element + NO_PRESUP
//   - 222: as 221, preceded by the return G/L account
//   - 201, 202 and anything else: cost center + area function from the
//     cost-center table; an unknown cost center writes AreaFunctionFallback
func (l *Library) BusinessContext(movementType, costElement string) ([]string, error) {
	data := struct {
		User, CostElement, AreaFunction, NoBudget, ReturnAccount string
	}{
		User:          l.user,
		CostElement:   costElement,
		NoBudget:      NoBudget,
		ReturnAccount: ReturnAccount,
	}

	switch movementType {
	case "221":
		return render("context.project", data)
	case "222":
		return render("context.project.return", data)
	default:
		data.AreaFunction = l.centers.AreaFunction(costElement)
		return render("context.costcenter", data)
	}
}

// Fill enters material, quantity and storage for each item.
func (l *Library) Fill(items []Item) ([]string, error) {
	return render("fill", items)
}

// Confirm posts the reservation and captures its number from the status bar.
func (l *Library) Confirm(count int) ([]string, error) {
	return render("confirm", count)
}

// WriteLog appends the captured reservation to the VR log file.
func (l *Library) WriteLog(logPath string, isReturn bool) ([]string, error) {
	return render("writelog", struct {
		LogPath string
		Return  bool
	}{logPath, isReturn})
}

// =============================================================================
// CHANGE-RESERVATION BLOCKS
// =============================================================================

// Change enters MB22.
func (l *Library) Change() ([]string, error) {
	return render("change", nil)
}

// Join opens an existing reservation.
func (l *Library) Join(reservationID string) ([]string, error) {
	return render("join", reservationID)
}

// Modify sets a new quantity at each position.
func (l *Library) Modify(changes []PositionQuantity) ([]string, error) {
	return render("modify", changes)
}

// Delete flags each position for deletion and zeroes its quantity.
func (l *Library) Delete(positions []int) ([]string, error) {
	return render("delete", positions)
}

// Finalize sets the final-issue flag at each position.
func (l *Library) Finalize(positions []int) ([]string, error) {
	return render("finalize", positions)
}

// AddDialog opens the add-line dialog with a requirement date (dd.mm.yyyy).
func (l *Library) AddDialog(date string) ([]string, error) {
	return render("add.dialog", struct{ Date, Plant string }{date, l.plant})
}

// AddConfirm confirms count new lines. Cost-center groups set the functional
// area from their cost element; project groups use NO_PRESUP.
func (l *Library) AddConfirm(count int, costElement string, costCenter bool) ([]string, error) {
	data := struct {
		Count       int
		CostElement string
		NoBudget    string
	}{count, costElement, NoBudget}

	if costCenter {
		return render("add.confirm.costcenter", data)
	}
	return render("add.confirm.project", data)
}

// Save presses the save button.
func (l *Library) Save() ([]string, error) {
	return render("save", nil)
}

// Back presses the back button.
func (l *Library) Back() ([]string, error) {
	return render("back", nil)
}

// =============================================================================
// RENDERING
// =============================================================================

// render executes a named block and splits it into command lines.
func render(name string, data any) ([]string, error) {
	var buf bytes.Buffer
	if err := blocks.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render block %s: %w", name, err)
	}

	raw := strings.Split(buf.String(), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
