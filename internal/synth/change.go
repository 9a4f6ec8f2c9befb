package synth

import (
	"fmt"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// reservationBody renders the operation-specific part of one reservation
// group, between join and save. It returns the skipped positions and
// whether the group produced anything at all.
type reservationBody func(b *scriptBuilder, g group[string]) (skipped []types.Skip, ok bool)

// change runs the MB22 shape shared by every change operation:
// header, mb22, then join + body + save per reservation, then back.
func (s *Synthesizer) change(op types.OperationType, records []types.Record, body reservationBody) (*types.Script, error) {
	name := op.String()
	if len(records) == 0 {
		return noInput(name, op, ""), nil
	}

	script := &types.Script{
		Name:      name,
		Operation: op,
		Status:    types.StatusGenerated,
	}

	b := &scriptBuilder{}
	b.add(s.lib.Header())
	b.add(s.lib.Change())

	for _, g := range groupBy(records, func(r types.Record) string { return r.ReservationID }) {
		if g.key == "" {
			script.Skipped = append(script.Skipped, types.Skip{
				Key:    g.records[0].TransactionKey,
				Reason: ReasonNoReservation,
			})
			continue
		}

		// Render the body into its own builder so an empty group leaves
		// no join line behind.
		inner := &scriptBuilder{}
		skipped, ok := body(inner, g)
		script.Skipped = append(script.Skipped, skipped...)
		if inner.err != nil {
			b.add(nil, inner.err)
			break
		}
		if !ok {
			script.Skipped = append(script.Skipped, types.Skip{Key: g.key, Reason: ReasonNoPositions})
			continue
		}

		b.add(s.lib.Join(g.key))
		b.add(inner.lines, nil)
		b.add(s.lib.Save())
	}

	b.add(s.lib.Back())
	if b.err != nil {
		return nil, fmt.Errorf("failed to synthesize %s script: %w", name, b.err)
	}

	script.Lines = b.lines
	return script, nil
}

// positions returns the valid positions of a group in record order and a
// skip for every position below 1.
func positions(g group[string]) ([]int, []types.Skip) {
	var valid []int
	var skipped []types.Skip
	for _, r := range g.records {
		if r.Position < 1 {
			skipped = append(skipped, positionSkip(g.key, r.Position))
			continue
		}
		valid = append(valid, r.Position)
	}
	return valid, skipped
}

func positionSkip(reservation string, position int) types.Skip {
	return types.Skip{
		Key:    fmt.Sprintf("%s/%d", reservation, position),
		Reason: ReasonBadPosition,
	}
}

// =============================================================================
// MODIFY / DELETE / FINALIZE
// =============================================================================

// Modify generates an MB22 script setting a new quantity at each position.
// A position listed twice for one reservation keeps its last quantity.
func (s *Synthesizer) Modify(records []types.Record) (*types.Script, error) {
	return s.change(types.OperationModify, records, func(b *scriptBuilder, g group[string]) ([]types.Skip, bool) {
		var skipped []types.Skip
		quantities := newOrderedInts()
		for _, r := range g.records {
			if r.Position < 1 {
				skipped = append(skipped, positionSkip(g.key, r.Position))
				continue
			}
			quantities.set(r.Position, r.Quantity)
		}
		if quantities.len() == 0 {
			return skipped, false
		}

		changes := make([]templates.PositionQuantity, 0, quantities.len())
		for _, p := range quantities.keys {
			changes = append(changes, templates.PositionQuantity{Position: p, Quantity: quantities.values[p]})
		}
		b.add(s.lib.Modify(changes))
		return skipped, true
	})
}

// Delete generates an MB22 script flagging positions for deletion.
func (s *Synthesizer) Delete(records []types.Record) (*types.Script, error) {
	return s.change(types.OperationDelete, records, func(b *scriptBuilder, g group[string]) ([]types.Skip, bool) {
		valid, skipped := positions(g)
		if len(valid) == 0 {
			return skipped, false
		}
		b.add(s.lib.Delete(valid))
		return skipped, true
	})
}

// Finalize generates an MB22 script setting the final-issue flag.
func (s *Synthesizer) Finalize(records []types.Record) (*types.Script, error) {
	return s.change(types.OperationFinalize, records, func(b *scriptBuilder, g group[string]) ([]types.Skip, bool) {
		valid, skipped := positions(g)
		if len(valid) == 0 {
			return skipped, false
		}
		b.add(s.lib.Finalize(valid))
		return skipped, true
	})
}

// =============================================================================
// ADD
// =============================================================================

// Add generates an MB22 script adding lines to existing reservations.
//
// Every record becomes one new line with its own material, quantity and
// storage code. The confirmation path depends on the group's first cost
// element: a mapped cost center (201 family) writes it as functional area,
// anything else (221 family) writes NO_PRESUP.
func (s *Synthesizer) Add(records []types.Record) (*types.Script, error) {
	centers := s.lib.CostCenters()
	return s.change(types.OperationAdd, records, func(b *scriptBuilder, g group[string]) ([]types.Skip, bool) {
		items := make([]templates.Item, 0, len(g.records))
		for _, r := range g.records {
			items = append(items, templates.Item{
				Material: r.MaterialCode,
				Quantity: r.Quantity,
				Storage:  r.StorageCode,
			})
		}

		costElement := g.records[0].CostElement
		b.add(s.lib.AddDialog(s.today().Format(DateFormat)))
		b.add(s.lib.Select(len(items)))
		b.add(s.lib.Fill(items))
		b.add(s.lib.AddConfirm(len(items), costElement, centers.Contains(costElement)))
		return nil, true
	})
}
