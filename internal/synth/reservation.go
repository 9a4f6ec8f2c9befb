package synth

import (
	"fmt"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// Emission generates the MB21 create script for one movement bucket.
func (s *Synthesizer) Emission(records []types.Record, bucket types.MovementBucket) (*types.Script, error) {
	return s.Reservation(records, string(bucket), false)
}

// Return generates the MB21 return script for one movement bucket, using
// the bucket's return movement type (222 or 202).
func (s *Synthesizer) Return(records []types.Record, bucket types.MovementBucket) (*types.Script, error) {
	return s.Reservation(records, bucket.ReturnMovement(), true)
}

// Reservation generates an MB21 script creating one reservation per
// transaction key.
//
// PARAMETERS:
//   - records: The records of one movement bucket.
//   - movementType: The SAP movement type (221, 201, 222 or 202).
//   - isReturn: Whether the request code (SVR) is written to the VR log.
//
// RETURNS:
//   - The script; StatusNoInput when records is empty.
//   - An error only if a block fails to render.
//
// PER GROUP:
//   details, select, business context, fill, confirm, write log.
//   The group uses the storage code and cost element of its first record.
//   A material repeated in a group keeps its first position and its last
//   quantity. Groups without a cost element are skipped.
func (s *Synthesizer) Reservation(records []types.Record, movementType string, isReturn bool) (*types.Script, error) {
	op := types.OperationEmission
	if isReturn {
		op = types.OperationReturn
	}
	if len(records) == 0 {
		return noInput(movementType, op, movementType), nil
	}

	script := &types.Script{
		Name:         movementType,
		Operation:    op,
		MovementType: movementType,
		Status:       types.StatusGenerated,
	}

	b := &scriptBuilder{}
	b.add(s.lib.Header())
	b.add(s.lib.Create(movementType))

	for _, g := range groupBy(records, func(r types.Record) string { return r.TransactionKey }) {
		first := g.records[0]
		if first.CostElement == "" {
			script.Skipped = append(script.Skipped, types.Skip{Key: g.key, Reason: ReasonNoCostElement})
			continue
		}

		materials := newOrderedInts()
		for _, r := range g.records {
			materials.set(r.MaterialCode, r.Quantity)
		}
		items := make([]templates.Item, 0, materials.len())
		for _, m := range materials.keys {
			items = append(items, templates.Item{
				Material: m,
				Quantity: materials.values[m],
				Storage:  first.StorageCode,
			})
		}

		entry := types.LogEntry{
			OrderCode:    first.OrderCode,
			SecondaryID:  first.SecondaryID,
			MovementCode: first.MovementCode,
			ContextCode:  first.ContextCode,
			RequestCode:  first.RequestCode,
			Return:       isReturn,
		}

		b.add(s.lib.Details(templates.Details(entry)))
		b.add(s.lib.Select(len(items)))
		b.add(s.lib.BusinessContext(movementType, first.CostElement))
		b.add(s.lib.Fill(items))
		b.add(s.lib.Confirm(len(items)))
		b.add(s.lib.WriteLog(s.logPath, isReturn))

		script.LogEntries = append(script.LogEntries, entry)
	}

	b.add(s.lib.Back())
	if b.err != nil {
		return nil, fmt.Errorf("failed to synthesize %s script: %w", movementType, b.err)
	}

	script.Lines = b.lines
	return script, nil
}
