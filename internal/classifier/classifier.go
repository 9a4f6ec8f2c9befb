// Package classifier partitions normalized records by requested operation and,
// inside the create-reservation family, by movement bucket.
package classifier

import (
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// ByOperation partitions records by operation type. Every operation of
// types.Operations has an entry, possibly empty; record order is preserved.
func ByOperation(records []types.Record) map[types.OperationType][]types.Record {
	out := make(map[types.OperationType][]types.Record, len(types.Operations()))
	for _, op := range types.Operations() {
		out[op] = []types.Record{}
	}
	for _, r := range records {
		out[r.Operation] = append(out[r.Operation], r)
	}
	return out
}

// MovementSplit is the result of classifying records by movement code.
type MovementSplit struct {
	Buckets map[types.MovementBucket][]types.Record

	// Unclassified holds records whose movement code matches no bucket.
	// They are not part of any script.
	Unclassified []types.Record
}

// Buckets lists the movement buckets in the order scripts are generated.
func Buckets() []types.MovementBucket {
	return []types.MovementBucket{types.Movement221, types.Movement201}
}

// ByMovement partitions records into the 221 and 201 buckets.
func ByMovement(records []types.Record) MovementSplit {
	split := MovementSplit{
		Buckets: map[types.MovementBucket][]types.Record{
			types.Movement221: {},
			types.Movement201: {},
		},
	}
	for _, r := range records {
		bucket := types.MovementBucket(r.MovementCode)
		if _, ok := split.Buckets[bucket]; !ok {
			split.Unclassified = append(split.Unclassified, r)
			continue
		}
		split.Buckets[bucket] = append(split.Buckets[bucket], r)
	}
	return split
}
