package shared

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// SortIDs orders IDs ascending by byte value, the same order Postgres uses for
// uuid columns. Every multi-row lock is taken in this order.
func SortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
}

// UniqueSortedIDs returns the distinct IDs in lock order
func UniqueSortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	SortIDs(out)
	return slices.Compact(out)
}
