package metagenome

import (
	"slices"

	"github.com/inodb/metagenome/internal/store"
)

// SweepIndex is the ascending, deduplicated set of reference positions at
// which any store of a chromosome has a record. It is a forward-only
// cursor.
type SweepIndex struct {
	positions []int64
	i         int
}

// NewSweepIndex builds the index from the union of the stores' positions.
func NewSweepIndex(stores []*store.Store) *SweepIndex {
	n := 0
	for _, s := range stores {
		n += s.Len()
	}
	positions := make([]int64, 0, n)
	for _, s := range stores {
		for _, r := range s.Records() {
			positions = append(positions, r.Pos)
		}
	}
	slices.Sort(positions)
	return &SweepIndex{positions: slices.Compact(positions)}
}

// Valid reports whether the cursor points at a position.
func (x *SweepIndex) Valid() bool { return x.i < len(x.positions) }

// Current returns the position under the cursor. Only call when Valid.
func (x *SweepIndex) Current() int64 { return x.positions[x.i] }

// Advance moves to the next position.
func (x *SweepIndex) Advance() { x.i++ }

// Len returns the number of distinct positions.
func (x *SweepIndex) Len() int { return len(x.positions) }
