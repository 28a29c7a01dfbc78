// Package checkpoint keeps block-indexed value histories.
package checkpoint

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// Checkpoint is the value of a series from Block onwards.
type Checkpoint struct {
	Block uint64
	Value uint256.Int
}

// Trace is an ordered checkpoint series with strictly increasing blocks.
// The zero value is an empty trace.
type Trace struct {
	points []Checkpoint
}

// Push records value at block. A push for the latest block overwrites it; a
// push for an earlier block fails with ErrUnorderedCheckpoint. It returns the
// previous latest value and the new one.
func (t *Trace) Push(block uint64, value *uint256.Int) (prev, next uint256.Int, err error) {
	n := len(t.points)
	if n > 0 {
		last := &t.points[n-1]
		if block < last.Block {
			return prev, next, fmt.Errorf("%w: block %d before latest %d", domain.ErrUnorderedCheckpoint, block, last.Block)
		}
		prev = last.Value
		if block == last.Block {
			last.Value = *value
			return prev, *value, nil
		}
	}
	t.points = append(t.points, Checkpoint{Block: block, Value: *value})
	return prev, *value, nil
}

// UpperLookup returns the value of the latest checkpoint at or before block,
// or zero when there is none.
func (t *Trace) UpperLookup(block uint64) uint256.Int {
	// first index with Block > block
	i := sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Block > block
	})
	if i == 0 {
		return uint256.Int{}
	}
	return t.points[i-1].Value
}

// Latest returns the most recent value, or zero for an empty trace.
func (t *Trace) Latest() uint256.Int {
	if len(t.points) == 0 {
		return uint256.Int{}
	}
	return t.points[len(t.points)-1].Value
}

// LatestCheckpoint reports the most recent checkpoint, if any.
func (t *Trace) LatestCheckpoint() (Checkpoint, bool) {
	if len(t.points) == 0 {
		return Checkpoint{}, false
	}
	return t.points[len(t.points)-1], true
}

func (t *Trace) Len() int {
	return len(t.points)
}

// At returns the checkpoint at position i.
func (t *Trace) At(i int) (Checkpoint, error) {
	if i < 0 || i >= len(t.points) {
		return Checkpoint{}, fmt.Errorf("%w: checkpoint %d of %d", domain.ErrNotFound, i, len(t.points))
	}
	return t.points[i], nil
}
