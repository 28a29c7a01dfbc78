package checkpoint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

type fakeClock struct {
	block uint64
	time  uint64
}

func (c *fakeClock) BlockNumber() uint64 { return c.block }
func (c *fakeClock) Timestamp() uint64   { return c.time }

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestTrace_PushAndLookup(t *testing.T) {
	var tr Trace

	_, _, err := tr.Push(5, u(100))
	require.NoError(t, err)
	_, _, err = tr.Push(10, u(40))
	require.NoError(t, err)
	prev, next, err := tr.Push(10, u(70))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), prev.Uint64())
	assert.Equal(t, uint64(70), next.Uint64())
	assert.Equal(t, 2, tr.Len(), "same-block push overwrites")

	tests := []struct {
		block uint64
		want  uint64
	}{
		{0, 0},
		{4, 0},
		{5, 100},
		{9, 100},
		{10, 70},
		{1000, 70},
	}
	for _, tt := range tests {
		got := tr.UpperLookup(tt.block)
		assert.Equal(t, tt.want, got.Uint64(), "block %d", tt.block)
	}

	latest := tr.Latest()
	assert.Equal(t, uint64(70), latest.Uint64())
}

func TestTrace_RejectsEarlierBlock(t *testing.T) {
	var tr Trace
	_, _, err := tr.Push(10, u(1))
	require.NoError(t, err)

	_, _, err = tr.Push(9, u(2))
	assert.ErrorIs(t, err, domain.ErrUnorderedCheckpoint)
	assert.Equal(t, 1, tr.Len())
	latest := tr.Latest()
	assert.Equal(t, uint64(1), latest.Uint64())
}

func TestTrace_At(t *testing.T) {
	var tr Trace
	_, _, _ = tr.Push(3, u(7))

	cp, err := tr.At(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cp.Block)
	assert.Equal(t, uint64(7), cp.Value.Uint64())

	_, err = tr.At(1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrace_ManyCheckpoints(t *testing.T) {
	var tr Trace
	for b := uint64(1); b <= 1000; b++ {
		_, _, err := tr.Push(b*2, u(b))
		require.NoError(t, err)
	}
	v := tr.UpperLookup(1001)
	assert.Equal(t, uint64(500), v.Uint64())
	v = tr.UpperLookup(1)
	assert.True(t, v.IsZero())
}
