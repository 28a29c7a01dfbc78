package checkpoint

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

func TestStore_ReadAt(t *testing.T) {
	clock := &fakeClock{block: 10}
	s, err := NewStore[common.Address](clock, 0)
	require.NoError(t, err)

	alice := common.HexToAddress("0xa1")
	_, _, err = s.Write(alice, 10, u(50))
	require.NoError(t, err)

	t.Run("current block", func(t *testing.T) {
		v, err := s.ReadAt(alice, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(50), v.Uint64())
	})

	t.Run("future block", func(t *testing.T) {
		_, err := s.ReadAt(alice, 11)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	})

	t.Run("unknown key", func(t *testing.T) {
		v, err := s.ReadAt(common.HexToAddress("0xb2"), 5)
		require.NoError(t, err)
		assert.True(t, v.IsZero())
	})

	t.Run("write before current block rejected", func(t *testing.T) {
		_, _, err := s.Write(alice, 9, u(1))
		assert.ErrorIs(t, err, domain.ErrUnorderedCheckpoint)
	})
}

func TestStore_HistoricalReadsAreStable(t *testing.T) {
	clock := &fakeClock{block: 1}
	s, err := NewStore[common.Address](clock, 8)
	require.NoError(t, err)
	alice := common.HexToAddress("0xa1")

	_, _, err = s.Write(alice, 1, u(10))
	require.NoError(t, err)

	clock.block = 2
	before, err := s.ReadAt(alice, 1)
	require.NoError(t, err)

	_, _, err = s.Write(alice, 2, u(99))
	require.NoError(t, err)
	clock.block = 3
	_, _, err = s.Write(alice, 3, u(5))
	require.NoError(t, err)

	after, err := s.ReadAt(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(10), after.Uint64())

	at2, err := s.ReadAt(alice, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), at2.Uint64())

	assert.Equal(t, 3, s.Count(alice))
	latest := s.Latest(alice)
	assert.Equal(t, uint64(5), latest.Uint64())

	cp, err := s.At(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cp.Block)

	_, err = s.At(common.HexToAddress("0xb2"), 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
