package chain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_ExecuteSealsOnSuccess(t *testing.T) {
	genesis := time.Unix(1_700_000_000, 0)
	c := New(genesis, 12*time.Second)

	assert.Equal(t, uint64(1), c.BlockNumber())
	assert.Equal(t, uint64(1_700_000_012), c.Timestamp())

	block, err := c.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block)
	assert.Equal(t, uint64(1), c.Head())
	assert.Equal(t, uint64(2), c.BlockNumber())

	block, err = c.Execute(func() error { return errors.New("revert") })
	assert.Error(t, err)
	assert.Equal(t, uint64(2), block)
	assert.Equal(t, uint64(1), c.Head(), "failed operation is not included")
}

func TestChain_MineAndIncreaseTime(t *testing.T) {
	c := New(time.Unix(0, 0), 30*time.Second)

	c.Mine(10)
	assert.Equal(t, uint64(10), c.Head())
	assert.Equal(t, uint64(330), c.Timestamp())

	c.IncreaseTime(24 * time.Hour)
	assert.Equal(t, uint64(11), c.Head())
	assert.Equal(t, uint64(330+86400+30), c.Timestamp())
}

func TestChain_ClockReadableInsideExecute(t *testing.T) {
	c := New(time.Unix(0, 0), time.Second)

	var seen uint64
	_, err := c.Execute(func() error {
		seen = c.BlockNumber()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seen)
}

func TestChain_ConcurrentExecute(t *testing.T) {
	c := New(time.Unix(0, 0), time.Second)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Execute(func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	var got int
	c.View(func() { got = counter })
	assert.Equal(t, 50, got)
	assert.Equal(t, uint64(50), c.Head())
}
