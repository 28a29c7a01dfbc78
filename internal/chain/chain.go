// Package chain provides the block clock and the single writer lock that
// serialises every governance state transition.
package chain

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBlockTime matches the average block interval of the target network.
const DefaultBlockTime = 30 * time.Second

// Chain is an automining ledger clock. Each successful Execute lands in its
// own block; reads observe sealed blocks only.
//
// BlockNumber and Timestamp describe the pending block, i.e. the block the
// next operation is included in. They are read atomically so components can
// consult the clock while the writer lock is held.
type Chain struct {
	mu sync.RWMutex

	head      atomic.Uint64
	headTime  atomic.Uint64
	blockTime uint64
}

// New starts a chain at block 0 with the given genesis time.
func New(genesis time.Time, blockTime time.Duration) *Chain {
	if blockTime <= 0 {
		blockTime = DefaultBlockTime
	}
	c := &Chain{blockTime: uint64(blockTime / time.Second)}
	if c.blockTime == 0 {
		c.blockTime = 1
	}
	c.headTime.Store(uint64(genesis.Unix()))
	return c
}

// BlockNumber returns the pending block number.
func (c *Chain) BlockNumber() uint64 {
	return c.head.Load() + 1
}

// Timestamp returns the pending block timestamp in seconds.
func (c *Chain) Timestamp() uint64 {
	return c.headTime.Load() + c.blockTime
}

// Head returns the latest sealed block number.
func (c *Chain) Head() uint64 {
	return c.head.Load()
}

// Execute runs fn as a transaction in the pending block. The block is sealed
// only when fn succeeds, so a rejected operation leaves the clock untouched.
func (c *Chain) Execute(fn func() error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := c.BlockNumber()
	if err := fn(); err != nil {
		return block, err
	}
	c.seal(1)
	return block, nil
}

// View runs fn under the read lock.
func (c *Chain) View(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}

// Mine seals n empty blocks.
func (c *Chain) Mine(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seal(n)
}

// IncreaseTime moves the clock forward by d and seals one block.
func (c *Chain) IncreaseTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.headTime.Add(uint64(d / time.Second))
	}
	c.seal(1)
}

func (c *Chain) seal(n uint64) {
	c.head.Add(n)
	c.headTime.Add(n * c.blockTime)
}
