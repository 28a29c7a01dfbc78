package checkpoint

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// DefaultCacheSize bounds the historical read cache of a Store.
const DefaultCacheSize = 4096

type cacheKey[K comparable] struct {
	key   K
	block uint64
}

// Store keeps one Trace per key. Writes are only accepted at or after the
// clock's current block, which makes every lookup strictly before the current
// block final; those lookups are served from an LRU cache.
type Store[K comparable] struct {
	clock  domain.Clock
	traces map[K]*Trace
	cache  *lru.Cache
}

// NewStore creates a store reading block numbers from clock. A cacheSize of
// zero uses DefaultCacheSize.
func NewStore[K comparable](clock domain.Clock, cacheSize int) (*Store[K], error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint cache: %w", err)
	}
	return &Store[K]{
		clock:  clock,
		traces: make(map[K]*Trace),
		cache:  cache,
	}, nil
}

// Write records value for key at block.
func (s *Store[K]) Write(key K, block uint64, value *uint256.Int) (prev, next uint256.Int, err error) {
	if current := s.clock.BlockNumber(); block < current {
		return prev, next, fmt.Errorf("%w: write at block %d, current block is %d", domain.ErrUnorderedCheckpoint, block, current)
	}
	t, ok := s.traces[key]
	if !ok {
		t = &Trace{}
		s.traces[key] = t
	}
	return t.Push(block, value)
}

// ReadAt returns the value for key at block, or zero if no checkpoint exists
// at or before it. Blocks after the current block fail with ErrOutOfRange.
func (s *Store[K]) ReadAt(key K, block uint64) (uint256.Int, error) {
	current := s.clock.BlockNumber()
	if block > current {
		return uint256.Int{}, domain.OutOfRangeError{Block: block, Current: current}
	}
	if block == current {
		return s.lookup(key, block), nil
	}

	ck := cacheKey[K]{key: key, block: block}
	if v, ok := s.cache.Get(ck); ok {
		return v.(uint256.Int), nil
	}
	v := s.lookup(key, block)
	s.cache.Add(ck, v)
	return v, nil
}

func (s *Store[K]) lookup(key K, block uint64) uint256.Int {
	t, ok := s.traces[key]
	if !ok {
		return uint256.Int{}
	}
	return t.UpperLookup(block)
}

// Latest returns the most recent value for key.
func (s *Store[K]) Latest(key K) uint256.Int {
	t, ok := s.traces[key]
	if !ok {
		return uint256.Int{}
	}
	return t.Latest()
}

// Count returns the number of checkpoints recorded for key.
func (s *Store[K]) Count(key K) int {
	t, ok := s.traces[key]
	if !ok {
		return 0
	}
	return t.Len()
}

// At returns the i-th checkpoint of key.
func (s *Store[K]) At(key K, i int) (Checkpoint, error) {
	t, ok := s.traces[key]
	if !ok {
		return Checkpoint{}, fmt.Errorf("%w: no checkpoints", domain.ErrNotFound)
	}
	return t.At(i)
}
