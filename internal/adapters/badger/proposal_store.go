// Package badger persists proposal records in an embedded badger database.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v2"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

const keyPrefix = "proposal:"

// ProposalStoreAdapter implements ProposalStore on badger. The database is
// opened on first use so commands that never touch the store do not take
// the directory lock.
type ProposalStoreAdapter struct {
	dir string

	mu sync.Mutex
	db *badger.DB
}

// NewProposalStoreAdapter creates a new ProposalStoreAdapter rooted at
// <DataDir>/proposals.db
func NewProposalStoreAdapter(cfg *config.RuntimeConfig) *ProposalStoreAdapter {
	return &ProposalStoreAdapter{dir: filepath.Join(cfg.DataDir, "proposals.db")}
}

func (s *ProposalStoreAdapter) open() (*badger.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	// badger creates the database directory but not its parents
	if err := os.MkdirAll(filepath.Dir(s.dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(s.dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open proposal database %s: %w", s.dir, err)
	}
	s.db = db
	return db, nil
}

// Close releases the database if it was opened.
func (s *ProposalStoreAdapter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func recordKey(scenario, id string) []byte {
	return []byte(keyPrefix + scenario + ":" + id)
}

// scanPrefix narrows the iteration to one scenario when the filter names it.
func scanPrefix(filter domain.ProposalFilter) []byte {
	if filter.Scenario != "" {
		return []byte(keyPrefix + filter.Scenario + ":")
	}
	return []byte(keyPrefix)
}

// SaveProposal inserts or replaces a record.
func (s *ProposalStoreAdapter) SaveProposal(_ context.Context, record *domain.ProposalRecord) error {
	db, err := s.open()
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(record.Scenario, record.ID), data)
	})
}

// GetProposal returns one record.
func (s *ProposalStoreAdapter) GetProposal(_ context.Context, scenario, id string) (*domain.ProposalRecord, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}

	var rec domain.ProposalRecord
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(scenario, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: proposal %s in scenario %s", domain.ErrNotFound, id, scenario)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal: %w", err)
	}
	return &rec, nil
}

// ListProposals returns the records matching filter in key order.
func (s *ProposalStoreAdapter) ListProposals(_ context.Context, filter domain.ProposalFilter) ([]*domain.ProposalRecord, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}

	var out []*domain.ProposalRecord
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := scanPrefix(filter)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec domain.ProposalRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %s: %w", it.Item().Key(), err)
			}
			if filter.Matches(&rec) {
				out = append(out, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return out, nil
}

// Ensure ProposalStoreAdapter implements ProposalStore
var _ usecase.ProposalStore = (*ProposalStoreAdapter)(nil)
