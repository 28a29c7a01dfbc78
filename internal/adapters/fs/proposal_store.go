package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// proposalFile is the on-disk layout of proposals.json
type proposalFile struct {
	Proposals map[string]*domain.ProposalRecord `json:"proposals"`
}

// ProposalStoreAdapter implements ProposalStore on a single JSON file
type ProposalStoreAdapter struct {
	mu   sync.Mutex
	path string
}

// NewProposalStoreAdapter creates a new ProposalStoreAdapter
func NewProposalStoreAdapter(cfg *config.RuntimeConfig) *ProposalStoreAdapter {
	return &ProposalStoreAdapter{
		path: filepath.Join(cfg.DataDir, "proposals.json"),
	}
}

func recordKey(scenario, id string) string {
	return scenario + "/" + id
}

// load reads the proposal file. Returns an empty file if it does not exist.
func (s *ProposalStoreAdapter) load() (*proposalFile, error) {
	file := &proposalFile{Proposals: make(map[string]*domain.ProposalRecord)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read proposals file: %w", err)
	}

	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse proposals file: %w", err)
	}
	if file.Proposals == nil {
		file.Proposals = make(map[string]*domain.ProposalRecord)
	}
	return file, nil
}

// SaveProposal inserts or replaces the record of a scenario proposal.
func (s *ProposalStoreAdapter) SaveProposal(_ context.Context, record *domain.ProposalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	file.Proposals[recordKey(record.Scenario, record.ID)] = record

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal proposals: %w", err)
	}

	// write to a temp file first so readers never see a partial file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write proposals file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace proposals file: %w", err)
	}
	return nil
}

// GetProposal returns one record.
func (s *ProposalStoreAdapter) GetProposal(_ context.Context, scenario, id string) (*domain.ProposalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := file.Proposals[recordKey(scenario, id)]
	if !ok {
		return nil, fmt.Errorf("%w: proposal %s in scenario %s", domain.ErrNotFound, id, scenario)
	}
	return rec, nil
}

// ListProposals returns the records matching filter, unordered.
func (s *ProposalStoreAdapter) ListProposals(_ context.Context, filter domain.ProposalFilter) ([]*domain.ProposalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []*domain.ProposalRecord
	for _, rec := range file.Proposals {
		if filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Ensure ProposalStoreAdapter implements ProposalStore
var _ usecase.ProposalStore = (*ProposalStoreAdapter)(nil)
