package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// MockProposalStore is a mock implementation of ProposalStore
type MockProposalStore struct {
	mock.Mock
}

func (m *MockProposalStore) SaveProposal(ctx context.Context, record *domain.ProposalRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProposalStore) GetProposal(ctx context.Context, scenario, id string) (*domain.ProposalRecord, error) {
	args := m.Called(ctx, scenario, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProposalRecord), args.Error(1)
}

func (m *MockProposalStore) ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]*domain.ProposalRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProposalRecord), args.Error(1)
}

// MockScenarioSource is a mock implementation of ScenarioSource
type MockScenarioSource struct {
	mock.Mock
}

func (m *MockScenarioSource) LoadScenario(ctx context.Context, path string) (*domain.Scenario, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scenario), args.Error(1)
}

// MockProposalSelector is a mock implementation of ProposalSelector
type MockProposalSelector struct {
	mock.Mock
}

func (m *MockProposalSelector) SelectProposal(ctx context.Context, records []*domain.ProposalRecord, prompt string) (*domain.ProposalRecord, error) {
	args := m.Called(ctx, records, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProposalRecord), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(string)  {}
func (m *MockProgressSink) Error(string) {}

func (m *MockProgressSink) stages() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Stage
	}
	return out
}
