package usecase

import (
	"context"

	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// ProposalStore persists proposal records produced by scenario runs
type ProposalStore interface {
	SaveProposal(ctx context.Context, record *domain.ProposalRecord) error
	GetProposal(ctx context.Context, scenario, id string) (*domain.ProposalRecord, error)
	ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]*domain.ProposalRecord, error)
}

// ScenarioSource loads scenario definitions
type ScenarioSource interface {
	LoadScenario(ctx context.Context, path string) (*domain.Scenario, error)
}

// ProposalSelector disambiguates between several matching proposals
type ProposalSelector interface {
	SelectProposal(ctx context.Context, records []*domain.ProposalRecord, prompt string) (*domain.ProposalRecord, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Use case result types

// ProposalListResult contains the result of listing proposals
type ProposalListResult struct {
	Proposals []*domain.ProposalRecord
	Summary   ProposalSummary
}

// ProposalSummary contains summary statistics
type ProposalSummary struct {
	Total      int
	ByState    map[string]int
	ByScenario map[string]int
}

// ScenarioResult is the outcome of a scenario run
type ScenarioResult struct {
	Scenario   string
	Steps      []StepResult
	Proposals  []*domain.ProposalRecord
	FinalBlock uint64
	FinalTime  uint64
}

// StepResult describes one applied scenario step
type StepResult struct {
	Index  int
	Action string
	Block  uint64
	Events []domain.Event
	// ExpectedError is set when the step failed as the scenario required.
	ExpectedError string
}
