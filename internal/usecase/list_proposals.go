package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// ListProposalsParams contains parameters for listing proposals
type ListProposalsParams struct {
	Scenario string
	State    string
}

// ListProposals is the use case for listing recorded proposals
type ListProposals struct {
	store ProposalStore
	sink  ProgressSink
}

// NewListProposals creates a new ListProposals use case
func NewListProposals(store ProposalStore, sink ProgressSink) *ListProposals {
	return &ListProposals{
		store: store,
		sink:  sink,
	}
}

// Run executes the list proposals use case
func (uc *ListProposals) Run(ctx context.Context, params ListProposalsParams) (*ProposalListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading proposal records",
		Spinner: true,
	})

	filter := domain.ProposalFilter{Scenario: params.Scenario}
	if params.State != "" {
		st, err := domain.ParseProposalState(params.State)
		if err != nil {
			return nil, err
		}
		filter.State = st.String()
	}

	proposals, err := uc.store.ListProposals(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortProposals(proposals)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(proposals),
		Total:   len(proposals),
		Message: "Proposals loaded",
	})

	return &ProposalListResult{
		Proposals: proposals,
		Summary:   calculateSummary(proposals),
	}, nil
}

// sortProposals orders by scenario, then snapshot block, then id
func sortProposals(records []*domain.ProposalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Scenario != records[j].Scenario {
			return records[i].Scenario < records[j].Scenario
		}
		if records[i].Snapshot != records[j].Snapshot {
			return records[i].Snapshot < records[j].Snapshot
		}
		return records[i].ID < records[j].ID
	})
}

func calculateSummary(records []*domain.ProposalRecord) ProposalSummary {
	summary := ProposalSummary{
		Total:      len(records),
		ByState:    make(map[string]int),
		ByScenario: make(map[string]int),
	}
	for _, rec := range records {
		summary.ByState[rec.State]++
		summary.ByScenario[rec.Scenario]++
	}
	return summary
}
