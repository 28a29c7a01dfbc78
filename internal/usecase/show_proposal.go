package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
)

// ShowProposalParams contains parameters for showing a proposal
type ShowProposalParams struct {
	// Query is a proposal id (decimal or hex), a decimal id prefix, or a
	// case-insensitive fragment of the description.
	Query    string
	Scenario string
}

// ShowProposal is the use case for showing one recorded proposal
type ShowProposal struct {
	config   *config.RuntimeConfig
	store    ProposalStore
	selector ProposalSelector
	sink     ProgressSink
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(cfg *config.RuntimeConfig, store ProposalStore, selector ProposalSelector, sink ProgressSink) *ShowProposal {
	return &ShowProposal{
		config:   cfg,
		store:    store,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the show proposal use case
func (uc *ShowProposal) Run(ctx context.Context, params ShowProposalParams) (*domain.ProposalRecord, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading proposal records",
		Spinner: true,
	})

	records, err := uc.store.ListProposals(ctx, domain.ProposalFilter{Scenario: params.Scenario})
	if err != nil {
		return nil, err
	}

	matches := matchProposals(records, params.Query)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no proposal matches %q", domain.ErrNotFound, params.Query)
	case 1:
		return matches[0], nil
	}

	if uc.config.NonInteractive {
		return nil, fmt.Errorf("%d proposals match %q; narrow the query or pass --scenario", len(matches), params.Query)
	}
	sortProposals(matches)
	return uc.selector.SelectProposal(ctx, matches, fmt.Sprintf("Select proposal matching %q", params.Query))
}

// matchProposals prefers exact id matches, then id prefixes, then
// description fragments.
func matchProposals(records []*domain.ProposalRecord, query string) []*domain.ProposalRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	if id, err := domain.ParseProposalID(query); err == nil {
		var exact []*domain.ProposalRecord
		for _, rec := range records {
			if rec.ID == id.String() {
				exact = append(exact, rec)
			}
		}
		if len(exact) > 0 {
			return exact
		}
	}

	var byPrefix, byDescription []*domain.ProposalRecord
	lower := strings.ToLower(query)
	for _, rec := range records {
		if strings.HasPrefix(rec.ID, query) {
			byPrefix = append(byPrefix, rec)
		}
		if strings.Contains(strings.ToLower(rec.Description), lower) {
			byDescription = append(byDescription, rec)
		}
	}
	if len(byPrefix) > 0 {
		return byPrefix
	}
	return byDescription
}
