package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectProposal asks the user to pick one of several matching proposals.
func (s *SelectorAdapter) SelectProposal(ctx context.Context, records []*domain.ProposalRecord, prompt string) (*domain.ProposalRecord, error) {
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no proposals provided for selection")
	}
	if len(records) == 1 {
		return records[0], nil
	}

	options := formatProposalOptions(records)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(plainProposalOptions(records)),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return records[index], nil
}

// formatProposalOptions renders "Description [State] scenario #id" lines.
func formatProposalOptions(records []*domain.ProposalRecord) []string {
	options := make([]string, len(records))
	for i, rec := range records {
		desc := color.New(color.FgWhite, color.Bold).Sprint(firstLine(rec.Description))
		state := stateColor(rec.State).Sprintf("[%s]", rec.State)
		where := color.New(color.FgBlue).Sprintf("%s #%s", rec.Scenario, shortID(rec.ID))
		options[i] = fmt.Sprintf("%s %s %s", desc, state, where)
	}
	return options
}

// plainProposalOptions is the uncolored search corpus for each option.
func plainProposalOptions(records []*domain.ProposalRecord) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = fmt.Sprintf("%s %s %s %s", rec.Description, rec.State, rec.Scenario, rec.ID)
	}
	return out
}

func stateColor(state string) *color.Color {
	switch state {
	case "Executed", "Succeeded":
		return color.New(color.FgGreen)
	case "Active", "Queued", "Pending":
		return color.New(color.FgYellow)
	case "Defeated", "Canceled", "Expired":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "…"
	}
	return id
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.ProposalSelector = (*SelectorAdapter)(nil)
