package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ProposalsRenderer renders proposal lists as tables grouped by scenario
type ProposalsRenderer struct {
	out   io.Writer
	color bool
}

// NewProposalsRenderer creates a new proposals renderer
func NewProposalsRenderer(out io.Writer, color bool) *ProposalsRenderer {
	return &ProposalsRenderer{
		out:   out,
		color: color,
	}
}

// Render prints one table per scenario followed by a state summary.
func (r *ProposalsRenderer) Render(result *usecase.ProposalListResult) error {
	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}

	groups := lo.GroupBy(result.Proposals, func(p *domain.ProposalRecord) string { return p.Scenario })
	scenarios := lo.Keys(groups)
	sort.Strings(scenarios)

	for i, scenario := range scenarios {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, headerStyle.Sprintf("◎ scenario: %s", scenario))
		fmt.Fprintln(r.out, r.table(groups[scenario]))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.summary(result.Summary))
	return nil
}

func (r *ProposalsRenderer) table(records []*domain.ProposalRecord) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:  "  ",
		PaddingRight: " ",
		MiddleHorizontal: "─",
	}

	t.AppendHeader(table.Row{"ID", "STATE", "FOR", "AGAINST", "ABSTAIN", "QUORUM", "DEADLINE", "DESCRIPTION"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, WidthMax: 48},
	})

	for _, rec := range records {
		t.AppendRow(table.Row{
			shortHex(rec.ID),
			stateStyle(rec.State).Sprint(rec.State),
			forStyle.Sprint(rec.Votes.For),
			againstStyle.Sprint(rec.Votes.Against),
			abstainStyle.Sprint(rec.Votes.Abstain),
			rec.Quorum,
			rec.Deadline,
			firstLine(rec.Description),
		})
	}
	return t.Render()
}

// summary renders "3 proposals: 2 Executed, 1 Defeated" in lifecycle order.
func (r *ProposalsRenderer) summary(s usecase.ProposalSummary) string {
	states := lo.Filter(domain.AllProposalStates(), func(st domain.ProposalState, _ int) bool {
		return s.ByState[st.String()] > 0
	})
	parts := lo.Map(states, func(st domain.ProposalState, _ int) string {
		return fmt.Sprintf("%d %s", s.ByState[st.String()], stateStyle(st.String()).Sprint(st.String()))
	})

	noun := "proposals"
	if s.Total == 1 {
		noun = "proposal"
	}
	return fmt.Sprintf("%d %s: %s", s.Total, noun, strings.Join(parts, ", "))
}

// Ensure ProposalsRenderer implements Renderer
var _ Renderer[*usecase.ProposalListResult] = (*ProposalsRenderer)(nil)
