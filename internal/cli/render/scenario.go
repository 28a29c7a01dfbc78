package render

import (
	"fmt"
	"io"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ScenarioRenderer renders the outcome of a scenario run
type ScenarioRenderer struct {
	out     io.Writer
	color   bool
	verbose bool
}

// NewScenarioRenderer creates a new scenario renderer. Verbose prints every
// emitted event under its step.
func NewScenarioRenderer(out io.Writer, color, verbose bool) *ScenarioRenderer {
	return &ScenarioRenderer{
		out:     out,
		color:   color,
		verbose: verbose,
	}
}

func (r *ScenarioRenderer) Render(result *usecase.ScenarioResult) error {
	fmt.Fprintln(r.out, headerStyle.Sprintf("Scenario %s", result.Scenario))
	fmt.Fprintln(r.out)

	for _, step := range result.Steps {
		marker := forStyle.Sprint("✓")
		suffix := ""
		if step.ExpectedError != "" {
			marker = abstainStyle.Sprint("✗")
			suffix = labelStyle.Sprintf(" reverted with %s as expected", step.ExpectedError)
		}
		fmt.Fprintf(r.out, "  %s %3d. %-22s %s%s\n",
			marker, step.Index, step.Action, labelStyle.Sprintf("block %d", step.Block), suffix)

		if r.verbose {
			for _, ev := range step.Events {
				fmt.Fprintf(r.out, "         %s\n", eventStyle.Sprint(ev.String()))
			}
		}
	}

	fmt.Fprintln(r.out)
	final := time.Unix(int64(result.FinalTime), 0).UTC().Format(time.RFC3339)
	fmt.Fprintf(r.out, "%s block %d at %s\n", labelStyle.Sprint("Finished at"), result.FinalBlock, final)

	if len(result.Proposals) == 0 {
		return nil
	}

	fmt.Fprintln(r.out)
	list := &usecase.ProposalListResult{Proposals: result.Proposals, Summary: summarize(result)}
	return NewProposalsRenderer(r.out, r.color).Render(list)
}

func summarize(result *usecase.ScenarioResult) usecase.ProposalSummary {
	s := usecase.ProposalSummary{
		Total:      len(result.Proposals),
		ByState:    make(map[string]int),
		ByScenario: map[string]int{result.Scenario: len(result.Proposals)},
	}
	for _, p := range result.Proposals {
		s.ByState[p.State]++
	}
	return s
}

// Ensure ScenarioRenderer implements Renderer
var _ Renderer[*usecase.ScenarioResult] = (*ScenarioRenderer)(nil)
