package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// ProposalRenderer renders a single proposal record in detail
type ProposalRenderer struct {
	out   io.Writer
	color bool
}

// NewProposalRenderer creates a new proposal renderer
func NewProposalRenderer(out io.Writer, color bool) *ProposalRenderer {
	return &ProposalRenderer{
		out:   out,
		color: color,
	}
}

func (r *ProposalRenderer) Render(rec *domain.ProposalRecord) error {
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("Proposal"), rec.ID)
	fmt.Fprintf(r.out, "%s\n\n", stateStyle(rec.State).Sprintf("[%s]", rec.State))

	r.field("Scenario", rec.Scenario)
	r.field("Proposer", addressStyle.Sprint(rec.Proposer))
	r.field("Snapshot", fmt.Sprintf("block %d", rec.Snapshot))
	r.field("Deadline", fmt.Sprintf("block %d", rec.Deadline))
	if rec.ETA != 0 {
		r.field("ETA", fmt.Sprintf("%d", rec.ETA))
	}
	r.field("Recorded", rec.RecordedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Sprint("Votes"))
	total := sumAmounts(rec.Votes.For, rec.Votes.Against, rec.Votes.Abstain)
	r.vote(forStyle.Sprint("For"), rec.Votes.For, total)
	r.vote(againstStyle.Sprint("Against"), rec.Votes.Against, total)
	r.vote(abstainStyle.Sprint("Abstain"), rec.Votes.Abstain, total)
	quorumReached := sumAmounts(rec.Votes.For, rec.Votes.Abstain)
	r.field("Quorum", fmt.Sprintf("%s (for+abstain %s)", rec.Quorum, quorumReached))

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s (%d)\n", headerStyle.Sprint("Calls"), len(rec.Calls))
	for i, call := range rec.Calls {
		fmt.Fprintf(r.out, "  %d. %s value=%s\n", i+1, addressStyle.Sprint(call.Target), call.Value)
		fmt.Fprintf(r.out, "     %s\n", labelStyle.Sprint(call.Data))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Sprint("Description"))
	fmt.Fprintln(r.out, rec.Description)
	return nil
}

func (r *ProposalRenderer) field(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-10s", label+":"), value)
}

func (r *ProposalRenderer) vote(label, amount, total string) {
	fmt.Fprintf(r.out, "  %-10s %s (%s)\n", label+":", amount, percentOf(amount, total))
}

// Ensure ProposalRenderer implements Renderer
var _ Renderer[*domain.ProposalRecord] = (*ProposalRenderer)(nil)
