package governor

import (
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// StateAndVotes is a consistent view of a proposal's state and tallies.
type StateAndVotes struct {
	ID      domain.ProposalID
	State   domain.ProposalState
	Against uint256.Int
	For     uint256.Int
	Abstain uint256.Int
}

// GetStateAndVotes reads state and tallies of id in one pass.
func (g *Governor) GetStateAndVotes(id domain.ProposalID) (StateAndVotes, error) {
	p, err := g.get(id)
	if err != nil {
		return StateAndVotes{}, err
	}
	st, err := g.state(p)
	if err != nil {
		return StateAndVotes{}, err
	}
	return StateAndVotes{
		ID:      id,
		State:   st,
		Against: p.votes.Against,
		For:     p.votes.For,
		Abstain: p.votes.Abstain,
	}, nil
}

// GetStatesAndVotes is the batch form of GetStateAndVotes. It fails on the
// first unknown id.
func (g *Governor) GetStatesAndVotes(ids []domain.ProposalID) ([]StateAndVotes, error) {
	out := make([]StateAndVotes, 0, len(ids))
	for _, id := range ids {
		sv, err := g.GetStateAndVotes(id)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, nil
}
