package governor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// State derives the lifecycle state of a proposal from its record and the
// clock. A proposal is Pending until its snapshot block is sealed, Active up
// to and including its deadline block, and resolved afterwards.
func (g *Governor) State(id domain.ProposalID) (domain.ProposalState, error) {
	p, err := g.get(id)
	if err != nil {
		return 0, err
	}
	return g.state(p)
}

func (g *Governor) state(p *proposal) (domain.ProposalState, error) {
	if p.executed {
		return domain.ProposalExecuted, nil
	}
	if p.canceled {
		return domain.ProposalCanceled, nil
	}

	current := g.clock.BlockNumber()
	if current <= p.snapshot {
		return domain.ProposalPending, nil
	}
	if current <= p.deadline {
		return domain.ProposalActive, nil
	}

	succeeded, err := g.succeeded(p)
	if err != nil {
		return 0, err
	}
	if !succeeded {
		return domain.ProposalDefeated, nil
	}
	if !p.queued {
		return domain.ProposalSucceeded, nil
	}

	if g.timelock != nil {
		// the operation may have been executed or cancelled on the timelock directly
		switch g.timelock.GetOperationState(p.timelockID) {
		case domain.OperationDone:
			return domain.ProposalExecuted, nil
		case domain.OperationUnset:
			return domain.ProposalCanceled, nil
		}
	}
	if g.gracePeriod > 0 && g.clock.Timestamp() >= p.eta+g.gracePeriod {
		return domain.ProposalExpired, nil
	}
	return domain.ProposalQueued, nil
}

// succeeded: quorum reached and strictly more for than against votes.
func (g *Governor) succeeded(p *proposal) (bool, error) {
	quorum, err := g.Quorum(p.snapshot)
	if err != nil {
		return false, err
	}
	participation := new(uint256.Int).Add(&p.votes.For, &p.votes.Abstain)
	return !participation.Lt(quorum) && p.votes.For.Gt(&p.votes.Against), nil
}

// Quorum is the snapshot supply at block times the quorum numerator in
// effect at block, over QuorumDenominator.
func (g *Governor) Quorum(block uint64) (*uint256.Int, error) {
	supply, err := g.token.GetPastTotalSupply(block)
	if err != nil {
		return nil, err
	}
	numerator := g.quorumNumerators.UpperLookup(block)
	q := new(uint256.Int).Mul(supply, &numerator)
	return q.Div(q, uint256.NewInt(QuorumDenominator)), nil
}

// QuorumNumerator returns the current quorum percentage.
func (g *Governor) QuorumNumerator() uint64 {
	v := g.quorumNumerators.Latest()
	return v.Uint64()
}

// QuorumNumeratorAt returns the quorum percentage in effect at block.
func (g *Governor) QuorumNumeratorAt(block uint64) uint64 {
	v := g.quorumNumerators.UpperLookup(block)
	return v.Uint64()
}

func (g *Governor) VotingDelay() uint64 {
	return g.votingDelay
}

func (g *Governor) VotingPeriod() uint64 {
	return g.votingPeriod
}

func (g *Governor) ProposalThreshold() *uint256.Int {
	return new(uint256.Int).Set(&g.proposalThreshold)
}

func (g *Governor) GracePeriod() uint64 {
	return g.gracePeriod
}

func (g *Governor) Guardian() common.Address {
	return g.guardian
}

// ProposalSnapshot returns the block voting power is read at.
func (g *Governor) ProposalSnapshot(id domain.ProposalID) (uint64, error) {
	p, err := g.get(id)
	if err != nil {
		return 0, err
	}
	return p.snapshot, nil
}

// ProposalDeadline returns the last block of the voting window.
func (g *Governor) ProposalDeadline(id domain.ProposalID) (uint64, error) {
	p, err := g.get(id)
	if err != nil {
		return 0, err
	}
	return p.deadline, nil
}

// ProposalEta returns the timestamp a queued proposal becomes executable, or 0.
func (g *Governor) ProposalEta(id domain.ProposalID) (uint64, error) {
	p, err := g.get(id)
	if err != nil {
		return 0, err
	}
	return p.eta, nil
}

func (g *Governor) ProposalProposer(id domain.ProposalID) (common.Address, error) {
	p, err := g.get(id)
	if err != nil {
		return common.Address{}, err
	}
	return p.proposer, nil
}

// ProposalVotes returns the against, for and abstain tallies.
func (g *Governor) ProposalVotes(id domain.ProposalID) (domain.ProposalVotes, error) {
	p, err := g.get(id)
	if err != nil {
		return domain.ProposalVotes{}, err
	}
	return p.votes, nil
}

// HasVoted reports whether account cast a ballot on id.
func (g *Governor) HasVoted(id domain.ProposalID, account common.Address) (bool, error) {
	p, err := g.get(id)
	if err != nil {
		return false, err
	}
	_, ok := p.voters[account]
	return ok, nil
}

// Proposal returns a snapshot of the proposal and its current state.
func (g *Governor) Proposal(id domain.ProposalID) (*domain.ProposalDetails, error) {
	p, err := g.get(id)
	if err != nil {
		return nil, err
	}
	st, err := g.state(p)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state of %s: %w", id.Short(), err)
	}
	return &domain.ProposalDetails{
		ID:              p.id,
		Proposer:        p.proposer,
		Calls:           domain.CopyCalls(p.calls),
		Description:     p.description,
		DescriptionHash: p.descriptionHash,
		Snapshot:        p.snapshot,
		Deadline:        p.deadline,
		ETA:             p.eta,
		Votes:           p.votes,
		State:           st,
	}, nil
}

// ProposalIDs lists proposals in creation order.
func (g *Governor) ProposalIDs() []domain.ProposalID {
	return append([]domain.ProposalID(nil), g.order...)
}
