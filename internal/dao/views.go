package dao

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/governor"
)

// Params is a snapshot of the governor's live settings.
type Params struct {
	VotingDelay       uint64
	VotingPeriod      uint64
	ProposalThreshold uint256.Int
	QuorumNumerator   uint64
	GracePeriod       uint64
	Guardian          common.Address
	MinDelay          uint64
}

func (d *DAO) Params() Params {
	var p Params
	d.chain.View(func() {
		p = Params{
			VotingDelay:       d.governor.VotingDelay(),
			VotingPeriod:      d.governor.VotingPeriod(),
			ProposalThreshold: *d.governor.ProposalThreshold(),
			QuorumNumerator:   d.governor.QuorumNumerator(),
			GracePeriod:       d.governor.GracePeriod(),
			Guardian:          d.governor.Guardian(),
		}
		if d.timelock != nil {
			p.MinDelay = d.timelock.MinDelay()
		}
	})
	return p
}

func (d *DAO) State(id domain.ProposalID) (st domain.ProposalState, err error) {
	d.chain.View(func() { st, err = d.governor.State(id) })
	return
}

func (d *DAO) Proposal(id domain.ProposalID) (p *domain.ProposalDetails, err error) {
	d.chain.View(func() { p, err = d.governor.Proposal(id) })
	return
}

// Proposals returns every proposal in creation order.
func (d *DAO) Proposals() ([]*domain.ProposalDetails, error) {
	var out []*domain.ProposalDetails
	var err error
	d.chain.View(func() {
		for _, id := range d.governor.ProposalIDs() {
			var p *domain.ProposalDetails
			if p, err = d.governor.Proposal(id); err != nil {
				return
			}
			out = append(out, p)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DAO) GetStateAndVotes(id domain.ProposalID) (sv governor.StateAndVotes, err error) {
	d.chain.View(func() { sv, err = d.governor.GetStateAndVotes(id) })
	return
}

func (d *DAO) GetStatesAndVotes(ids []domain.ProposalID) (svs []governor.StateAndVotes, err error) {
	d.chain.View(func() { svs, err = d.governor.GetStatesAndVotes(ids) })
	return
}

func (d *DAO) HasVoted(id domain.ProposalID, account common.Address) (voted bool, err error) {
	d.chain.View(func() { voted, err = d.governor.HasVoted(id, account) })
	return
}

// Quorum returns the votes needed at block, which must be in the past.
func (d *DAO) Quorum(block uint64) (q *uint256.Int, err error) {
	d.chain.View(func() { q, err = d.governor.Quorum(block) })
	return
}

func (d *DAO) BalanceOf(account common.Address) (b *uint256.Int) {
	d.chain.View(func() { b = d.token.BalanceOf(account) })
	return
}

func (d *DAO) TotalSupply() (s *uint256.Int) {
	d.chain.View(func() { s = d.token.TotalSupply() })
	return
}

func (d *DAO) Delegates(account common.Address) (delegatee common.Address) {
	d.chain.View(func() { delegatee = d.token.Delegates(account) })
	return
}

func (d *DAO) GetVotes(account common.Address) (v *uint256.Int) {
	d.chain.View(func() { v = d.token.GetVotes(account) })
	return
}

func (d *DAO) GetPastVotes(account common.Address, block uint64) (v *uint256.Int, err error) {
	d.chain.View(func() { v, err = d.token.GetPastVotes(account, block) })
	return
}

func (d *DAO) GetPastTotalSupply(block uint64) (v *uint256.Int, err error) {
	d.chain.View(func() { v, err = d.token.GetPastTotalSupply(block) })
	return
}

// HasRole reports timelock role membership. Always false without a timelock.
func (d *DAO) HasRole(role domain.Role, account common.Address) (ok bool) {
	if d.timelock == nil {
		return false
	}
	d.chain.View(func() { ok = d.timelock.HasRole(role, account) })
	return
}

// RoleMembers lists the holders of a timelock role. Nil without a timelock.
func (d *DAO) RoleMembers(role domain.Role) (members []common.Address) {
	if d.timelock == nil {
		return nil
	}
	d.chain.View(func() { members = d.timelock.RoleMembers(role) })
	return
}

func (d *DAO) OperationState(id common.Hash) (st domain.OperationState) {
	if d.timelock == nil {
		return domain.OperationUnset
	}
	d.chain.View(func() { st = d.timelock.GetOperationState(id) })
	return
}
