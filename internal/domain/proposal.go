package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ProposalID identifies a proposal; it is the uint256 reading of the keccak
// hash over the proposal's calls and description hash.
type ProposalID uint256.Int

// ProposalIDFromHash converts a 32-byte hash to a proposal id.
func ProposalIDFromHash(h common.Hash) ProposalID {
	var v uint256.Int
	v.SetBytes32(h[:])
	return ProposalID(v)
}

// ParseProposalID accepts a decimal or 0x-prefixed hex id.
func ParseProposalID(s string) (ProposalID, error) {
	s = strings.TrimSpace(s)
	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = n.SetString(s[2:], 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok || n.Sign() < 0 {
		return ProposalID{}, fmt.Errorf("invalid proposal id %q", s)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return ProposalID{}, fmt.Errorf("proposal id %q exceeds 256 bits", s)
	}
	return ProposalID(*v), nil
}

func (id ProposalID) Int() *uint256.Int {
	v := uint256.Int(id)
	return &v
}

// Hash returns the id as a 32-byte big-endian word.
func (id ProposalID) Hash() common.Hash {
	return common.Hash(id.Int().Bytes32())
}

func (id ProposalID) Hex() string {
	return id.Hash().Hex()
}

// Short returns an abbreviated hex form for display.
func (id ProposalID) Short() string {
	h := id.Hex()
	return h[:10] + "..." + h[len(h)-4:]
}

func (id ProposalID) String() string {
	return id.Int().Dec()
}

// ProposalState mirrors the on-chain governor enum; the numeric order matters
// for callers that persist or compare raw values.
type ProposalState uint8

const (
	ProposalPending ProposalState = iota
	ProposalActive
	ProposalCanceled
	ProposalDefeated
	ProposalSucceeded
	ProposalQueued
	ProposalExpired
	ProposalExecuted
)

var proposalStateNames = [...]string{
	"Pending", "Active", "Canceled", "Defeated", "Succeeded", "Queued", "Expired", "Executed",
}

func (s ProposalState) String() string {
	if int(s) < len(proposalStateNames) {
		return proposalStateNames[s]
	}
	return fmt.Sprintf("ProposalState(%d)", uint8(s))
}

// IsTerminal reports whether no further transition is possible.
func (s ProposalState) IsTerminal() bool {
	return s == ProposalCanceled || s == ProposalDefeated || s == ProposalExpired || s == ProposalExecuted
}

// AllProposalStates lists every state in enum order.
func AllProposalStates() []ProposalState {
	out := make([]ProposalState, len(proposalStateNames))
	for i := range out {
		out[i] = ProposalState(i)
	}
	return out
}

// ParseProposalState is case-insensitive.
func ParseProposalState(s string) (ProposalState, error) {
	for i, name := range proposalStateNames {
		if strings.EqualFold(name, s) {
			return ProposalState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown proposal state %q", s)
}

// VoteType is the support value of a ballot.
type VoteType uint8

const (
	VoteAgainst VoteType = iota
	VoteFor
	VoteAbstain
)

func (v VoteType) String() string {
	switch v {
	case VoteAgainst:
		return "Against"
	case VoteFor:
		return "For"
	case VoteAbstain:
		return "Abstain"
	default:
		return fmt.Sprintf("VoteType(%d)", uint8(v))
	}
}

func (v VoteType) Valid() bool {
	return v <= VoteAbstain
}

func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "against", "0":
		return VoteAgainst, nil
	case "for", "1":
		return VoteFor, nil
	case "abstain", "2":
		return VoteAbstain, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidVoteType, s)
	}
}

// ProposalVotes holds the running tallies of a proposal.
type ProposalVotes struct {
	Against uint256.Int
	For     uint256.Int
	Abstain uint256.Int
}

// Call is a single target/value/calldata triple of a proposal or timelock batch.
type Call struct {
	Target common.Address
	Value  *uint256.Int
	Data   []byte
}

// Copy returns a deep copy of c. A nil value copies as zero.
func (c Call) Copy() Call {
	v := new(uint256.Int)
	if c.Value != nil {
		v.Set(c.Value)
	}
	return Call{Target: c.Target, Value: v, Data: append([]byte{}, c.Data...)}
}

// CopyCalls deep-copies a call bundle.
func CopyCalls(calls []Call) []Call {
	out := make([]Call, len(calls))
	for i, c := range calls {
		out[i] = c.Copy()
	}
	return out
}

// ProposalDetails is a read-only view of a proposal.
type ProposalDetails struct {
	ID              ProposalID
	Proposer        common.Address
	Calls           []Call
	Description     string
	DescriptionHash common.Hash
	Snapshot        uint64
	Deadline        uint64
	ETA             uint64
	Votes           ProposalVotes
	State           ProposalState
}
