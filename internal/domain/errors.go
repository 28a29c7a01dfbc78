package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Sentinel errors for governance operations
var (
	// ErrInsufficientProposerVotes is returned when a proposer holds fewer votes than the threshold
	ErrInsufficientProposerVotes = errors.New("insufficient proposer votes")

	// ErrDuplicateProposal is returned when a proposal with the same content already exists
	ErrDuplicateProposal = errors.New("duplicate proposal")

	// ErrProposalNotActive is returned when voting on a proposal outside its voting window
	ErrProposalNotActive = errors.New("proposal not active")

	// ErrAlreadyVoted is returned when an account votes twice on the same proposal
	ErrAlreadyVoted = errors.New("already voted")

	// ErrUnexpectedProposalState is returned when a transition is invalid for the current state
	ErrUnexpectedProposalState = errors.New("unexpected proposal state")

	// ErrNonexistentProposal is returned when a proposal id is unknown
	ErrNonexistentProposal = errors.New("nonexistent proposal")

	// ErrInvalidProposalLength is returned when targets, values and calldatas differ in length
	ErrInvalidProposalLength = errors.New("invalid proposal length")

	// ErrEmptyProposal is returned when a proposal carries no calls
	ErrEmptyProposal = errors.New("empty proposal")

	// ErrInvalidVoteType is returned for a support value outside against/for/abstain
	ErrInvalidVoteType = errors.New("invalid vote type")

	// ErrInsufficientDelay is returned when scheduling below the timelock minimum delay
	ErrInsufficientDelay = errors.New("insufficient delay")

	// ErrAlreadyScheduled is returned when an operation id is already known to the timelock
	ErrAlreadyScheduled = errors.New("operation already scheduled")

	// ErrNotReady is returned when executing an operation that is not ready
	ErrNotReady = errors.New("operation not ready")

	// ErrPredecessorNotExecuted is returned when an operation's predecessor is not done
	ErrPredecessorNotExecuted = errors.New("predecessor not executed")

	// ErrUnexpectedOperationState is returned when cancelling an operation that is not pending
	ErrUnexpectedOperationState = errors.New("unexpected operation state")

	// ErrOutOfRange is returned for lookups at a block that is not yet in the past
	ErrOutOfRange = errors.New("block out of range")

	// ErrUnauthorized is returned when the caller lacks the required role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidReceiver is returned for transfers or mints to an invalid address
	ErrInvalidReceiver = errors.New("invalid receiver")

	// ErrInvalidSender is returned for transfers from the zero address
	ErrInvalidSender = errors.New("invalid sender")

	// ErrInsufficientBalance is returned when an account's balance does not cover an amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDepositFailed is returned when a deposit moves no tokens
	ErrDepositFailed = errors.New("deposit failed")

	// ErrSupplyOverflow is returned when minting would exceed the maximum supply
	ErrSupplyOverflow = errors.New("supply overflow")

	// ErrUnorderedCheckpoint is returned when writing a checkpoint before the latest one
	ErrUnorderedCheckpoint = errors.New("unordered checkpoint")

	// ErrInvalidSetting is returned when a governance setting is out of bounds
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrUnknownCall is returned when calldata does not match any known method
	ErrUnknownCall = errors.New("unknown call")

	// ErrNotFound is returned when a stored record doesn't exist
	ErrNotFound = errors.New("not found")
)

// errorNames maps the taxonomy names used in scenario files to sentinels.
var errorNames = map[string]error{
	"InsufficientProposerVotes": ErrInsufficientProposerVotes,
	"DuplicateProposal":         ErrDuplicateProposal,
	"ProposalNotActive":         ErrProposalNotActive,
	"AlreadyVoted":              ErrAlreadyVoted,
	"UnexpectedProposalState":   ErrUnexpectedProposalState,
	"NonexistentProposal":       ErrNonexistentProposal,
	"InvalidProposalLength":     ErrInvalidProposalLength,
	"EmptyProposal":             ErrEmptyProposal,
	"InvalidVoteType":           ErrInvalidVoteType,
	"InsufficientDelay":         ErrInsufficientDelay,
	"AlreadyScheduled":          ErrAlreadyScheduled,
	"NotReady":                  ErrNotReady,
	"PredecessorNotExecuted":    ErrPredecessorNotExecuted,
	"UnexpectedOperationState":  ErrUnexpectedOperationState,
	"OutOfRange":                ErrOutOfRange,
	"Unauthorized":              ErrUnauthorized,
	"InvalidReceiver":           ErrInvalidReceiver,
	"InvalidSender":             ErrInvalidSender,
	"InsufficientBalance":       ErrInsufficientBalance,
	"DepositFailed":             ErrDepositFailed,
	"SupplyOverflow":            ErrSupplyOverflow,
	"UnorderedCheckpoint":       ErrUnorderedCheckpoint,
	"InvalidSetting":            ErrInvalidSetting,
	"UnknownCall":               ErrUnknownCall,
	"NotFound":                  ErrNotFound,
}

// ErrorByName returns the sentinel registered under name.
func ErrorByName(name string) (error, bool) {
	err, ok := errorNames[name]
	return err, ok
}

// ErrorName returns the taxonomy name of err, or "" when err wraps no known sentinel.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}
	for name, sentinel := range errorNames {
		if errors.Is(err, sentinel) {
			return name
		}
	}
	return ""
}

type InsufficientProposerVotesError struct {
	Proposer  common.Address
	Votes     *uint256.Int
	Threshold *uint256.Int
}

func (e InsufficientProposerVotesError) Error() string {
	return fmt.Sprintf("%s: proposer %s has %s votes, threshold is %s",
		ErrInsufficientProposerVotes, e.Proposer.Hex(), e.Votes.Dec(), e.Threshold.Dec())
}

func (e InsufficientProposerVotesError) Unwrap() error { return ErrInsufficientProposerVotes }

// UnexpectedStateError reports a proposal transition attempted from the wrong state.
type UnexpectedStateError struct {
	ProposalID ProposalID
	Current    ProposalState
	Expected   []ProposalState
}

func (e UnexpectedStateError) Error() string {
	return fmt.Sprintf("%s: proposal %s is %s, expected one of %v",
		ErrUnexpectedProposalState, e.ProposalID.Short(), e.Current, e.Expected)
}

func (e UnexpectedStateError) Unwrap() error { return ErrUnexpectedProposalState }

// UnauthorizedError reports a caller missing a role or ownership.
type UnauthorizedError struct {
	Caller common.Address
	Need   string
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s is not %s", ErrUnauthorized, e.Caller.Hex(), e.Need)
}

func (e UnauthorizedError) Unwrap() error { return ErrUnauthorized }

type OutOfRangeError struct {
	Block   uint64
	Current uint64
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: lookup at block %d, current block is %d", ErrOutOfRange, e.Block, e.Current)
}

func (e OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// OperationStateError reports a timelock operation in the wrong state.
type OperationStateError struct {
	ID    common.Hash
	State OperationState
	Err   error
}

func (e OperationStateError) Error() string {
	return fmt.Sprintf("%s: operation %s is %s", e.Err, e.ID.Hex()[:10]+"...", e.State)
}

func (e OperationStateError) Unwrap() error { return e.Err }
