package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventType string

const (
	EventTypeTransfer               EventType = "Transfer"
	EventTypeDelegateChanged        EventType = "DelegateChanged"
	EventTypeDelegateVotesChanged   EventType = "DelegateVotesChanged"
	EventTypeProposalCreated        EventType = "ProposalCreated"
	EventTypeVoteCast               EventType = "VoteCast"
	EventTypeProposalQueued         EventType = "ProposalQueued"
	EventTypeProposalExecuted       EventType = "ProposalExecuted"
	EventTypeProposalCanceled       EventType = "ProposalCanceled"
	EventTypeCallScheduled          EventType = "CallScheduled"
	EventTypeCallSalt               EventType = "CallSalt"
	EventTypeCallExecuted           EventType = "CallExecuted"
	EventTypeCancelled              EventType = "Cancelled"
	EventTypeMinDelayChange         EventType = "MinDelayChange"
	EventTypeRoleGranted            EventType = "RoleGranted"
	EventTypeRoleRevoked            EventType = "RoleRevoked"
	EventTypeVotingDelaySet         EventType = "VotingDelaySet"
	EventTypeVotingPeriodSet        EventType = "VotingPeriodSet"
	EventTypeProposalThresholdSet   EventType = "ProposalThresholdSet"
	EventTypeQuorumNumeratorUpdated EventType = "QuorumNumeratorUpdated"
	EventTypeGuardianSet            EventType = "GuardianSet"
)

// Event is emitted by every successful state transition. Operations return
// their events in emission order.
type Event interface {
	EventName() string
	String() string
}

func short(a common.Address) string {
	return a.Hex()[:10] + "..."
}

type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value uint256.Int
}

func (TransferEvent) EventName() string { return string(EventTypeTransfer) }

func (e TransferEvent) String() string {
	return fmt.Sprintf("%s: from=%s, to=%s, value=%s", e.EventName(), short(e.From), short(e.To), e.Value.Dec())
}

type DelegateChangedEvent struct {
	Delegator    common.Address
	FromDelegate common.Address
	ToDelegate   common.Address
}

func (DelegateChangedEvent) EventName() string { return string(EventTypeDelegateChanged) }

func (e DelegateChangedEvent) String() string {
	return fmt.Sprintf("%s: delegator=%s, from=%s, to=%s",
		e.EventName(), short(e.Delegator), short(e.FromDelegate), short(e.ToDelegate))
}

type DelegateVotesChangedEvent struct {
	Delegate      common.Address
	PreviousVotes uint256.Int
	NewVotes      uint256.Int
}

func (DelegateVotesChangedEvent) EventName() string { return string(EventTypeDelegateVotesChanged) }

func (e DelegateVotesChangedEvent) String() string {
	return fmt.Sprintf("%s: delegate=%s, previous=%s, new=%s",
		e.EventName(), short(e.Delegate), e.PreviousVotes.Dec(), e.NewVotes.Dec())
}

type ProposalCreatedEvent struct {
	ProposalID  ProposalID
	Proposer    common.Address
	Calls       []Call
	VoteStart   uint64
	VoteEnd     uint64
	Description string
}

func (ProposalCreatedEvent) EventName() string { return string(EventTypeProposalCreated) }

func (e ProposalCreatedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, proposer=%s, calls=%d, start=%d, end=%d",
		e.EventName(), e.ProposalID.Short(), short(e.Proposer), len(e.Calls), e.VoteStart, e.VoteEnd)
}

type VoteCastEvent struct {
	Voter      common.Address
	ProposalID ProposalID
	Support    VoteType
	Weight     uint256.Int
	Reason     string
}

func (VoteCastEvent) EventName() string { return string(EventTypeVoteCast) }

func (e VoteCastEvent) String() string {
	return fmt.Sprintf("%s: voter=%s, id=%s, support=%s, weight=%s",
		e.EventName(), short(e.Voter), e.ProposalID.Short(), e.Support, e.Weight.Dec())
}

type ProposalQueuedEvent struct {
	ProposalID ProposalID
	ETA        uint64
}

func (ProposalQueuedEvent) EventName() string { return string(EventTypeProposalQueued) }

func (e ProposalQueuedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, eta=%d", e.EventName(), e.ProposalID.Short(), e.ETA)
}

type ProposalExecutedEvent struct {
	ProposalID ProposalID
}

func (ProposalExecutedEvent) EventName() string { return string(EventTypeProposalExecuted) }

func (e ProposalExecutedEvent) String() string {
	return fmt.Sprintf("%s: id=%s", e.EventName(), e.ProposalID.Short())
}

type ProposalCanceledEvent struct {
	ProposalID ProposalID
}

func (ProposalCanceledEvent) EventName() string { return string(EventTypeProposalCanceled) }

func (e ProposalCanceledEvent) String() string {
	return fmt.Sprintf("%s: id=%s", e.EventName(), e.ProposalID.Short())
}

// CallScheduledEvent is emitted once per call of a scheduled timelock operation.
type CallScheduledEvent struct {
	ID          common.Hash
	Index       int
	Target      common.Address
	Value       uint256.Int
	Data        []byte
	Predecessor common.Hash
	Delay       uint64
}

func (CallScheduledEvent) EventName() string { return string(EventTypeCallScheduled) }

func (e CallScheduledEvent) String() string {
	return fmt.Sprintf("%s: id=%s, index=%d, target=%s, delay=%ds",
		e.EventName(), e.ID.Hex()[:10]+"...", e.Index, short(e.Target), e.Delay)
}

type CallSaltEvent struct {
	ID   common.Hash
	Salt common.Hash
}

func (CallSaltEvent) EventName() string { return string(EventTypeCallSalt) }

func (e CallSaltEvent) String() string {
	return fmt.Sprintf("%s: id=%s, salt=%s", e.EventName(), e.ID.Hex()[:10]+"...", e.Salt.Hex()[:10]+"...")
}

type CallExecutedEvent struct {
	ID     common.Hash
	Index  int
	Target common.Address
	Value  uint256.Int
	Data   []byte
}

func (CallExecutedEvent) EventName() string { return string(EventTypeCallExecuted) }

func (e CallExecutedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, index=%d, target=%s",
		e.EventName(), e.ID.Hex()[:10]+"...", e.Index, short(e.Target))
}

// CancelledEvent is the timelock's cancellation event.
type CancelledEvent struct {
	ID common.Hash
}

func (CancelledEvent) EventName() string { return string(EventTypeCancelled) }

func (e CancelledEvent) String() string {
	return fmt.Sprintf("%s: id=%s", e.EventName(), e.ID.Hex()[:10]+"...")
}

type MinDelayChangeEvent struct {
	OldDuration uint64
	NewDuration uint64
}

func (MinDelayChangeEvent) EventName() string { return string(EventTypeMinDelayChange) }

func (e MinDelayChangeEvent) String() string {
	return fmt.Sprintf("%s: old=%ds, new=%ds", e.EventName(), e.OldDuration, e.NewDuration)
}

type RoleGrantedEvent struct {
	Role    Role
	Account common.Address
	Sender  common.Address
}

func (RoleGrantedEvent) EventName() string { return string(EventTypeRoleGranted) }

func (e RoleGrantedEvent) String() string {
	return fmt.Sprintf("%s: role=%s, account=%s, sender=%s", e.EventName(), e.Role, short(e.Account), short(e.Sender))
}

type RoleRevokedEvent struct {
	Role    Role
	Account common.Address
	Sender  common.Address
}

func (RoleRevokedEvent) EventName() string { return string(EventTypeRoleRevoked) }

func (e RoleRevokedEvent) String() string {
	return fmt.Sprintf("%s: role=%s, account=%s, sender=%s", e.EventName(), e.Role, short(e.Account), short(e.Sender))
}

type VotingDelaySetEvent struct {
	OldVotingDelay uint64
	NewVotingDelay uint64
}

func (VotingDelaySetEvent) EventName() string { return string(EventTypeVotingDelaySet) }

func (e VotingDelaySetEvent) String() string {
	return fmt.Sprintf("%s: old=%d, new=%d", e.EventName(), e.OldVotingDelay, e.NewVotingDelay)
}

type VotingPeriodSetEvent struct {
	OldVotingPeriod uint64
	NewVotingPeriod uint64
}

func (VotingPeriodSetEvent) EventName() string { return string(EventTypeVotingPeriodSet) }

func (e VotingPeriodSetEvent) String() string {
	return fmt.Sprintf("%s: old=%d, new=%d", e.EventName(), e.OldVotingPeriod, e.NewVotingPeriod)
}

type ProposalThresholdSetEvent struct {
	OldProposalThreshold uint256.Int
	NewProposalThreshold uint256.Int
}

func (ProposalThresholdSetEvent) EventName() string { return string(EventTypeProposalThresholdSet) }

func (e ProposalThresholdSetEvent) String() string {
	return fmt.Sprintf("%s: old=%s, new=%s", e.EventName(), e.OldProposalThreshold.Dec(), e.NewProposalThreshold.Dec())
}

type QuorumNumeratorUpdatedEvent struct {
	OldQuorumNumerator uint64
	NewQuorumNumerator uint64
}

func (QuorumNumeratorUpdatedEvent) EventName() string { return string(EventTypeQuorumNumeratorUpdated) }

func (e QuorumNumeratorUpdatedEvent) String() string {
	return fmt.Sprintf("%s: old=%d, new=%d", e.EventName(), e.OldQuorumNumerator, e.NewQuorumNumerator)
}

type GuardianSetEvent struct {
	OldGuardian common.Address
	NewGuardian common.Address
}

func (GuardianSetEvent) EventName() string { return string(EventTypeGuardianSet) }

func (e GuardianSetEvent) String() string {
	return fmt.Sprintf("%s: old=%s, new=%s", e.EventName(), short(e.OldGuardian), short(e.NewGuardian))
}
