package governor

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

const settingsABIJSON = `[
	{"type":"function","name":"setVotingDelay","stateMutability":"nonpayable","inputs":[{"name":"newVotingDelay","type":"uint48"}],"outputs":[]},
	{"type":"function","name":"setVotingPeriod","stateMutability":"nonpayable","inputs":[{"name":"newVotingPeriod","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"setProposalThreshold","stateMutability":"nonpayable","inputs":[{"name":"newProposalThreshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"updateQuorumNumerator","stateMutability":"nonpayable","inputs":[{"name":"newQuorumNumerator","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setGuardian","stateMutability":"nonpayable","inputs":[{"name":"newGuardian","type":"address"}],"outputs":[]}
]`

// SettingsABI lists the governance-only setters of the governor.
var SettingsABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(settingsABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid settings abi: %v", err))
	}
	return parsed
}()

func EncodeSetVotingDelay(blocks uint64) ([]byte, error) {
	return SettingsABI.Pack("setVotingDelay", new(big.Int).SetUint64(blocks))
}

func EncodeSetVotingPeriod(blocks uint32) ([]byte, error) {
	return SettingsABI.Pack("setVotingPeriod", blocks)
}

func EncodeSetProposalThreshold(threshold *uint256.Int) ([]byte, error) {
	return SettingsABI.Pack("setProposalThreshold", threshold.ToBig())
}

func EncodeUpdateQuorumNumerator(numerator uint64) ([]byte, error) {
	return SettingsABI.Pack("updateQuorumNumerator", new(big.Int).SetUint64(numerator))
}

func EncodeSetGuardian(guardian common.Address) ([]byte, error) {
	return SettingsABI.Pack("setGuardian", guardian)
}

// Prepare makes the governor a call target: its settings can only be changed
// by calls coming from the governance executor.
func (g *Governor) Prepare(sender common.Address, _ *uint256.Int, data []byte) (timelock.Effect, error) {
	if len(data) == 0 {
		return func() []domain.Event { return nil }, nil
	}
	if sender != g.Executor() {
		return nil, domain.UnauthorizedError{Caller: sender, Need: "the governance executor"}
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short calldata", domain.ErrUnknownCall)
	}
	method, err := SettingsABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknownCall, err)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", method.Name, err)
	}

	switch method.Name {
	case "setVotingDelay":
		v := args[0].(*big.Int).Uint64()
		return func() []domain.Event {
			old := g.votingDelay
			g.votingDelay = v
			return []domain.Event{domain.VotingDelaySetEvent{OldVotingDelay: old, NewVotingDelay: v}}
		}, nil

	case "setVotingPeriod":
		v := uint64(args[0].(uint32))
		if v == 0 {
			return nil, fmt.Errorf("%w: voting period must be positive", domain.ErrInvalidSetting)
		}
		return func() []domain.Event {
			old := g.votingPeriod
			g.votingPeriod = v
			return []domain.Event{domain.VotingPeriodSetEvent{OldVotingPeriod: old, NewVotingPeriod: v}}
		}, nil

	case "setProposalThreshold":
		v, overflow := uint256.FromBig(args[0].(*big.Int))
		if overflow {
			return nil, fmt.Errorf("%w: threshold overflows", domain.ErrInvalidSetting)
		}
		return func() []domain.Event {
			old := g.proposalThreshold
			g.proposalThreshold = *v
			return []domain.Event{domain.ProposalThresholdSetEvent{OldProposalThreshold: old, NewProposalThreshold: *v}}
		}, nil

	case "updateQuorumNumerator":
		n := args[0].(*big.Int)
		if !n.IsUint64() || n.Uint64() > QuorumDenominator {
			return nil, fmt.Errorf("%w: quorum numerator %s over %d", domain.ErrInvalidSetting, n, QuorumDenominator)
		}
		v := n.Uint64()
		return func() []domain.Event {
			old := g.QuorumNumerator()
			// the clock never moves backwards, so the push cannot be out of order
			_, _, _ = g.quorumNumerators.Push(g.clock.BlockNumber(), uint256.NewInt(v))
			return []domain.Event{domain.QuorumNumeratorUpdatedEvent{OldQuorumNumerator: old, NewQuorumNumerator: v}}
		}, nil

	case "setGuardian":
		v := args[0].(common.Address)
		return func() []domain.Event {
			old := g.guardian
			g.guardian = v
			return []domain.Event{domain.GuardianSetEvent{OldGuardian: old, NewGuardian: v}}
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCall, method.Name)
}
