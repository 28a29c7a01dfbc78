package timelock

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

const adminABIJSON = `[
	{"type":"function","name":"updateDelay","stateMutability":"nonpayable","inputs":[{"name":"newDelay","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"grantRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"revokeRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]}
]`

// AdminABI describes the calls the timelock accepts from its own executed operations.
var AdminABI = mustParseABI(adminABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %v", err))
	}
	return parsed
}

// EncodeUpdateDelay returns calldata for updateDelay(newDelay).
func EncodeUpdateDelay(seconds uint64) ([]byte, error) {
	return AdminABI.Pack("updateDelay", new(big.Int).SetUint64(seconds))
}

// EncodeGrantRole returns calldata for grantRole(role, account).
func EncodeGrantRole(role domain.Role, account common.Address) ([]byte, error) {
	return AdminABI.Pack("grantRole", [32]byte(role), account)
}

// EncodeRevokeRole returns calldata for revokeRole(role, account).
func EncodeRevokeRole(role domain.Role, account common.Address) ([]byte, error) {
	return AdminABI.Pack("revokeRole", [32]byte(role), account)
}

// adminTarget handles calls addressed to the timelock itself.
type adminTarget struct {
	t *Timelock
}

func (a *adminTarget) Prepare(sender common.Address, _ *uint256.Int, data []byte) (Effect, error) {
	if len(data) == 0 {
		return func() []domain.Event { return nil }, nil
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short calldata", domain.ErrUnknownCall)
	}
	method, err := AdminABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknownCall, err)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", method.Name, err)
	}

	t := a.t
	switch method.Name {
	case "updateDelay":
		if sender != t.address {
			return nil, domain.UnauthorizedError{Caller: sender, Need: "the timelock"}
		}
		newDelay := args[0].(*big.Int)
		if !newDelay.IsUint64() {
			return nil, fmt.Errorf("%w: delay %s", domain.ErrInvalidSetting, newDelay)
		}
		return func() []domain.Event {
			old := t.minDelay
			t.minDelay = newDelay.Uint64()
			return []domain.Event{domain.MinDelayChangeEvent{OldDuration: old, NewDuration: t.minDelay}}
		}, nil

	case "grantRole", "revokeRole":
		if err := t.checkRole(domain.DefaultAdminRole, sender); err != nil {
			return nil, err
		}
		role := domain.Role(args[0].([32]byte))
		account := args[1].(common.Address)
		if method.Name == "grantRole" {
			return func() []domain.Event { return t.roles.grant(role, account, sender) }, nil
		}
		return func() []domain.Event { return t.roles.revoke(role, account, sender) }, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCall, method.Name)
}
