package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OperationState is the lifecycle of a timelock operation.
type OperationState uint8

const (
	OperationUnset OperationState = iota
	OperationWaiting
	OperationReady
	OperationDone
)

func (s OperationState) String() string {
	switch s {
	case OperationUnset:
		return "Unset"
	case OperationWaiting:
		return "Waiting"
	case OperationReady:
		return "Ready"
	case OperationDone:
		return "Done"
	default:
		return fmt.Sprintf("OperationState(%d)", uint8(s))
	}
}

// Role is an access-control role identifier.
type Role common.Hash

var (
	DefaultAdminRole = Role{}
	ProposerRole     = Role(crypto.Keccak256Hash([]byte("PROPOSER_ROLE")))
	ExecutorRole     = Role(crypto.Keccak256Hash([]byte("EXECUTOR_ROLE")))
	CancellerRole    = Role(crypto.Keccak256Hash([]byte("CANCELLER_ROLE")))
)

// AllRoles lists the well-known roles, admin first.
func AllRoles() []Role {
	return []Role{DefaultAdminRole, ProposerRole, ExecutorRole, CancellerRole}
}

var roleNames = map[Role]string{
	DefaultAdminRole: "DEFAULT_ADMIN_ROLE",
	ProposerRole:     "PROPOSER_ROLE",
	ExecutorRole:     "EXECUTOR_ROLE",
	CancellerRole:    "CANCELLER_ROLE",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return common.Hash(r).Hex()
}

// ParseRole accepts a well-known role name or a 0x-prefixed 32-byte hash.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	if len(s) == 66 && s[:2] == "0x" {
		return Role(common.HexToHash(s)), nil
	}
	return Role{}, fmt.Errorf("unknown role %q", s)
}
