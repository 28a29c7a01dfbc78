package timelock

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// roles is a role -> members table. Every role is administered by
// DefaultAdminRole.
type roles map[domain.Role]map[common.Address]struct{}

func (r roles) has(role domain.Role, account common.Address) bool {
	_, ok := r[role][account]
	return ok
}

func (r roles) grant(role domain.Role, account, sender common.Address) []domain.Event {
	if r.has(role, account) {
		return nil
	}
	if r[role] == nil {
		r[role] = make(map[common.Address]struct{})
	}
	r[role][account] = struct{}{}
	return []domain.Event{domain.RoleGrantedEvent{Role: role, Account: account, Sender: sender}}
}

func (r roles) revoke(role domain.Role, account, sender common.Address) []domain.Event {
	if !r.has(role, account) {
		return nil
	}
	delete(r[role], account)
	return []domain.Event{domain.RoleRevokedEvent{Role: role, Account: account, Sender: sender}}
}

// HasRole reports whether account holds role.
func (t *Timelock) HasRole(role domain.Role, account common.Address) bool {
	return t.roles.has(role, account)
}

// RoleMembers returns the holders of role ordered by address.
func (t *Timelock) RoleMembers(role domain.Role) []common.Address {
	members := make([]common.Address, 0, len(t.roles[role]))
	for a := range t.roles[role] {
		members = append(members, a)
	}
	slices.SortFunc(members, func(a, b common.Address) int { return a.Cmp(b) })
	return members
}

// GrantRole gives role to account. caller must hold DefaultAdminRole.
func (t *Timelock) GrantRole(caller common.Address, role domain.Role, account common.Address) ([]domain.Event, error) {
	if err := t.checkRole(domain.DefaultAdminRole, caller); err != nil {
		return nil, err
	}
	return t.roles.grant(role, account, caller), nil
}

// RevokeRole removes role from account. caller must hold DefaultAdminRole.
func (t *Timelock) RevokeRole(caller common.Address, role domain.Role, account common.Address) ([]domain.Event, error) {
	if err := t.checkRole(domain.DefaultAdminRole, caller); err != nil {
		return nil, err
	}
	return t.roles.revoke(role, account, caller), nil
}

// RenounceRole drops role from caller's own account.
func (t *Timelock) RenounceRole(caller common.Address, role domain.Role, account common.Address) ([]domain.Event, error) {
	if caller != account {
		return nil, domain.UnauthorizedError{Caller: caller, Need: "the renouncing account"}
	}
	return t.roles.revoke(role, account, caller), nil
}

func (t *Timelock) checkRole(role domain.Role, caller common.Address) error {
	if !t.roles.has(role, caller) {
		return domain.UnauthorizedError{Caller: caller, Need: role.String()}
	}
	return nil
}

// checkRoleOrOpen also passes when the zero address holds role.
func (t *Timelock) checkRoleOrOpen(role domain.Role, caller common.Address) error {
	if t.roles.has(role, domain.ZeroAddress) {
		return nil
	}
	return t.checkRole(role, caller)
}
