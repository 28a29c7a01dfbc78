package timelock

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// Effect applies a prepared call and returns the events it emitted. Effects
// cannot fail: everything that can go wrong is checked in Prepare.
type Effect func() []domain.Event

// Target is a contract that timelock-executed calls can reach.
type Target interface {
	// Prepare validates a call from sender without mutating state.
	Prepare(sender common.Address, value *uint256.Int, data []byte) (Effect, error)
}

// Router resolves call targets by address. Calls to addresses without a
// registered Target succeed without effect, like transfers to an account.
type Router struct {
	targets map[common.Address]Target
}

func NewRouter() *Router {
	return &Router{targets: make(map[common.Address]Target)}
}

// Register binds addr to t, replacing any previous binding.
func (r *Router) Register(addr common.Address, t Target) {
	r.targets[addr] = t
}

// Prepare validates call as sent by sender.
func (r *Router) Prepare(sender common.Address, call domain.Call) (Effect, error) {
	t, ok := r.targets[call.Target]
	if !ok {
		return func() []domain.Event { return nil }, nil
	}
	return t.Prepare(sender, call.Value, call.Data)
}
