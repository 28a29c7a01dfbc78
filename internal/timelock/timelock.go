// Package timelock implements a delayed-execution queue for call bundles with
// role-based access control.
package timelock

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// Config describes the initial timelock setup.
type Config struct {
	// MinDelay is the minimum schedule delay in seconds.
	MinDelay  uint64
	Proposers []common.Address
	Executors []common.Address
	// Admin is an optional external admin, typically the deployer, expected
	// to renounce once the setup is complete.
	Admin common.Address
}

type operation struct {
	readyAt uint64
	done    bool
}

// Timelock queues call bundles and executes them once their delay elapsed.
// It is not safe for concurrent use.
type Timelock struct {
	clock   domain.Clock
	address common.Address
	log     *slog.Logger

	minDelay   uint64
	roles      roles
	operations map[common.Hash]*operation
	router     *Router
}

// New creates a timelock at address. The timelock administers itself; the
// proposers also receive the canceller role.
func New(clock domain.Clock, address common.Address, cfg Config, logger *slog.Logger) *Timelock {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Timelock{
		clock:      clock,
		address:    address,
		log:        logger.With("component", "timelock"),
		minDelay:   cfg.MinDelay,
		roles:      make(roles),
		operations: make(map[common.Hash]*operation),
		router:     NewRouter(),
	}
	t.roles.grant(domain.DefaultAdminRole, address, address)
	if cfg.Admin != domain.ZeroAddress {
		t.roles.grant(domain.DefaultAdminRole, cfg.Admin, address)
	}
	for _, p := range cfg.Proposers {
		t.roles.grant(domain.ProposerRole, p, address)
		t.roles.grant(domain.CancellerRole, p, address)
	}
	for _, e := range cfg.Executors {
		t.roles.grant(domain.ExecutorRole, e, address)
	}
	t.router.Register(address, &adminTarget{t: t})
	return t
}

func (t *Timelock) Address() common.Address {
	return t.address
}

// Router returns the call router used by Execute.
func (t *Timelock) Router() *Router {
	return t.router
}

// MinDelay returns the minimum schedule delay in seconds.
func (t *Timelock) MinDelay() uint64 {
	return t.minDelay
}

// GetOperationState derives the state of id from the clock.
func (t *Timelock) GetOperationState(id common.Hash) domain.OperationState {
	op, ok := t.operations[id]
	switch {
	case !ok:
		return domain.OperationUnset
	case op.done:
		return domain.OperationDone
	case t.clock.Timestamp() >= op.readyAt:
		return domain.OperationReady
	default:
		return domain.OperationWaiting
	}
}

// IsOperation reports whether id was ever scheduled and not cancelled.
func (t *Timelock) IsOperation(id common.Hash) bool {
	return t.GetOperationState(id) != domain.OperationUnset
}

// IsOperationPending reports Waiting or Ready.
func (t *Timelock) IsOperationPending(id common.Hash) bool {
	s := t.GetOperationState(id)
	return s == domain.OperationWaiting || s == domain.OperationReady
}

func (t *Timelock) IsOperationReady(id common.Hash) bool {
	return t.GetOperationState(id) == domain.OperationReady
}

func (t *Timelock) IsOperationDone(id common.Hash) bool {
	return t.GetOperationState(id) == domain.OperationDone
}

// GetTimestamp returns the ready timestamp of id, or 0 when unknown.
func (t *Timelock) GetTimestamp(id common.Hash) uint64 {
	if op, ok := t.operations[id]; ok {
		return op.readyAt
	}
	return 0
}

// Schedule queues a single call to become executable after delay seconds.
func (t *Timelock) Schedule(caller common.Address, call domain.Call, predecessor, salt common.Hash, delay uint64) ([]domain.Event, error) {
	id, err := HashOperation(call, predecessor, salt)
	if err != nil {
		return nil, err
	}
	return t.schedule(caller, id, []domain.Call{call}, predecessor, salt, delay)
}

// ScheduleBatch queues calls to become executable after delay seconds.
func (t *Timelock) ScheduleBatch(caller common.Address, calls []domain.Call, predecessor, salt common.Hash, delay uint64) ([]domain.Event, error) {
	id, err := HashOperationBatch(calls, predecessor, salt)
	if err != nil {
		return nil, err
	}
	return t.schedule(caller, id, calls, predecessor, salt, delay)
}

func (t *Timelock) schedule(caller common.Address, id common.Hash, calls []domain.Call, predecessor, salt common.Hash, delay uint64) ([]domain.Event, error) {
	if err := t.checkRole(domain.ProposerRole, caller); err != nil {
		return nil, err
	}
	if t.IsOperation(id) {
		return nil, domain.OperationStateError{ID: id, State: t.GetOperationState(id), Err: domain.ErrAlreadyScheduled}
	}
	if delay < t.minDelay {
		return nil, fmt.Errorf("%w: %ds below minimum %ds", domain.ErrInsufficientDelay, delay, t.minDelay)
	}

	t.operations[id] = &operation{readyAt: t.clock.Timestamp() + delay}

	events := make([]domain.Event, 0, len(calls)+1)
	for i, c := range calls {
		events = append(events, domain.CallScheduledEvent{
			ID:          id,
			Index:       i,
			Target:      c.Target,
			Value:       valueOf(c),
			Data:        bytes.Clone(c.Data),
			Predecessor: predecessor,
			Delay:       delay,
		})
	}
	if salt != (common.Hash{}) {
		events = append(events, domain.CallSaltEvent{ID: id, Salt: salt})
	}
	t.log.Debug("scheduled operation", "id", id.Hex(), "calls", len(calls), "delay", delay)
	return events, nil
}

// Execute runs a ready single-call operation.
func (t *Timelock) Execute(caller common.Address, call domain.Call, predecessor, salt common.Hash) ([]domain.Event, error) {
	id, err := HashOperation(call, predecessor, salt)
	if err != nil {
		return nil, err
	}
	return t.execute(caller, id, []domain.Call{call}, predecessor)
}

// ExecuteBatch runs a ready batch operation.
func (t *Timelock) ExecuteBatch(caller common.Address, calls []domain.Call, predecessor, salt common.Hash) ([]domain.Event, error) {
	id, err := HashOperationBatch(calls, predecessor, salt)
	if err != nil {
		return nil, err
	}
	return t.execute(caller, id, calls, predecessor)
}

// execute prepares every call before applying any, so a failing call leaves
// the timelock and all targets unchanged.
func (t *Timelock) execute(caller common.Address, id common.Hash, calls []domain.Call, predecessor common.Hash) ([]domain.Event, error) {
	if err := t.checkRoleOrOpen(domain.ExecutorRole, caller); err != nil {
		return nil, err
	}
	if st := t.GetOperationState(id); st != domain.OperationReady {
		return nil, domain.OperationStateError{ID: id, State: st, Err: domain.ErrNotReady}
	}
	if predecessor != (common.Hash{}) && !t.IsOperationDone(predecessor) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPredecessorNotExecuted, predecessor.Hex())
	}

	effects := make([]Effect, len(calls))
	for i, c := range calls {
		eff, err := t.router.Prepare(t.address, c)
		if err != nil {
			return nil, fmt.Errorf("call %d to %s failed: %w", i, c.Target.Hex(), err)
		}
		effects[i] = eff
	}

	t.operations[id].done = true

	var events []domain.Event
	for i, eff := range effects {
		events = append(events, eff()...)
		events = append(events, domain.CallExecutedEvent{
			ID:     id,
			Index:  i,
			Target: calls[i].Target,
			Value:  valueOf(calls[i]),
			Data:   bytes.Clone(calls[i].Data),
		})
	}
	t.log.Debug("executed operation", "id", id.Hex(), "calls", len(calls))
	return events, nil
}

// Cancel drops a pending operation, returning it to Unset.
func (t *Timelock) Cancel(caller common.Address, id common.Hash) ([]domain.Event, error) {
	if err := t.checkRole(domain.CancellerRole, caller); err != nil {
		return nil, err
	}
	if !t.IsOperationPending(id) {
		return nil, domain.OperationStateError{ID: id, State: t.GetOperationState(id), Err: domain.ErrUnexpectedOperationState}
	}
	delete(t.operations, id)
	t.log.Debug("cancelled operation", "id", id.Hex())
	return []domain.Event{domain.CancelledEvent{ID: id}}, nil
}

func valueOf(c domain.Call) uint256.Int {
	if c.Value == nil {
		return uint256.Int{}
	}
	return *c.Value
}
