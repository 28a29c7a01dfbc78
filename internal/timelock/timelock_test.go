package timelock_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

type testClock struct {
	block uint64
	time  uint64
}

func (c *testClock) BlockNumber() uint64 { return c.block }
func (c *testClock) Timestamp() uint64   { return c.time }

const day = 86400

var (
	timelockAddr = common.HexToAddress("0x71e10c")
	deployer     = common.HexToAddress("0xde9")
	proposer     = common.HexToAddress("0x9909")
	executor     = common.HexToAddress("0xe8ec")
	stranger     = common.HexToAddress("0x5742")
	recipient    = common.HexToAddress("0x4ec1")
)

func newTimelock(t *testing.T) (*timelock.Timelock, *testClock) {
	t.Helper()
	clock := &testClock{block: 1, time: 1_000_000}
	tl := timelock.New(clock, timelockAddr, timelock.Config{
		MinDelay:  day,
		Proposers: []common.Address{proposer},
		Executors: []common.Address{executor},
		Admin:     deployer,
	}, nil)
	return tl, clock
}

func transferCall() domain.Call {
	return domain.Call{Target: recipient, Value: uint256.NewInt(0), Data: []byte{}}
}

func TestTimelock_Lifecycle(t *testing.T) {
	tl, clock := newTimelock(t)
	call := transferCall()
	id, err := timelock.HashOperation(call, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	assert.Equal(t, domain.OperationUnset, tl.GetOperationState(id))
	assert.False(t, tl.IsOperation(id))

	events, err := tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "CallScheduled", events[0].EventName())
	assert.Equal(t, domain.OperationWaiting, tl.GetOperationState(id))
	assert.Equal(t, clock.time+day, tl.GetTimestamp(id))
	assert.True(t, tl.IsOperation(id))
	assert.True(t, tl.IsOperationPending(id))
	assert.False(t, tl.IsOperationReady(id))

	_, err = tl.Execute(executor, call, common.Hash{}, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrNotReady)

	clock.time += day
	assert.Equal(t, domain.OperationReady, tl.GetOperationState(id))
	assert.True(t, tl.IsOperationReady(id))

	events, err = tl.Execute(executor, call, common.Hash{}, common.Hash{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "CallExecuted", events[0].EventName())
	assert.Equal(t, domain.OperationDone, tl.GetOperationState(id))
	assert.True(t, tl.IsOperationDone(id))
	assert.False(t, tl.IsOperationPending(id))

	_, err = tl.Execute(executor, call, common.Hash{}, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrNotReady, "an operation executes at most once")
}

func TestTimelock_ScheduleValidation(t *testing.T) {
	tl, _ := newTimelock(t)
	call := transferCall()

	_, err := tl.Schedule(stranger, call, common.Hash{}, common.Hash{}, day)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day-1)
	assert.ErrorIs(t, err, domain.ErrInsufficientDelay)

	_, err = tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	_, err = tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, 2*day)
	assert.ErrorIs(t, err, domain.ErrAlreadyScheduled)

	salt := common.HexToHash("0x01")
	events, err := tl.Schedule(proposer, call, common.Hash{}, salt, day)
	require.NoError(t, err, "a different salt is a different operation")
	assert.Equal(t, []string{"CallScheduled", "CallSalt"}, []string{events[0].EventName(), events[1].EventName()})
}

func TestTimelock_ExecuteRequiresExecutor(t *testing.T) {
	tl, clock := newTimelock(t)
	call := transferCall()
	_, err := tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	clock.time += day

	_, err = tl.Execute(stranger, call, common.Hash{}, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	t.Run("open executor role", func(t *testing.T) {
		_, err := tl.GrantRole(deployer, domain.ExecutorRole, domain.ZeroAddress)
		require.NoError(t, err)
		_, err = tl.Execute(stranger, call, common.Hash{}, common.Hash{})
		assert.NoError(t, err)
	})
}

func TestTimelock_Predecessor(t *testing.T) {
	tl, clock := newTimelock(t)
	first := transferCall()
	second := domain.Call{Target: recipient, Value: uint256.NewInt(0), Data: []byte{0x01}}

	firstID, err := timelock.HashOperation(first, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	_, err = tl.Schedule(proposer, first, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	_, err = tl.Schedule(proposer, second, firstID, common.Hash{}, day)
	require.NoError(t, err)
	clock.time += day

	_, err = tl.Execute(executor, second, firstID, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrPredecessorNotExecuted)

	_, err = tl.Execute(executor, first, common.Hash{}, common.Hash{})
	require.NoError(t, err)
	_, err = tl.Execute(executor, second, firstID, common.Hash{})
	assert.NoError(t, err)
}

func TestTimelock_Cancel(t *testing.T) {
	tl, clock := newTimelock(t)
	call := transferCall()
	id, err := timelock.HashOperation(call, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	_, err = tl.Cancel(proposer, id)
	assert.ErrorIs(t, err, domain.ErrUnexpectedOperationState, "unknown operations cannot be cancelled")

	_, err = tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)

	_, err = tl.Cancel(stranger, id)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	events, err := tl.Cancel(proposer, id)
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{domain.CancelledEvent{ID: id}}, events)
	assert.Equal(t, domain.OperationUnset, tl.GetOperationState(id))

	_, err = tl.Schedule(proposer, call, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err, "a cancelled operation can be scheduled again")
	clock.time += day
	_, err = tl.Execute(executor, call, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	_, err = tl.Cancel(proposer, id)
	assert.ErrorIs(t, err, domain.ErrUnexpectedOperationState)
}

func TestTimelock_SelfAdministration(t *testing.T) {
	tl, clock := newTimelock(t)

	updateDelay, err := timelock.EncodeUpdateDelay(2 * day)
	require.NoError(t, err)
	grant, err := timelock.EncodeGrantRole(domain.ProposerRole, stranger)
	require.NoError(t, err)
	calls := []domain.Call{
		{Target: timelockAddr, Value: uint256.NewInt(0), Data: updateDelay},
		{Target: timelockAddr, Value: uint256.NewInt(0), Data: grant},
	}

	_, err = tl.ScheduleBatch(proposer, calls, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	clock.time += day

	events, err := tl.ExecuteBatch(executor, calls, common.Hash{}, common.Hash{})
	require.NoError(t, err)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.EventName()
	}
	assert.Equal(t, []string{"MinDelayChange", "CallExecuted", "RoleGranted", "CallExecuted"}, names)
	assert.Equal(t, uint64(2*day), tl.MinDelay())
	assert.True(t, tl.HasRole(domain.ProposerRole, stranger))
}

func TestTimelock_FailedCallRevertsBatch(t *testing.T) {
	tl, clock := newTimelock(t)

	updateDelay, err := timelock.EncodeUpdateDelay(2 * day)
	require.NoError(t, err)
	calls := []domain.Call{
		{Target: timelockAddr, Value: uint256.NewInt(0), Data: updateDelay},
		{Target: timelockAddr, Value: uint256.NewInt(0), Data: []byte{0xde, 0xad, 0xbe, 0xef}},
	}
	id, err := timelock.HashOperationBatch(calls, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	_, err = tl.ScheduleBatch(proposer, calls, common.Hash{}, common.Hash{}, day)
	require.NoError(t, err)
	clock.time += day

	_, err = tl.ExecuteBatch(executor, calls, common.Hash{}, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrUnknownCall)
	assert.Equal(t, uint64(day), tl.MinDelay())
	assert.Equal(t, domain.OperationReady, tl.GetOperationState(id))
}

func TestTimelock_UpdateDelayOnlyFromSelf(t *testing.T) {
	tl, clock := newTimelock(t)

	// an operation scheduled on a second timelock targeting the first one
	// reaches it with the wrong sender
	other := timelock.New(clock, common.HexToAddress("0x0123"), timelock.Config{
		MinDelay:  0,
		Proposers: []common.Address{proposer},
		Executors: []common.Address{executor},
	}, nil)
	other.Router().Register(timelockAddr, routedTo{tl})

	data, err := timelock.EncodeUpdateDelay(1)
	require.NoError(t, err)
	call := domain.Call{Target: timelockAddr, Value: uint256.NewInt(0), Data: data}
	_, err = other.Schedule(proposer, call, common.Hash{}, common.Hash{}, 0)
	require.NoError(t, err)

	_, err = other.Execute(executor, call, common.Hash{}, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, uint64(day), tl.MinDelay())
}

// routedTo forwards calls into a timelock's own router.
type routedTo struct {
	tl *timelock.Timelock
}

func (r routedTo) Prepare(sender common.Address, value *uint256.Int, data []byte) (timelock.Effect, error) {
	return r.tl.Router().Prepare(sender, domain.Call{Target: r.tl.Address(), Value: value, Data: data})
}

func TestTimelock_Roles(t *testing.T) {
	tl, _ := newTimelock(t)

	assert.True(t, tl.HasRole(domain.DefaultAdminRole, timelockAddr))
	assert.True(t, tl.HasRole(domain.DefaultAdminRole, deployer))
	assert.True(t, tl.HasRole(domain.CancellerRole, proposer))
	assert.Equal(t, []common.Address{deployer, timelockAddr}, tl.RoleMembers(domain.DefaultAdminRole))

	_, err := tl.GrantRole(stranger, domain.ProposerRole, stranger)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	events, err := tl.GrantRole(deployer, domain.ProposerRole, stranger)
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{domain.RoleGrantedEvent{Role: domain.ProposerRole, Account: stranger, Sender: deployer}}, events)

	events, err = tl.GrantRole(deployer, domain.ProposerRole, stranger)
	require.NoError(t, err)
	assert.Empty(t, events, "granting a held role is a no-op")

	_, err = tl.RenounceRole(stranger, domain.DefaultAdminRole, deployer)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = tl.RenounceRole(deployer, domain.DefaultAdminRole, deployer)
	require.NoError(t, err)

	_, err = tl.RevokeRole(deployer, domain.ProposerRole, stranger)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "no external admin remains")
	assert.True(t, tl.HasRole(domain.ProposerRole, stranger))
	assert.Equal(t, []common.Address{timelockAddr}, tl.RoleMembers(domain.DefaultAdminRole))
	assert.Equal(t, []common.Address{stranger, proposer}, tl.RoleMembers(domain.ProposerRole))
}

func TestHashOperationBatch(t *testing.T) {
	call := transferCall()

	single, err := timelock.HashOperation(call, common.Hash{}, common.Hash{})
	require.NoError(t, err)
	batch, err := timelock.HashOperationBatch([]domain.Call{call}, common.Hash{}, common.Hash{})
	require.NoError(t, err)
	again, err := timelock.HashOperationBatch([]domain.Call{call}, common.Hash{}, common.Hash{})
	require.NoError(t, err)

	assert.NotEqual(t, single, batch)
	assert.Equal(t, batch, again)
}
