package votes_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

type testClock struct {
	block uint64
}

func (c *testClock) BlockNumber() uint64 { return c.block }
func (c *testClock) Timestamp() uint64   { return c.block * 30 }

var (
	token = common.HexToAddress("0x7070")
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	carol = common.HexToAddress("0xca201")
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func newLedger(t *testing.T) (*votes.Ledger, *testClock) {
	t.Helper()
	clock := &testClock{block: 1}
	l, err := votes.NewLedger(clock, token, nil)
	require.NoError(t, err)
	return l, clock
}

func eventNames(events []domain.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.EventName()
	}
	return names
}

func TestLedger_Deposit(t *testing.T) {
	t.Run("without delegate writes no vote checkpoint", func(t *testing.T) {
		l, _ := newLedger(t)
		events, err := l.Deposit(alice, ether(100))
		require.NoError(t, err)

		require.Len(t, events, 1)
		assert.Equal(t, domain.TransferEvent{From: domain.ZeroAddress, To: alice, Value: *ether(100)}, events[0])
		assert.Equal(t, ether(100), l.BalanceOf(alice))
		assert.True(t, l.GetVotes(alice).IsZero())
		assert.Equal(t, 0, l.NumCheckpoints(alice))
	})

	t.Run("deposit and delegate self-delegates", func(t *testing.T) {
		l, _ := newLedger(t)
		events, err := l.DepositAndDelegate(alice, ether(100))
		require.NoError(t, err)

		assert.Equal(t, []string{"Transfer", "DelegateChanged", "DelegateVotesChanged"}, eventNames(events))
		assert.Equal(t, domain.DelegateChangedEvent{Delegator: alice, FromDelegate: domain.ZeroAddress, ToDelegate: alice}, events[1])
		assert.Equal(t, domain.DelegateVotesChangedEvent{Delegate: alice, PreviousVotes: uint256.Int{}, NewVotes: *ether(100)}, events[2])
		assert.Equal(t, alice, l.Delegates(alice))
		assert.Equal(t, 1, l.NumCheckpoints(alice))
	})

	t.Run("deposit and delegate keeps an existing delegate", func(t *testing.T) {
		l, clock := newLedger(t)
		_, err := l.Delegate(alice, bob)
		require.NoError(t, err)
		clock.block++

		events, err := l.DepositAndDelegate(alice, ether(5))
		require.NoError(t, err)
		assert.Equal(t, []string{"Transfer", "DelegateVotesChanged"}, eventNames(events))
		assert.Equal(t, bob, l.Delegates(alice))
		assert.Equal(t, ether(5), l.GetVotes(bob))
	})

	t.Run("validation", func(t *testing.T) {
		l, _ := newLedger(t)

		_, err := l.Deposit(domain.ZeroAddress, ether(1))
		assert.ErrorIs(t, err, domain.ErrInvalidReceiver)

		_, err = l.Deposit(token, ether(1))
		assert.ErrorIs(t, err, domain.ErrInvalidReceiver)

		_, err = l.Deposit(alice, uint256.NewInt(0))
		assert.ErrorIs(t, err, domain.ErrDepositFailed)

		_, err = l.Deposit(alice, votes.MaxSupply)
		require.NoError(t, err)
		_, err = l.Deposit(bob, uint256.NewInt(1))
		assert.ErrorIs(t, err, domain.ErrSupplyOverflow)
		assert.True(t, l.BalanceOf(bob).IsZero())
	})
}

func TestLedger_DelegatedTransferMovesVotes(t *testing.T) {
	l, clock := newLedger(t)

	_, err := l.Deposit(alice, ether(100))
	require.NoError(t, err)
	_, err = l.Delegate(alice, bob)
	require.NoError(t, err)
	_, err = l.DepositAndDelegate(carol, ether(1))
	require.NoError(t, err)
	clock.block = 5

	events, err := l.Transfer(alice, carol, ether(40))
	require.NoError(t, err)
	assert.Equal(t, []string{"Transfer", "DelegateVotesChanged", "DelegateVotesChanged"}, eventNames(events))

	assert.Equal(t, ether(60), l.GetVotes(bob))
	assert.Equal(t, ether(41), l.GetVotes(carol))

	bobCp, err := l.Checkpoints(bob, l.NumCheckpoints(bob)-1)
	require.NoError(t, err)
	carolCp, err := l.Checkpoints(carol, l.NumCheckpoints(carol)-1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bobCp.Block)
	assert.Equal(t, bobCp.Block, carolCp.Block, "both sides of a transfer land in the same block")

	clock.block = 6
	past, err := l.GetPastVotes(bob, 4)
	require.NoError(t, err)
	assert.Equal(t, ether(100), past)
}

func TestLedger_SupplyOnlyMovesOnMintAndBurn(t *testing.T) {
	l, clock := newLedger(t)

	_, err := l.DepositAndDelegate(alice, ether(100))
	require.NoError(t, err)
	_, err = l.DepositAndDelegate(bob, ether(20))
	require.NoError(t, err)
	require.Equal(t, 1, l.NumTotalSupplyCheckpoints())

	clock.block = 4
	_, err = l.Transfer(alice, bob, ether(30))
	require.NoError(t, err)
	clock.block = 5
	_, err = l.TransferAndDelegate(bob, carol, ether(10))
	require.NoError(t, err)
	_, err = l.Delegate(alice, carol)
	require.NoError(t, err)

	assert.Equal(t, 1, l.NumTotalSupplyCheckpoints())
	cp, ok := l.LatestTotalSupplyCheckpoint()
	require.True(t, ok)
	assert.Equal(t, uint64(1), cp.Block)
	assert.Equal(t, *ether(120), cp.Value)

	clock.block = 6
	for _, b := range []uint64{1, 3, 4, 5} {
		supply, err := l.GetPastTotalSupply(b)
		require.NoError(t, err)
		assert.Equal(t, ether(120), supply, "block %d", b)
	}

	_, err = l.Withdraw(carol, ether(10))
	require.NoError(t, err)
	assert.Equal(t, 2, l.NumTotalSupplyCheckpoints())
	cp, _ = l.LatestTotalSupplyCheckpoint()
	assert.Equal(t, uint64(6), cp.Block)
	assert.Equal(t, *ether(110), cp.Value)
}

func TestLedger_TransferValidation(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.Deposit(alice, ether(10))
	require.NoError(t, err)

	_, err = l.Transfer(alice, domain.ZeroAddress, ether(1))
	assert.ErrorIs(t, err, domain.ErrInvalidReceiver)

	_, err = l.Transfer(domain.ZeroAddress, bob, ether(1))
	assert.ErrorIs(t, err, domain.ErrInvalidSender)

	_, err = l.Transfer(alice, bob, ether(11))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, ether(10), l.BalanceOf(alice))
}

func TestLedger_TransferAndDelegate(t *testing.T) {
	t.Run("receiver without delegate is self-delegated", func(t *testing.T) {
		l, _ := newLedger(t)
		_, err := l.Deposit(alice, ether(10))
		require.NoError(t, err)

		events, err := l.TransferAndDelegate(alice, bob, ether(3))
		require.NoError(t, err)
		assert.Equal(t, []string{"Transfer", "DelegateChanged", "DelegateVotesChanged"}, eventNames(events))
		assert.Equal(t, bob, l.Delegates(bob))
		assert.Equal(t, ether(3), l.GetVotes(bob))
	})

	t.Run("zero amount does not delegate", func(t *testing.T) {
		l, _ := newLedger(t)
		_, err := l.Deposit(alice, ether(10))
		require.NoError(t, err)

		events, err := l.TransferAndDelegate(alice, bob, uint256.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, []string{"Transfer"}, eventNames(events))
		assert.Equal(t, domain.ZeroAddress, l.Delegates(bob))
	})
}

func TestLedger_Withdraw(t *testing.T) {
	l, clock := newLedger(t)
	_, err := l.DepositAndDelegate(alice, ether(10))
	require.NoError(t, err)
	clock.block = 2

	events, err := l.Withdraw(alice, ether(4))
	require.NoError(t, err)
	assert.Equal(t, domain.TransferEvent{From: alice, To: domain.ZeroAddress, Value: *ether(4)}, events[0])
	assert.Equal(t, ether(6), l.GetVotes(alice))
	assert.Equal(t, ether(6), l.TotalSupply())

	_, err = l.Withdraw(alice, ether(7))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	clock.block = 3
	supply, err := l.GetPastTotalSupply(1)
	require.NoError(t, err)
	assert.Equal(t, ether(10), supply)
	supply, err = l.GetPastTotalSupply(2)
	require.NoError(t, err)
	assert.Equal(t, ether(6), supply)
}

func TestLedger_SameBlockWritesOverwrite(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.DepositAndDelegate(alice, ether(1))
	require.NoError(t, err)
	_, err = l.Deposit(alice, ether(2))
	require.NoError(t, err)

	assert.Equal(t, 1, l.NumCheckpoints(alice))
	assert.Equal(t, ether(3), l.GetVotes(alice))
}

func TestLedger_DelegateToZeroStopsAccrual(t *testing.T) {
	l, clock := newLedger(t)
	_, err := l.DepositAndDelegate(alice, ether(8))
	require.NoError(t, err)
	clock.block = 2

	events, err := l.Delegate(alice, domain.ZeroAddress)
	require.NoError(t, err)
	assert.Equal(t, []string{"DelegateChanged", "DelegateVotesChanged"}, eventNames(events))
	assert.True(t, l.GetVotes(alice).IsZero())
	assert.Equal(t, ether(8), l.BalanceOf(alice))

	clock.block = 3
	_, err = l.Deposit(alice, ether(1))
	require.NoError(t, err)
	assert.True(t, l.GetVotes(alice).IsZero())

	past, err := l.GetPastVotes(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, ether(8), past)
}

func TestLedger_GetPastVotesRequiresPastBlock(t *testing.T) {
	l, clock := newLedger(t)
	clock.block = 10

	_, err := l.GetPastVotes(alice, 10)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = l.GetPastTotalSupply(11)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	v, err := l.GetPastVotes(alice, 9)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestLedger_RedelegationKeepsHistory(t *testing.T) {
	l, clock := newLedger(t)
	_, err := l.Deposit(alice, ether(50))
	require.NoError(t, err)
	_, err = l.Delegate(alice, bob)
	require.NoError(t, err)

	clock.block = 2
	_, err = l.Delegate(alice, carol)
	require.NoError(t, err)

	clock.block = 3
	atOne, err := l.GetPastVotes(bob, 1)
	require.NoError(t, err)
	atTwo, err := l.GetPastVotes(bob, 2)
	require.NoError(t, err)
	assert.Equal(t, ether(50), atOne)
	assert.True(t, atTwo.IsZero())
	assert.Equal(t, ether(50), l.GetVotes(carol))
}
