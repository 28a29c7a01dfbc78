package dao_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/dao"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/governor"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

var (
	deployer = common.HexToAddress("0xde9")
	alice    = common.HexToAddress("0xa11ce")
	bob      = common.HexToAddress("0xb0b")
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func newDAO(t *testing.T, mutate func(*dao.Config)) *dao.DAO {
	t.Helper()
	cfg := dao.Config{
		Governor: governor.Config{
			VotingDelay:       1,
			VotingPeriod:      60,
			ProposalThreshold: ether(10),
			QuorumNumerator:   4,
		},
		MinDelay:  24 * time.Hour,
		Deployer:  deployer,
		Genesis:   time.Unix(1_700_000_000, 0),
		BlockTime: 30 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := dao.New(cfg, nil)
	require.NoError(t, err)
	return d
}

func periodProposal(t *testing.T, d *dao.DAO, blocks uint32) []domain.Call {
	t.Helper()
	data, err := governor.EncodeSetVotingPeriod(blocks)
	require.NoError(t, err)
	return []domain.Call{{Target: d.Addresses().Governor, Value: uint256.NewInt(0), Data: data}}
}

func TestNew_Deployment(t *testing.T) {
	d := newDAO(t, nil)
	addrs := d.Addresses()

	assert.NotEqual(t, addrs.Token, addrs.Timelock)
	assert.NotEqual(t, addrs.Timelock, addrs.Governor)
	assert.Equal(t, dao.PredictAddresses(deployer), addrs)
	assert.True(t, d.HasTimelock())

	assert.True(t, d.HasRole(domain.ProposerRole, addrs.Governor))
	assert.True(t, d.HasRole(domain.ExecutorRole, addrs.Governor))
	assert.True(t, d.HasRole(domain.CancellerRole, addrs.Governor))
	assert.True(t, d.HasRole(domain.DefaultAdminRole, deployer))
	assert.True(t, d.HasRole(domain.DefaultAdminRole, addrs.Timelock))
	assert.Equal(t, []common.Address{addrs.Governor}, d.RoleMembers(domain.ExecutorRole))

	params := d.Params()
	assert.Equal(t, uint64(1), params.VotingDelay)
	assert.Equal(t, uint64(60), params.VotingPeriod)
	assert.Equal(t, uint64(4), params.QuorumNumerator)
	assert.Equal(t, uint64(86400), params.MinDelay)
	assert.Equal(t, *ether(10), params.ProposalThreshold)
}

func TestNew_RenounceAdmin(t *testing.T) {
	d := newDAO(t, func(c *dao.Config) { c.RenounceAdmin = true })
	assert.False(t, d.HasRole(domain.DefaultAdminRole, deployer))
	assert.True(t, d.HasRole(domain.DefaultAdminRole, d.Addresses().Timelock))

	_, err := d.GrantRole(deployer, domain.ProposerRole, alice)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNew_InvalidGovernorConfig(t *testing.T) {
	_, err := dao.New(dao.Config{
		Governor: governor.Config{VotingPeriod: 0, ProposalThreshold: ether(1)},
		Deployer: deployer,
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSetting)
}

func TestDAO_ReceiptsTrackBlocks(t *testing.T) {
	d := newDAO(t, nil)
	start := d.BlockNumber()

	r, err := d.DepositAndDelegate(alice, ether(60))
	require.NoError(t, err)
	assert.Equal(t, start, r.Block)
	assert.NotEmpty(t, r.Events)
	assert.Equal(t, start+1, d.BlockNumber())

	// rejected operations do not consume a block
	_, err = d.Withdraw(bob, ether(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, start+1, d.BlockNumber())

	before := d.Timestamp()
	d.IncreaseTime(time.Hour)
	assert.Equal(t, before+3600+30, d.Timestamp())
}

func TestDAO_FullLifecycleThroughTimelock(t *testing.T) {
	d := newDAO(t, nil)
	_, err := d.DepositAndDelegate(alice, ether(60))
	require.NoError(t, err)
	_, err = d.DepositAndDelegate(bob, ether(5))
	require.NoError(t, err)

	id, r, err := d.Propose(alice, periodProposal(t, d, 90), "Lengthen voting")
	require.NoError(t, err)
	require.Len(t, r.Events, 1)

	st, err := d.State(id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalPending, st)

	d.Mine(1)
	_, err = d.CastVote(alice, id, domain.VoteFor, "")
	require.NoError(t, err)
	_, err = d.CastVote(bob, id, domain.VoteAgainst, "no")
	require.NoError(t, err)

	voted, err := d.HasVoted(id, bob)
	require.NoError(t, err)
	assert.True(t, voted)

	d.Mine(61)
	sv, err := d.GetStateAndVotes(id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalSucceeded, sv.State)
	assert.Equal(t, *ether(60), sv.For)
	assert.Equal(t, *ether(5), sv.Against)

	_, err = d.Queue(id)
	require.NoError(t, err)
	details, err := d.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalQueued, details.State)
	assert.NotZero(t, details.ETA)

	_, err = d.Execute(id)
	assert.ErrorIs(t, err, domain.ErrNotReady)

	d.IncreaseTime(24 * time.Hour)
	r, err = d.Execute(id)
	require.NoError(t, err)
	assert.NotEmpty(t, r.Events)

	st, err = d.State(id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalExecuted, st)
	assert.Equal(t, uint64(90), d.Params().VotingPeriod)
}

func TestDAO_WithoutTimelock(t *testing.T) {
	d := newDAO(t, func(c *dao.Config) { c.WithoutTimelock = true })
	assert.False(t, d.HasTimelock())
	assert.Equal(t, common.Address{}, d.Addresses().Timelock)

	_, err := d.DepositAndDelegate(alice, ether(60))
	require.NoError(t, err)
	id, _, err := d.Propose(alice, periodProposal(t, d, 30), "Shorten voting")
	require.NoError(t, err)
	d.Mine(1)
	_, err = d.CastVote(alice, id, domain.VoteFor, "")
	require.NoError(t, err)
	d.Mine(61)

	_, err = d.Queue(id)
	assert.ErrorIs(t, err, domain.ErrUnexpectedProposalState)
	_, err = d.Execute(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), d.Params().VotingPeriod)

	_, err = d.GrantRole(deployer, domain.ProposerRole, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, d.RoleMembers(domain.ProposerRole))
}

func TestDAO_TimelockAdminThroughGovernance(t *testing.T) {
	d := newDAO(t, func(c *dao.Config) { c.RenounceAdmin = true })
	_, err := d.DepositAndDelegate(alice, ether(60))
	require.NoError(t, err)

	data, err := timelock.EncodeGrantRole(domain.CancellerRole, alice)
	require.NoError(t, err)
	calls := []domain.Call{{Target: d.Addresses().Timelock, Value: uint256.NewInt(0), Data: data}}

	id, _, err := d.Propose(alice, calls, "Make alice a canceller")
	require.NoError(t, err)
	d.Mine(1)
	_, err = d.CastVote(alice, id, domain.VoteFor, "")
	require.NoError(t, err)
	d.Mine(61)
	_, err = d.Queue(id)
	require.NoError(t, err)
	d.IncreaseTime(24 * time.Hour)
	_, err = d.Execute(id)
	require.NoError(t, err)

	assert.True(t, d.HasRole(domain.CancellerRole, alice))
}

func TestDAO_ConcurrentVoting(t *testing.T) {
	d := newDAO(t, nil)
	const voters = 20
	accounts := make([]common.Address, voters)
	for i := range accounts {
		accounts[i] = common.BigToAddress(uint256.NewInt(uint64(0x1000 + i)).ToBig())
		_, err := d.DepositAndDelegate(accounts[i], ether(10))
		require.NoError(t, err)
	}

	id, _, err := d.Propose(accounts[0], periodProposal(t, d, 45), "Concurrent")
	require.NoError(t, err)
	d.Mine(1)

	var wg sync.WaitGroup
	errs := make(chan error, voters*2)
	for i, acct := range accounts {
		support := domain.VoteFor
		if i%4 == 0 {
			support = domain.VoteAgainst
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := d.CastVote(acct, id, support, fmt.Sprintf("voter %d", i))
			errs <- err
		}()
		// readers run alongside the writers
		go func() {
			defer wg.Done()
			_, err := d.GetStateAndVotes(id)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	sv, err := d.GetStateAndVotes(id)
	require.NoError(t, err)
	assert.Equal(t, *ether(150), sv.For)
	assert.Equal(t, *ether(50), sv.Against)
	assert.True(t, sv.Abstain.IsZero())

	// each vote landed in its own block
	assert.GreaterOrEqual(t, d.BlockNumber(), uint64(voters+2+voters))
}

func TestDAO_Proposals(t *testing.T) {
	d := newDAO(t, nil)
	_, err := d.DepositAndDelegate(alice, ether(60))
	require.NoError(t, err)

	first, _, err := d.Propose(alice, periodProposal(t, d, 50), "first")
	require.NoError(t, err)
	second, _, err := d.Propose(alice, periodProposal(t, d, 70), "second")
	require.NoError(t, err)

	all, err := d.Proposals()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, second, all[1].ID)

	svs, err := d.GetStatesAndVotes([]domain.ProposalID{first, second})
	require.NoError(t, err)
	assert.Len(t, svs, 2)

	supply, err := d.GetPastTotalSupply(d.BlockNumber() - 1)
	require.NoError(t, err)
	assert.Equal(t, ether(60), supply)

	_, err = d.GetPastVotes(alice, d.BlockNumber())
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, alice, d.Delegates(alice))
	assert.Equal(t, ether(60), d.BalanceOf(alice))
	assert.Equal(t, ether(60), d.GetVotes(alice))
	assert.Equal(t, ether(60), d.TotalSupply())
}
