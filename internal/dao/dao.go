// Package dao assembles the staked-token ledger, timelock and governor on a
// shared chain and exposes them through serialised entry points.
package dao

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/chain"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/governor"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

// Config describes a DAO deployment.
type Config struct {
	Governor governor.Config
	// MinDelay is the timelock minimum delay. Ignored without a timelock.
	MinDelay time.Duration
	// WithoutTimelock lets the governor execute proposals directly.
	WithoutTimelock bool
	Deployer        common.Address
	// RenounceAdmin drops the deployer's timelock admin role after setup.
	RenounceAdmin bool
	Genesis       time.Time
	BlockTime     time.Duration
}

// Addresses are the deployed contract addresses, derived from the deployer
// and its nonce like contract creation addresses.
type Addresses struct {
	Token    common.Address
	Timelock common.Address
	Governor common.Address
}

// Receipt describes an included operation.
type Receipt struct {
	Block     uint64
	Timestamp uint64
	Events    []domain.Event
}

// DAO serialises every mutation through the chain's writer lock; reads share
// the read lock and only observe committed state.
type DAO struct {
	chain     *chain.Chain
	token     *votes.Ledger
	timelock  *timelock.Timelock
	governor  *governor.Governor
	addresses Addresses
	deployer  common.Address
	log       *slog.Logger
}

// PredictAddresses returns where New deploys the contracts for deployer.
func PredictAddresses(deployer common.Address) Addresses {
	return Addresses{
		Token:    crypto.CreateAddress(deployer, 0),
		Timelock: crypto.CreateAddress(deployer, 1),
		Governor: crypto.CreateAddress(deployer, 2),
	}
}

// New deploys a DAO on a fresh chain.
func New(cfg Config, logger *slog.Logger) (*DAO, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	genesis := cfg.Genesis
	if genesis.IsZero() {
		genesis = time.Now()
	}
	c := chain.New(genesis, cfg.BlockTime)

	addrs := PredictAddresses(cfg.Deployer)

	token, err := votes.NewLedger(c, addrs.Token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token ledger: %w", err)
	}

	d := &DAO{
		chain:     c,
		token:     token,
		addresses: addrs,
		deployer:  cfg.Deployer,
		log:       logger.With("component", "dao"),
	}

	deps := governor.Deps{Clock: c, Token: token, Logger: logger}
	var router *timelock.Router
	if cfg.WithoutTimelock {
		addrs.Timelock = common.Address{}
		d.addresses = addrs
		router = timelock.NewRouter()
		deps.Router = router
	} else {
		d.timelock = timelock.New(c, addrs.Timelock, timelock.Config{
			MinDelay:  uint64(cfg.MinDelay / time.Second),
			Proposers: []common.Address{addrs.Governor},
			Executors: []common.Address{addrs.Governor},
			Admin:     cfg.Deployer,
		}, logger)
		deps.Timelock = d.timelock
		router = d.timelock.Router()
	}

	d.governor, err = governor.New(addrs.Governor, cfg.Governor, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create governor: %w", err)
	}
	router.Register(addrs.Governor, d.governor)

	if d.timelock != nil && cfg.RenounceAdmin && cfg.Deployer != (common.Address{}) {
		if _, err := d.timelock.RenounceRole(cfg.Deployer, domain.DefaultAdminRole, cfg.Deployer); err != nil {
			return nil, fmt.Errorf("failed to renounce admin role: %w", err)
		}
	}

	d.log.Debug("dao deployed",
		"token", addrs.Token, "timelock", addrs.Timelock, "governor", addrs.Governor,
		"votingDelay", cfg.Governor.VotingDelay, "votingPeriod", cfg.Governor.VotingPeriod)
	return d, nil
}

func (d *DAO) Addresses() Addresses {
	return d.addresses
}

// HasTimelock reports whether proposals go through a timelock.
func (d *DAO) HasTimelock() bool {
	return d.timelock != nil
}

// exec runs fn as one operation in the pending block.
func (d *DAO) exec(fn func() ([]domain.Event, error)) (*Receipt, error) {
	var events []domain.Event
	var ts uint64
	block, err := d.chain.Execute(func() error {
		ts = d.chain.Timestamp()
		var err error
		events, err = fn()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{Block: block, Timestamp: ts, Events: events}, nil
}

// BlockNumber returns the pending block number.
func (d *DAO) BlockNumber() uint64 {
	return d.chain.BlockNumber()
}

// Timestamp returns the pending block timestamp.
func (d *DAO) Timestamp() uint64 {
	return d.chain.Timestamp()
}

// Mine seals n empty blocks.
func (d *DAO) Mine(n uint64) {
	d.chain.Mine(n)
}

// IncreaseTime advances the clock by dur and seals one block.
func (d *DAO) IncreaseTime(dur time.Duration) {
	d.chain.IncreaseTime(dur)
}

func (d *DAO) Deposit(to common.Address, amount *uint256.Int) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.Deposit(to, amount) })
}

func (d *DAO) DepositAndDelegate(to common.Address, amount *uint256.Int) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.DepositAndDelegate(to, amount) })
}

func (d *DAO) Withdraw(from common.Address, amount *uint256.Int) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.Withdraw(from, amount) })
}

func (d *DAO) Transfer(from, to common.Address, amount *uint256.Int) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.Transfer(from, to, amount) })
}

func (d *DAO) TransferAndDelegate(from, to common.Address, amount *uint256.Int) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.TransferAndDelegate(from, to, amount) })
}

func (d *DAO) Delegate(account, delegatee common.Address) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.token.Delegate(account, delegatee) })
}

// Propose submits calls on behalf of proposer.
func (d *DAO) Propose(proposer common.Address, calls []domain.Call, description string) (domain.ProposalID, *Receipt, error) {
	targets := make([]common.Address, len(calls))
	values := make([]*uint256.Int, len(calls))
	calldatas := make([][]byte, len(calls))
	for i, c := range calls {
		targets[i], values[i], calldatas[i] = c.Target, c.Value, c.Data
	}
	var id domain.ProposalID
	receipt, err := d.exec(func() ([]domain.Event, error) {
		var events []domain.Event
		var err error
		id, events, err = d.governor.Propose(proposer, targets, values, calldatas, description)
		return events, err
	})
	if err != nil {
		return domain.ProposalID{}, nil, err
	}
	return id, receipt, nil
}

func (d *DAO) CastVote(voter common.Address, id domain.ProposalID, support domain.VoteType, reason string) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.governor.CastVoteWithReason(voter, id, support, reason) })
}

func (d *DAO) Queue(id domain.ProposalID) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.governor.Queue(id) })
}

func (d *DAO) Execute(id domain.ProposalID) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.governor.Execute(id) })
}

func (d *DAO) Cancel(caller common.Address, id domain.ProposalID) (*Receipt, error) {
	return d.exec(func() ([]domain.Event, error) { return d.governor.Cancel(caller, id) })
}

func (d *DAO) GrantRole(caller common.Address, role domain.Role, account common.Address) (*Receipt, error) {
	if d.timelock == nil {
		return nil, fmt.Errorf("%w: no timelock deployed", domain.ErrNotFound)
	}
	return d.exec(func() ([]domain.Event, error) { return d.timelock.GrantRole(caller, role, account) })
}

func (d *DAO) RevokeRole(caller common.Address, role domain.Role, account common.Address) (*Receipt, error) {
	if d.timelock == nil {
		return nil, fmt.Errorf("%w: no timelock deployed", domain.ErrNotFound)
	}
	return d.exec(func() ([]domain.Event, error) { return d.timelock.RevokeRole(caller, role, account) })
}

func (d *DAO) RenounceRole(caller common.Address, role domain.Role) (*Receipt, error) {
	if d.timelock == nil {
		return nil, fmt.Errorf("%w: no timelock deployed", domain.ErrNotFound)
	}
	return d.exec(func() ([]domain.Event, error) { return d.timelock.RenounceRole(caller, role, caller) })
}
