// Package votes implements the staked-token voting power ledger: balances,
// delegation and block-indexed vote and supply checkpoints.
package votes

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/checkpoint"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// MaxSupply is the largest total supply representable in a vote checkpoint (2^208 - 1).
var MaxSupply = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 208), uint256.NewInt(1))

// Ledger tracks balances and delegated voting power. It is not safe for
// concurrent use; callers serialise access through the chain lock.
type Ledger struct {
	clock   domain.Clock
	address common.Address
	log     *slog.Logger

	balances  map[common.Address]*uint256.Int
	delegates map[common.Address]common.Address
	votes     *checkpoint.Store[common.Address]
	supply    checkpoint.Trace
	total     uint256.Int
}

// NewLedger creates an empty ledger for the token deployed at address.
func NewLedger(clock domain.Clock, address common.Address, logger *slog.Logger) (*Ledger, error) {
	store, err := checkpoint.NewStore[common.Address](clock, 0)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{
		clock:     clock,
		address:   address,
		log:       logger.With("component", "votes"),
		balances:  make(map[common.Address]*uint256.Int),
		delegates: make(map[common.Address]common.Address),
		votes:     store,
	}, nil
}

// Address returns the token address.
func (l *Ledger) Address() common.Address {
	return l.address
}

// BalanceOf returns the staked balance of account.
func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	if b, ok := l.balances[account]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(&l.total)
}

// Delegates returns the delegate of account, or the zero address.
func (l *Ledger) Delegates(account common.Address) common.Address {
	return l.delegates[account]
}

// GetVotes returns the current voting power of account.
func (l *Ledger) GetVotes(account common.Address) *uint256.Int {
	v := l.votes.Latest(account)
	return &v
}

// GetPastVotes returns the voting power of account at the end of block.
// block must be strictly before the current block.
func (l *Ledger) GetPastVotes(account common.Address, block uint64) (*uint256.Int, error) {
	if err := l.checkPast(block); err != nil {
		return nil, err
	}
	v, err := l.votes.ReadAt(account, block)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetPastTotalSupply returns the total supply at the end of block.
func (l *Ledger) GetPastTotalSupply(block uint64) (*uint256.Int, error) {
	if err := l.checkPast(block); err != nil {
		return nil, err
	}
	v := l.supply.UpperLookup(block)
	return &v, nil
}

// NumCheckpoints returns the number of vote checkpoints of account.
func (l *Ledger) NumCheckpoints(account common.Address) int {
	return l.votes.Count(account)
}

// Checkpoints returns the pos-th vote checkpoint of account.
func (l *Ledger) Checkpoints(account common.Address, pos int) (checkpoint.Checkpoint, error) {
	return l.votes.At(account, pos)
}

// NumTotalSupplyCheckpoints returns the length of the supply history.
func (l *Ledger) NumTotalSupplyCheckpoints() int {
	return l.supply.Len()
}

// LatestTotalSupplyCheckpoint returns the most recent supply checkpoint.
func (l *Ledger) LatestTotalSupplyCheckpoint() (checkpoint.Checkpoint, bool) {
	return l.supply.LatestCheckpoint()
}

func (l *Ledger) checkPast(block uint64) error {
	if current := l.clock.BlockNumber(); block >= current {
		return domain.OutOfRangeError{Block: block, Current: current}
	}
	return nil
}

// Deposit mints amount to to.
func (l *Ledger) Deposit(to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if err := l.validateMint(to, amount); err != nil {
		return nil, err
	}
	return l.mint(to, amount)
}

// DepositAndDelegate mints amount to to and self-delegates to when it has no
// delegate yet.
func (l *Ledger) DepositAndDelegate(to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if err := l.validateMint(to, amount); err != nil {
		return nil, err
	}
	events, err := l.mint(to, amount)
	if err != nil {
		return nil, err
	}
	if l.delegates[to] == domain.ZeroAddress {
		more, err := l.delegate(to, to)
		if err != nil {
			return nil, err
		}
		events = append(events, more...)
	}
	return events, nil
}

// Withdraw burns amount from from.
func (l *Ledger) Withdraw(from common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if err := l.requireBalance(from, amount); err != nil {
		return nil, err
	}
	l.sub(from, amount)
	l.total.Sub(&l.total, amount)
	if err := l.writeSupply(); err != nil {
		return nil, err
	}
	events := []domain.Event{domain.TransferEvent{From: from, To: domain.ZeroAddress, Value: *amount}}
	moved, err := l.moveVotes(l.delegates[from], domain.ZeroAddress, amount)
	if err != nil {
		return nil, err
	}
	l.log.Debug("withdraw", "from", from, "amount", amount.Dec())
	return append(events, moved...), nil
}

// Transfer moves amount from from to to, moving the corresponding voting
// power between their delegates.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if err := l.validateTransfer(from, to, amount); err != nil {
		return nil, err
	}
	return l.transfer(from, to, amount)
}

// TransferAndDelegate transfers and self-delegates the receiver when it has
// no delegate and ends up with a non-zero balance.
func (l *Ledger) TransferAndDelegate(from, to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if err := l.validateTransfer(from, to, amount); err != nil {
		return nil, err
	}
	events, err := l.transfer(from, to, amount)
	if err != nil {
		return nil, err
	}
	if l.delegates[to] == domain.ZeroAddress && !l.BalanceOf(to).IsZero() {
		more, err := l.delegate(to, to)
		if err != nil {
			return nil, err
		}
		events = append(events, more...)
	}
	return events, nil
}

// Delegate points account's voting power at delegatee. Delegating to the zero
// address stops accrual.
func (l *Ledger) Delegate(account, delegatee common.Address) ([]domain.Event, error) {
	return l.delegate(account, delegatee)
}

func (l *Ledger) validateMint(to common.Address, amount *uint256.Int) error {
	if to == domain.ZeroAddress || to == l.address {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReceiver, to.Hex())
	}
	if amount.IsZero() {
		return domain.ErrDepositFailed
	}
	sum, overflow := new(uint256.Int).AddOverflow(&l.total, amount)
	if overflow || sum.Gt(MaxSupply) {
		return fmt.Errorf("%w: supply would exceed %s", domain.ErrSupplyOverflow, MaxSupply.Dec())
	}
	return nil
}

func (l *Ledger) validateTransfer(from, to common.Address, amount *uint256.Int) error {
	if from == domain.ZeroAddress {
		return domain.ErrInvalidSender
	}
	if to == domain.ZeroAddress || to == l.address {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReceiver, to.Hex())
	}
	return l.requireBalance(from, amount)
}

func (l *Ledger) requireBalance(account common.Address, amount *uint256.Int) error {
	if bal := l.BalanceOf(account); bal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", domain.ErrInsufficientBalance, account.Hex(), bal.Dec(), amount.Dec())
	}
	return nil
}

func (l *Ledger) mint(to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	l.add(to, amount)
	l.total.Add(&l.total, amount)
	if err := l.writeSupply(); err != nil {
		return nil, err
	}
	events := []domain.Event{domain.TransferEvent{From: domain.ZeroAddress, To: to, Value: *amount}}
	moved, err := l.moveVotes(domain.ZeroAddress, l.delegates[to], amount)
	if err != nil {
		return nil, err
	}
	l.log.Debug("deposit", "to", to, "amount", amount.Dec())
	return append(events, moved...), nil
}

func (l *Ledger) transfer(from, to common.Address, amount *uint256.Int) ([]domain.Event, error) {
	l.sub(from, amount)
	l.add(to, amount)
	events := []domain.Event{domain.TransferEvent{From: from, To: to, Value: *amount}}
	moved, err := l.moveVotes(l.delegates[from], l.delegates[to], amount)
	if err != nil {
		return nil, err
	}
	return append(events, moved...), nil
}

func (l *Ledger) delegate(account, delegatee common.Address) ([]domain.Event, error) {
	old := l.delegates[account]
	if delegatee == domain.ZeroAddress {
		delete(l.delegates, account)
	} else {
		l.delegates[account] = delegatee
	}
	events := []domain.Event{domain.DelegateChangedEvent{Delegator: account, FromDelegate: old, ToDelegate: delegatee}}
	moved, err := l.moveVotes(old, delegatee, l.BalanceOf(account))
	if err != nil {
		return nil, err
	}
	l.log.Debug("delegate", "account", account, "from", old, "to", delegatee)
	return append(events, moved...), nil
}

// moveVotes shifts amount of voting power between delegates. No checkpoint
// is written for a zero amount or when src equals dst.
func (l *Ledger) moveVotes(src, dst common.Address, amount *uint256.Int) ([]domain.Event, error) {
	if src == dst || amount.IsZero() {
		return nil, nil
	}
	block := l.clock.BlockNumber()
	var events []domain.Event
	if src != domain.ZeroAddress {
		latest := l.votes.Latest(src)
		prev, next, err := l.votes.Write(src, block, new(uint256.Int).Sub(&latest, amount))
		if err != nil {
			return nil, err
		}
		events = append(events, domain.DelegateVotesChangedEvent{Delegate: src, PreviousVotes: prev, NewVotes: next})
	}
	if dst != domain.ZeroAddress {
		latest := l.votes.Latest(dst)
		prev, next, err := l.votes.Write(dst, block, new(uint256.Int).Add(&latest, amount))
		if err != nil {
			return nil, err
		}
		events = append(events, domain.DelegateVotesChangedEvent{Delegate: dst, PreviousVotes: prev, NewVotes: next})
	}
	return events, nil
}

func (l *Ledger) writeSupply() error {
	_, _, err := l.supply.Push(l.clock.BlockNumber(), &l.total)
	return err
}

func (l *Ledger) add(account common.Address, amount *uint256.Int) {
	b, ok := l.balances[account]
	if !ok {
		b = new(uint256.Int)
		l.balances[account] = b
	}
	b.Add(b, amount)
}

func (l *Ledger) sub(account common.Address, amount *uint256.Int) {
	b, ok := l.balances[account]
	if !ok {
		return
	}
	b.Sub(b, amount)
	if b.IsZero() {
		delete(l.balances, account)
	}
}
