// Package governor implements the proposal lifecycle: creation, voting,
// quorum and success evaluation, timelocked queueing, execution and
// cancellation.
package governor

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/checkpoint"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

// QuorumDenominator is the denominator of the quorum fraction.
const QuorumDenominator = 100

// VotesSource is the voting power ledger as seen by the governor.
type VotesSource interface {
	GetVotes(account common.Address) *uint256.Int
	GetPastVotes(account common.Address, block uint64) (*uint256.Int, error)
	GetPastTotalSupply(block uint64) (*uint256.Int, error)
}

// Timelock is the delayed-execution queue proposals are handed to.
type Timelock interface {
	Address() common.Address
	MinDelay() uint64
	ScheduleBatch(caller common.Address, calls []domain.Call, predecessor, salt common.Hash, delay uint64) ([]domain.Event, error)
	ExecuteBatch(caller common.Address, calls []domain.Call, predecessor, salt common.Hash) ([]domain.Event, error)
	Cancel(caller common.Address, id common.Hash) ([]domain.Event, error)
	GetOperationState(id common.Hash) domain.OperationState
}

// CallRouter executes proposal calls when the governor runs without a timelock.
type CallRouter interface {
	Prepare(sender common.Address, call domain.Call) (timelock.Effect, error)
}

// Config holds the governance parameters.
type Config struct {
	// VotingDelay is the number of blocks between proposal creation and the snapshot.
	VotingDelay uint64
	// VotingPeriod is the number of blocks voting stays open after the snapshot.
	VotingPeriod      uint64
	ProposalThreshold *uint256.Int
	// QuorumNumerator is the quorum as a percentage of the snapshot supply.
	QuorumNumerator uint64
	// GracePeriod is the number of seconds a queued proposal stays executable
	// after its eta. Zero disables expiry.
	GracePeriod uint64
	Guardian    common.Address
}

// Validate checks the bounds the settings setters also enforce.
func (c Config) Validate() error {
	if c.VotingPeriod == 0 {
		return fmt.Errorf("%w: voting period must be positive", domain.ErrInvalidSetting)
	}
	if c.QuorumNumerator > QuorumDenominator {
		return fmt.Errorf("%w: quorum numerator %d over %d", domain.ErrInvalidSetting, c.QuorumNumerator, QuorumDenominator)
	}
	return nil
}

// Deps are the collaborators of a Governor. Timelock may be nil, in which
// case proposals execute directly through Router.
type Deps struct {
	Clock    domain.Clock
	Token    VotesSource
	Timelock Timelock
	Router   CallRouter
	Logger   *slog.Logger
}

type proposal struct {
	id              domain.ProposalID
	proposer        common.Address
	calls           []domain.Call
	description     string
	descriptionHash common.Hash
	snapshot        uint64
	deadline        uint64

	votes  domain.ProposalVotes
	voters map[common.Address]domain.VoteType

	queued     bool
	eta        uint64
	timelockID common.Hash
	executed   bool
	canceled   bool
}

// Governor is not safe for concurrent use; the DAO serialises access.
type Governor struct {
	address  common.Address
	clock    domain.Clock
	token    VotesSource
	timelock Timelock
	router   CallRouter
	log      *slog.Logger

	votingDelay       uint64
	votingPeriod      uint64
	proposalThreshold uint256.Int
	quorumNumerators  checkpoint.Trace
	gracePeriod       uint64
	guardian          common.Address

	proposals map[domain.ProposalID]*proposal
	order     []domain.ProposalID
}

// New creates a governor deployed at address.
func New(address common.Address, cfg Config, deps Deps) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Clock == nil || deps.Token == nil {
		return nil, fmt.Errorf("governor requires a clock and a votes source")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &Governor{
		address:      address,
		clock:        deps.Clock,
		token:        deps.Token,
		timelock:     deps.Timelock,
		router:       deps.Router,
		log:          logger.With("component", "governor"),
		votingDelay:  cfg.VotingDelay,
		votingPeriod: cfg.VotingPeriod,
		gracePeriod:  cfg.GracePeriod,
		guardian:     cfg.Guardian,
		proposals:    make(map[domain.ProposalID]*proposal),
	}
	if cfg.ProposalThreshold != nil {
		g.proposalThreshold.Set(cfg.ProposalThreshold)
	}
	if _, _, err := g.quorumNumerators.Push(g.clock.BlockNumber(), uint256.NewInt(cfg.QuorumNumerator)); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Governor) Address() common.Address {
	return g.address
}

// Executor is the address governance calls are made from: the timelock when
// one is attached, the governor itself otherwise.
func (g *Governor) Executor() common.Address {
	if g.timelock != nil {
		return g.timelock.Address()
	}
	return g.address
}

// Propose creates a proposal. The proposer's current voting power must reach
// the proposal threshold.
func (g *Governor) Propose(proposer common.Address, targets []common.Address, values []*uint256.Int, calldatas [][]byte, description string) (domain.ProposalID, []domain.Event, error) {
	votes := g.token.GetVotes(proposer)
	if votes.Lt(&g.proposalThreshold) {
		return domain.ProposalID{}, nil, domain.InsufficientProposerVotesError{
			Proposer:  proposer,
			Votes:     votes,
			Threshold: new(uint256.Int).Set(&g.proposalThreshold),
		}
	}
	if len(targets) != len(values) || len(targets) != len(calldatas) {
		return domain.ProposalID{}, nil, fmt.Errorf("%w: %d targets, %d values, %d calldatas",
			domain.ErrInvalidProposalLength, len(targets), len(values), len(calldatas))
	}
	if len(targets) == 0 {
		return domain.ProposalID{}, nil, domain.ErrEmptyProposal
	}

	calls := make([]domain.Call, len(targets))
	for i := range targets {
		calls[i] = domain.Call{Target: targets[i], Value: values[i], Data: calldatas[i]}.Copy()
	}

	descHash := DescriptionHash(description)
	id, err := HashProposal(calls, descHash)
	if err != nil {
		return domain.ProposalID{}, nil, fmt.Errorf("failed to hash proposal: %w", err)
	}
	if _, exists := g.proposals[id]; exists {
		return domain.ProposalID{}, nil, fmt.Errorf("%w: %s", domain.ErrDuplicateProposal, id.Short())
	}

	snapshot := g.clock.BlockNumber() + g.votingDelay
	p := &proposal{
		id:              id,
		proposer:        proposer,
		calls:           calls,
		description:     description,
		descriptionHash: descHash,
		snapshot:        snapshot,
		deadline:        snapshot + g.votingPeriod,
		voters:          make(map[common.Address]domain.VoteType),
	}
	g.proposals[id] = p
	g.order = append(g.order, id)

	g.log.Debug("proposal created", "id", id.Short(), "proposer", proposer, "snapshot", p.snapshot, "deadline", p.deadline)
	return id, []domain.Event{domain.ProposalCreatedEvent{
		ProposalID:  id,
		Proposer:    proposer,
		Calls:       domain.CopyCalls(calls),
		VoteStart:   p.snapshot,
		VoteEnd:     p.deadline,
		Description: description,
	}}, nil
}

// CastVote records a ballot weighted by the voter's power at the snapshot.
func (g *Governor) CastVote(voter common.Address, id domain.ProposalID, support domain.VoteType) ([]domain.Event, error) {
	return g.CastVoteWithReason(voter, id, support, "")
}

func (g *Governor) CastVoteWithReason(voter common.Address, id domain.ProposalID, support domain.VoteType, reason string) ([]domain.Event, error) {
	p, err := g.get(id)
	if err != nil {
		return nil, err
	}
	st, err := g.state(p)
	if err != nil {
		return nil, err
	}
	if st != domain.ProposalActive {
		return nil, fmt.Errorf("%w: proposal %s is %s", domain.ErrProposalNotActive, id.Short(), st)
	}
	if _, voted := p.voters[voter]; voted {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrAlreadyVoted, voter.Hex(), id.Short())
	}
	if !support.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidVoteType, support)
	}
	weight, err := g.token.GetPastVotes(voter, p.snapshot)
	if err != nil {
		return nil, err
	}

	p.voters[voter] = support
	switch support {
	case domain.VoteAgainst:
		p.votes.Against.Add(&p.votes.Against, weight)
	case domain.VoteFor:
		p.votes.For.Add(&p.votes.For, weight)
	case domain.VoteAbstain:
		p.votes.Abstain.Add(&p.votes.Abstain, weight)
	}

	g.log.Debug("vote cast", "id", id.Short(), "voter", voter, "support", support, "weight", weight.Dec())
	return []domain.Event{domain.VoteCastEvent{
		Voter:      voter,
		ProposalID: id,
		Support:    support,
		Weight:     *weight,
		Reason:     reason,
	}}, nil
}

// Queue hands a succeeded proposal to the timelock.
func (g *Governor) Queue(id domain.ProposalID) ([]domain.Event, error) {
	p, err := g.get(id)
	if err != nil {
		return nil, err
	}
	st, err := g.state(p)
	if err != nil {
		return nil, err
	}
	if g.timelock == nil {
		return nil, fmt.Errorf("%w: proposal %s cannot be queued, no timelock is attached",
			domain.ErrUnexpectedProposalState, id.Short())
	}
	if st != domain.ProposalSucceeded {
		return nil, domain.UnexpectedStateError{ProposalID: id, Current: st, Expected: []domain.ProposalState{domain.ProposalSucceeded}}
	}

	salt := timelockSalt(g.address, p.descriptionHash)
	opID, err := timelock.HashOperationBatch(p.calls, common.Hash{}, salt)
	if err != nil {
		return nil, err
	}
	delay := g.timelock.MinDelay()
	events, err := g.timelock.ScheduleBatch(g.address, p.calls, common.Hash{}, salt, delay)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule proposal %s: %w", id.Short(), err)
	}

	p.queued = true
	p.eta = g.clock.Timestamp() + delay
	p.timelockID = opID

	g.log.Debug("proposal queued", "id", id.Short(), "eta", p.eta)
	return append(events, domain.ProposalQueuedEvent{ProposalID: id, ETA: p.eta}), nil
}

// Execute runs a queued proposal through the timelock, or a succeeded one
// directly when the governor has no timelock.
func (g *Governor) Execute(id domain.ProposalID) ([]domain.Event, error) {
	p, err := g.get(id)
	if err != nil {
		return nil, err
	}
	st, err := g.state(p)
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	if g.timelock != nil {
		if st != domain.ProposalQueued {
			return nil, domain.UnexpectedStateError{ProposalID: id, Current: st, Expected: []domain.ProposalState{domain.ProposalQueued}}
		}
		salt := timelockSalt(g.address, p.descriptionHash)
		events, err = g.timelock.ExecuteBatch(g.address, p.calls, common.Hash{}, salt)
		if err != nil {
			return nil, fmt.Errorf("failed to execute proposal %s: %w", id.Short(), err)
		}
	} else {
		if st != domain.ProposalSucceeded {
			return nil, domain.UnexpectedStateError{ProposalID: id, Current: st, Expected: []domain.ProposalState{domain.ProposalSucceeded}}
		}
		events, err = g.executeDirect(p)
		if err != nil {
			return nil, err
		}
	}

	p.executed = true
	g.log.Debug("proposal executed", "id", id.Short())
	return append(events, domain.ProposalExecutedEvent{ProposalID: id}), nil
}

func (g *Governor) executeDirect(p *proposal) ([]domain.Event, error) {
	effects := make([]timelock.Effect, len(p.calls))
	for i, c := range p.calls {
		if g.router == nil {
			effects[i] = func() []domain.Event { return nil }
			continue
		}
		eff, err := g.router.Prepare(g.address, c)
		if err != nil {
			return nil, fmt.Errorf("call %d to %s failed: %w", i, c.Target.Hex(), err)
		}
		effects[i] = eff
	}
	var events []domain.Event
	for _, eff := range effects {
		events = append(events, eff()...)
	}
	return events, nil
}

// Cancel stops a proposal. The proposer may cancel while Pending; the
// guardian may cancel any non-terminal proposal. Cancelling a queued
// proposal also cancels its timelock operation.
func (g *Governor) Cancel(caller common.Address, id domain.ProposalID) ([]domain.Event, error) {
	p, err := g.get(id)
	if err != nil {
		return nil, err
	}
	st, err := g.state(p)
	if err != nil {
		return nil, err
	}
	if st.IsTerminal() {
		return nil, domain.UnexpectedStateError{ProposalID: id, Current: st, Expected: []domain.ProposalState{
			domain.ProposalPending, domain.ProposalActive, domain.ProposalSucceeded, domain.ProposalQueued,
		}}
	}

	switch {
	case g.guardian != domain.ZeroAddress && caller == g.guardian:
	case caller == p.proposer:
		if st != domain.ProposalPending {
			return nil, domain.UnexpectedStateError{ProposalID: id, Current: st, Expected: []domain.ProposalState{domain.ProposalPending}}
		}
	default:
		return nil, domain.UnauthorizedError{Caller: caller, Need: "the proposer or the guardian"}
	}

	var events []domain.Event
	if p.queued && g.timelock != nil && st == domain.ProposalQueued {
		events, err = g.timelock.Cancel(g.address, p.timelockID)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel timelock operation: %w", err)
		}
	}

	p.canceled = true
	g.log.Debug("proposal canceled", "id", id.Short(), "by", caller)
	return append(events, domain.ProposalCanceledEvent{ProposalID: id}), nil
}

func (g *Governor) get(id domain.ProposalID) (*proposal, error) {
	p, ok := g.proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNonexistentProposal, id.Short())
	}
	return p, nil
}
