package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/dao"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governor"
)

// ErrExpectationFailed is returned when a scenario assertion does not hold.
var ErrExpectationFailed = errors.New("expectation failed")

// RunScenarioParams contains parameters for running a scenario
type RunScenarioParams struct {
	Path string
	// DryRun skips persisting proposal records.
	DryRun bool
}

// RunScenario deploys a DAO from the governance config and replays a
// scenario against it.
type RunScenario struct {
	config *config.RuntimeConfig
	source ScenarioSource
	store  ProposalStore
	sink   ProgressSink
	log    *slog.Logger
	now    func() time.Time
}

// NewRunScenario creates a new RunScenario use case
func NewRunScenario(cfg *config.RuntimeConfig, source ScenarioSource, store ProposalStore, sink ProgressSink, log *slog.Logger) *RunScenario {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RunScenario{
		config: cfg,
		source: source,
		store:  store,
		sink:   sink,
		log:    log,
		now:    time.Now,
	}
}

// Run executes the scenario. A failing step without expect_error aborts the
// run and nothing is persisted.
func (uc *RunScenario) Run(ctx context.Context, params RunScenarioParams) (*ScenarioResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading scenario",
		Spinner: true,
	})

	scenario, err := uc.source.LoadScenario(ctx, params.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	name := scenario.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(params.Path), filepath.Ext(params.Path))
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: "Deploying governance contracts",
		Spinner: true,
	})
	d, err := deployDAO(uc.config.Governance, uc.log)
	if err != nil {
		return nil, err
	}

	run := &scenarioRun{
		dao:       d,
		resolver:  resolver{addrs: d.Addresses(), hasTimelock: d.HasTimelock()},
		proposals: make(map[string]domain.ProposalID),
	}
	result := &ScenarioResult{Scenario: name}

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "step",
			Current: i + 1,
			Total:   len(scenario.Steps),
			Message: step.Action,
			Spinner: true,
		})

		res, err := run.step(i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		uc.log.Debug("scenario step applied", "scenario", name, "step", i+1, "action", step.Action,
			"block", res.Block, "events", len(res.Events), "expectedError", res.ExpectedError)
		result.Steps = append(result.Steps, *res)
	}

	records, err := run.records(name, uc.now())
	if err != nil {
		return nil, err
	}
	result.Proposals = records
	result.FinalBlock = d.BlockNumber() - 1
	result.FinalTime = d.Timestamp()

	if !params.DryRun {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "saving",
			Message: "Saving proposal records",
			Spinner: true,
		})
		for _, rec := range records {
			if err := uc.store.SaveProposal(ctx, rec); err != nil {
				return nil, fmt.Errorf("failed to save proposal %s: %w", rec.ID, err)
			}
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(scenario.Steps),
		Total:   len(scenario.Steps),
		Message: "Scenario complete",
	})
	return result, nil
}

// DeploymentAddresses returns the deployer and the contract addresses a DAO
// deployed from gov receives. The timelock address is zero when disabled.
func DeploymentAddresses(gov *config.GovernanceConfig) (common.Address, dao.Addresses, error) {
	deployer, err := resolver{}.address(gov.Deployer)
	if err != nil {
		return common.Address{}, dao.Addresses{}, fmt.Errorf("deployer: %w", err)
	}
	addrs := dao.PredictAddresses(deployer)
	if !gov.Timelock {
		addrs.Timelock = common.Address{}
	}
	return deployer, addrs, nil
}

// RoleAssignment lists the holders of one timelock role.
type RoleAssignment struct {
	Role    domain.Role
	Members []common.Address
}

// DeploymentRoles deploys the configured DAO and reports the timelock role
// holders it starts with. Empty without a timelock.
func DeploymentRoles(gov *config.GovernanceConfig) ([]RoleAssignment, error) {
	d, err := deployDAO(gov, nil)
	if err != nil {
		return nil, err
	}
	if !d.HasTimelock() {
		return nil, nil
	}
	return lo.Map(domain.AllRoles(), func(role domain.Role, _ int) RoleAssignment {
		return RoleAssignment{Role: role, Members: d.RoleMembers(role)}
	}), nil
}

// deployDAO builds the scenario DAO from the governance parameters.
func deployDAO(gov *config.GovernanceConfig, log *slog.Logger) (*dao.DAO, error) {
	if gov == nil {
		return nil, fmt.Errorf("missing governance configuration")
	}
	deployer, addrs, err := DeploymentAddresses(gov)
	if err != nil {
		return nil, err
	}
	pre := resolver{addrs: addrs, hasTimelock: gov.Timelock}

	var guardian common.Address
	if gov.Guardian != "" {
		if guardian, err = pre.address(gov.Guardian); err != nil {
			return nil, fmt.Errorf("guardian: %w", err)
		}
	}

	d, err := dao.New(dao.Config{
		Governor: governor.Config{
			VotingDelay:       gov.VotingDelay,
			VotingPeriod:      gov.VotingPeriod,
			ProposalThreshold: gov.ProposalThreshold,
			QuorumNumerator:   gov.QuorumNumerator,
			GracePeriod:       uint64(gov.GracePeriod / time.Second),
			Guardian:          guardian,
		},
		MinDelay:        gov.MinDelay,
		WithoutTimelock: !gov.Timelock,
		Deployer:        deployer,
		RenounceAdmin:   gov.RenounceAdmin,
		Genesis:         gov.Genesis,
		BlockTime:       gov.BlockTime,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy dao: %w", err)
	}
	return d, nil
}

// scenarioRun holds the state of one scenario replay.
type scenarioRun struct {
	dao *dao.DAO
	resolver
	proposals map[string]domain.ProposalID
	order     []domain.ProposalID
}

func (r *scenarioRun) step(index int, step domain.ScenarioStep) (*StepResult, error) {
	res := &StepResult{Index: index, Action: step.Action, Block: r.dao.BlockNumber()}
	receipt, err := r.apply(step)

	if step.ExpectError != "" {
		want, ok := domain.ErrorByName(step.ExpectError)
		if !ok {
			return nil, fmt.Errorf("unknown error name %q", step.ExpectError)
		}
		if err == nil {
			return nil, fmt.Errorf("%w: expected %s, step succeeded", ErrExpectationFailed, step.ExpectError)
		}
		if !errors.Is(err, want) {
			return nil, fmt.Errorf("%w: expected %s, got: %v", ErrExpectationFailed, step.ExpectError, err)
		}
		res.ExpectedError = step.ExpectError
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		res.Block = receipt.Block
		res.Events = receipt.Events
	}
	return res, nil
}

func (r *scenarioRun) apply(step domain.ScenarioStep) (*dao.Receipt, error) {
	switch step.Action {
	case "deposit", "deposit_and_delegate":
		to, amount, err := r.accountAndAmount(step.To, step.Amount)
		if err != nil {
			return nil, err
		}
		if step.Action == "deposit" {
			return r.dao.Deposit(to, amount)
		}
		return r.dao.DepositAndDelegate(to, amount)

	case "withdraw":
		from, amount, err := r.accountAndAmount(step.From, step.Amount)
		if err != nil {
			return nil, err
		}
		return r.dao.Withdraw(from, amount)

	case "transfer", "transfer_and_delegate":
		from, amount, err := r.accountAndAmount(step.From, step.Amount)
		if err != nil {
			return nil, err
		}
		to, err := r.address(step.To)
		if err != nil {
			return nil, err
		}
		if step.Action == "transfer" {
			return r.dao.Transfer(from, to, amount)
		}
		return r.dao.TransferAndDelegate(from, to, amount)

	case "delegate":
		from, err := r.address(step.From)
		if err != nil {
			return nil, err
		}
		to, err := r.address(step.To)
		if err != nil {
			return nil, err
		}
		return r.dao.Delegate(from, to)

	case "propose":
		return r.propose(step)

	case "vote":
		from, err := r.address(step.From)
		if err != nil {
			return nil, err
		}
		id, err := r.proposal(step.Proposal)
		if err != nil {
			return nil, err
		}
		support, err := domain.ParseVoteType(step.Support)
		if err != nil {
			return nil, err
		}
		return r.dao.CastVote(from, id, support, step.Reason)

	case "queue", "execute":
		id, err := r.proposal(step.Proposal)
		if err != nil {
			return nil, err
		}
		if step.Action == "queue" {
			return r.dao.Queue(id)
		}
		return r.dao.Execute(id)

	case "cancel":
		from, err := r.address(step.From)
		if err != nil {
			return nil, err
		}
		id, err := r.proposal(step.Proposal)
		if err != nil {
			return nil, err
		}
		return r.dao.Cancel(from, id)

	case "mine":
		blocks := step.Blocks
		if blocks == 0 {
			blocks = 1
		}
		r.dao.Mine(blocks)
		return nil, nil

	case "increase_time":
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", step.Duration, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid duration %q: negative", step.Duration)
		}
		r.dao.IncreaseTime(d)
		return nil, nil

	case "grant_role", "revoke_role":
		from, err := r.address(step.From)
		if err != nil {
			return nil, err
		}
		role, err := domain.ParseRole(step.Role)
		if err != nil {
			return nil, err
		}
		to, err := r.address(step.To)
		if err != nil {
			return nil, err
		}
		if step.Action == "grant_role" {
			return r.dao.GrantRole(from, role, to)
		}
		return r.dao.RevokeRole(from, role, to)

	case "renounce_role":
		from, err := r.address(step.From)
		if err != nil {
			return nil, err
		}
		role, err := domain.ParseRole(step.Role)
		if err != nil {
			return nil, err
		}
		return r.dao.RenounceRole(from, role)

	case "expect":
		if step.Expect == nil {
			return nil, fmt.Errorf("expect step without assertions")
		}
		return nil, r.check(step.Expect)
	}
	return nil, fmt.Errorf("unknown action %q", step.Action)
}

func (r *scenarioRun) propose(step domain.ScenarioStep) (*dao.Receipt, error) {
	from, err := r.address(step.From)
	if err != nil {
		return nil, err
	}
	calls := make([]domain.Call, 0, len(step.Calls))
	for i, c := range step.Calls {
		call, err := r.encodeCall(c)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		calls = append(calls, call)
	}

	label := step.Label
	if label == "" {
		label = step.Description
	}
	if _, taken := r.proposals[label]; taken {
		return nil, fmt.Errorf("proposal label %q already used", label)
	}

	id, receipt, err := r.dao.Propose(from, calls, step.Description)
	if err != nil {
		return nil, err
	}
	r.proposals[label] = id
	r.order = append(r.order, id)
	return receipt, nil
}

func (r *scenarioRun) accountAndAmount(account, amount string) (common.Address, *uint256.Int, error) {
	addr, err := r.address(account)
	if err != nil {
		return common.Address{}, nil, err
	}
	if amount == "" {
		return common.Address{}, nil, fmt.Errorf("missing amount")
	}
	v, err := domain.ParseTokenAmount(amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	return addr, v, nil
}

// proposal resolves a proposal label, falling back to a literal id.
func (r *scenarioRun) proposal(ref string) (domain.ProposalID, error) {
	if id, ok := r.proposals[ref]; ok {
		return id, nil
	}
	id, err := domain.ParseProposalID(ref)
	if err != nil {
		return domain.ProposalID{}, fmt.Errorf("%w: unknown proposal %q", domain.ErrNonexistentProposal, ref)
	}
	return id, nil
}

func (r *scenarioRun) check(e *domain.Expectation) error {
	if e.Proposal != "" {
		id, err := r.proposal(e.Proposal)
		if err != nil {
			return err
		}
		sv, err := r.dao.GetStateAndVotes(id)
		if err != nil {
			return err
		}
		if e.State != "" {
			want, err := domain.ParseProposalState(e.State)
			if err != nil {
				return err
			}
			if sv.State != want {
				return fmt.Errorf("%w: proposal %s is %s, want %s", ErrExpectationFailed, e.Proposal, sv.State, want)
			}
		}
		for _, tally := range []struct {
			name string
			want string
			got  uint256.Int
		}{{"for", e.For, sv.For}, {"against", e.Against, sv.Against}, {"abstain", e.Abstain, sv.Abstain}} {
			if err := expectAmount(fmt.Sprintf("%s votes of %s", tally.name, e.Proposal), tally.want, &tally.got); err != nil {
				return err
			}
		}
	}

	if e.Account != "" {
		addr, err := r.address(e.Account)
		if err != nil {
			return err
		}
		if err := expectAmount("votes of "+e.Account, e.Votes, r.dao.GetVotes(addr)); err != nil {
			return err
		}
		if err := expectAmount("balance of "+e.Account, e.Balance, r.dao.BalanceOf(addr)); err != nil {
			return err
		}
		if e.Delegate != "" {
			want, err := r.address(e.Delegate)
			if err != nil {
				return err
			}
			if got := r.dao.Delegates(addr); got != want {
				return fmt.Errorf("%w: %s delegates to %s, want %s", ErrExpectationFailed, e.Account, got.Hex(), want.Hex())
			}
		}
		if e.Role != "" && e.HasRole != nil {
			role, err := domain.ParseRole(e.Role)
			if err != nil {
				return err
			}
			if got := r.dao.HasRole(role, addr); got != *e.HasRole {
				return fmt.Errorf("%w: %s has %s = %t, want %t", ErrExpectationFailed, e.Account, role, got, *e.HasRole)
			}
		}
	}

	return expectAmount("total supply", e.TotalSupply, r.dao.TotalSupply())
}

func expectAmount(what, want string, got *uint256.Int) error {
	if want == "" {
		return nil
	}
	v, err := domain.ParseTokenAmount(want)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if !v.Eq(got) {
		return fmt.Errorf("%w: %s is %s, want %s", ErrExpectationFailed, what,
			domain.FormatTokenAmount(got), domain.FormatTokenAmount(v))
	}
	return nil
}

// records summarises every proposal created during the run.
func (r *scenarioRun) records(scenario string, at time.Time) ([]*domain.ProposalRecord, error) {
	out := make([]*domain.ProposalRecord, 0, len(r.order))
	for _, id := range r.order {
		p, err := r.dao.Proposal(id)
		if err != nil {
			return nil, err
		}
		quorum := ""
		if p.Snapshot < r.dao.BlockNumber() {
			q, err := r.dao.Quorum(p.Snapshot)
			if err != nil {
				return nil, err
			}
			quorum = domain.FormatTokenAmount(q)
		}
		out = append(out, newProposalRecord(scenario, p, quorum, at))
	}
	return out, nil
}

func newProposalRecord(scenario string, p *domain.ProposalDetails, quorum string, at time.Time) *domain.ProposalRecord {
	calls := make([]domain.RecordCall, len(p.Calls))
	for i, c := range p.Calls {
		calls[i] = domain.RecordCall{
			Target: c.Target.Hex(),
			Value:  domain.FormatTokenAmount(c.Value),
			Data:   hexData(c.Data),
		}
	}
	return &domain.ProposalRecord{
		ID:          p.ID.String(),
		Scenario:    scenario,
		Proposer:    p.Proposer.Hex(),
		Description: p.Description,
		State:       p.State.String(),
		Snapshot:    p.Snapshot,
		Deadline:    p.Deadline,
		ETA:         p.ETA,
		Quorum:      quorum,
		Votes: domain.RecordVotes{
			Against: domain.FormatTokenAmount(&p.Votes.Against),
			For:     domain.FormatTokenAmount(&p.Votes.For),
			Abstain: domain.FormatTokenAmount(&p.Votes.Abstain),
		},
		Calls:      calls,
		RecordedAt: at.UTC(),
	}
}

func hexData(b []byte) string {
	if len(b) == 0 {
		return "0x"
	}
	return "0x" + common.Bytes2Hex(b)
}
