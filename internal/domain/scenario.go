package domain

// Scenario is a scripted sequence of governance operations against a fresh DAO.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one operation. Which fields apply depends on Action.
// Accounts are names (resolved to deterministic addresses), hex addresses,
// or one of the deployed contracts: governor, timelock, token.
type ScenarioStep struct {
	Action string `yaml:"action"`

	// Caller of the operation.
	From string `yaml:"from,omitempty"`
	// Receiver, delegatee or role account depending on the action.
	To     string `yaml:"to,omitempty"`
	Amount string `yaml:"amount,omitempty"`

	// Label names a created proposal; Proposal references one by label or id.
	Label       string         `yaml:"label,omitempty"`
	Proposal    string         `yaml:"proposal,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Calls       []ScenarioCall `yaml:"calls,omitempty"`

	Support string `yaml:"support,omitempty"`
	Reason  string `yaml:"reason,omitempty"`

	Blocks   uint64 `yaml:"blocks,omitempty"`
	Duration string `yaml:"duration,omitempty"`
	Role     string `yaml:"role,omitempty"`

	// Expect holds the assertions of an expect step.
	Expect *Expectation `yaml:"expect,omitempty"`
	// ExpectError is the taxonomy name of the error the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ScenarioCall is one call of a proposal, either a known method with string
// arguments or raw hex calldata.
type ScenarioCall struct {
	Target string   `yaml:"target"`
	Value  string   `yaml:"value,omitempty"`
	Method string   `yaml:"method,omitempty"`
	Args   []string `yaml:"args,omitempty"`
	Data   string   `yaml:"data,omitempty"`
}

// Expectation asserts on DAO state. Empty fields are not checked.
type Expectation struct {
	Proposal string `yaml:"proposal,omitempty"`
	State    string `yaml:"state,omitempty"`
	For      string `yaml:"for,omitempty"`
	Against  string `yaml:"against,omitempty"`
	Abstain  string `yaml:"abstain,omitempty"`

	Account  string `yaml:"account,omitempty"`
	Votes    string `yaml:"votes,omitempty"`
	Balance  string `yaml:"balance,omitempty"`
	Delegate string `yaml:"delegate,omitempty"`

	Role    string `yaml:"role,omitempty"`
	HasRole *bool  `yaml:"has_role,omitempty"`

	TotalSupply string `yaml:"total_supply,omitempty"`
}
