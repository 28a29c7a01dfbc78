package config

import (
	"time"

	"github.com/holiman/uint256"
)

// GovernanceConfig holds the deployment parameters of a scenario DAO.
type GovernanceConfig struct {
	// Governor
	VotingDelay       uint64 // blocks
	VotingPeriod      uint64 // blocks
	ProposalThreshold *uint256.Int
	QuorumNumerator   uint64 // percent of the snapshot supply
	GracePeriod       time.Duration
	Guardian          string // account name or hex address, empty for none

	// Timelock
	Timelock      bool
	MinDelay      time.Duration
	RenounceAdmin bool

	// Chain
	Deployer  string
	BlockTime time.Duration
	Genesis   time.Time
}

// DAOFile is the raw dao.toml layout.
type DAOFile struct {
	Governor GovernorSection `toml:"governor"`
	Timelock TimelockSection `toml:"timelock"`
	Chain    ChainSection    `toml:"chain"`
}

type GovernorSection struct {
	VotingDelay       *uint64 `toml:"voting_delay"`
	VotingPeriod      *uint64 `toml:"voting_period"`
	ProposalThreshold string  `toml:"proposal_threshold,omitempty"` // tokens
	QuorumPercent     *uint64 `toml:"quorum_percent"`
	GracePeriod       string  `toml:"grace_period,omitempty"`
	Guardian          string  `toml:"guardian,omitempty"`
}

type TimelockSection struct {
	Enabled       *bool  `toml:"enabled"`
	MinDelay      string `toml:"min_delay,omitempty"`
	RenounceAdmin *bool  `toml:"renounce_admin"`
}

type ChainSection struct {
	Deployer  string `toml:"deployer,omitempty"`
	BlockTime string `toml:"block_time,omitempty"`
	Genesis   string `toml:"genesis,omitempty"` // RFC3339
}
