package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
)

// DAOFileName is the governance parameter file looked up in the project root.
const DAOFileName = "dao.toml"

// DefaultGenesis keeps scenario block timestamps reproducible.
var DefaultGenesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultGovernanceConfig returns the parameters of the reference deployment.
func DefaultGovernanceConfig() *config.GovernanceConfig {
	threshold, _ := domain.ParseTokenAmount("10")
	return &config.GovernanceConfig{
		VotingDelay:       1,
		VotingPeriod:      60,
		ProposalThreshold: threshold,
		QuorumNumerator:   4,
		Timelock:          true,
		MinDelay:          24 * time.Hour,
		RenounceAdmin:     true,
		Deployer:          "deployer",
		BlockTime:         30 * time.Second,
		Genesis:           DefaultGenesis,
	}
}

// loadEnvFiles loads .env files so dao.toml can reference ${VARS}.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadGovernanceConfig reads dao.toml on top of the defaults.
// Returns the defaults and found=false when dao.toml does not exist.
func loadGovernanceConfig(projectRoot string) (*config.GovernanceConfig, bool, error) {
	cfg := DefaultGovernanceConfig()

	path := filepath.Join(projectRoot, DAOFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, false, nil
	}

	loadEnvFiles(projectRoot)

	var raw config.DAOFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", DAOFileName, err)
	}
	if err := applyDAOFile(cfg, &raw); err != nil {
		return nil, false, fmt.Errorf("invalid %s: %w", DAOFileName, err)
	}
	return cfg, true, nil
}

func applyDAOFile(cfg *config.GovernanceConfig, raw *config.DAOFile) error {
	gov := raw.Governor
	if gov.VotingDelay != nil {
		cfg.VotingDelay = *gov.VotingDelay
	}
	if gov.VotingPeriod != nil {
		cfg.VotingPeriod = *gov.VotingPeriod
	}
	if gov.QuorumPercent != nil {
		cfg.QuorumNumerator = *gov.QuorumPercent
	}
	if s := os.ExpandEnv(gov.ProposalThreshold); s != "" {
		v, err := domain.ParseTokenAmount(s)
		if err != nil {
			return fmt.Errorf("governor.proposal_threshold: %w", err)
		}
		cfg.ProposalThreshold = v
	}
	if s := os.ExpandEnv(gov.GracePeriod); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("governor.grace_period: %w", err)
		}
		cfg.GracePeriod = d
	}
	cfg.Guardian = os.ExpandEnv(gov.Guardian)

	tl := raw.Timelock
	if tl.Enabled != nil {
		cfg.Timelock = *tl.Enabled
	}
	if tl.RenounceAdmin != nil {
		cfg.RenounceAdmin = *tl.RenounceAdmin
	}
	if s := os.ExpandEnv(tl.MinDelay); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("timelock.min_delay: %w", err)
		}
		cfg.MinDelay = d
	}

	ch := raw.Chain
	if s := os.ExpandEnv(ch.Deployer); s != "" {
		cfg.Deployer = s
	}
	if s := os.ExpandEnv(ch.BlockTime); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("chain.block_time: %w", err)
		}
		if d < time.Second {
			return fmt.Errorf("chain.block_time: must be at least 1s, got %s", d)
		}
		cfg.BlockTime = d
	}
	if s := os.ExpandEnv(ch.Genesis); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("chain.genesis: %w", err)
		}
		cfg.Genesis = t
	}

	if cfg.VotingPeriod == 0 {
		return fmt.Errorf("governor.voting_period: %w", domain.ErrInvalidSetting)
	}
	if cfg.QuorumNumerator > 100 {
		return fmt.Errorf("governor.quorum_percent: %w: %d over 100", domain.ErrInvalidSetting, cfg.QuorumNumerator)
	}
	return nil
}
