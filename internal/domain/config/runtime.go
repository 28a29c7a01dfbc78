package config

import (
	"time"
)

// StoreKind selects the proposal record backend.
type StoreKind string

const (
	StoreJSON   StoreKind = "json"
	StoreBadger StoreKind = "badger"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string
	Store       StoreKind

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Config source tracking
	ConfigSource string // "dao.toml" or "defaults"

	// Resolved configurations
	Governance *GovernanceConfig
}
