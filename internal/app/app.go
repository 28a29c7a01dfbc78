package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Logger *slog.Logger

	// Shared dependencies
	Progress usecase.ProgressSink

	// Use cases
	RunScenario   *usecase.RunScenario
	ListProposals *usecase.ListProposals
	ShowProposal  *usecase.ShowProposal
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
	progress usecase.ProgressSink,
	runScenario *usecase.RunScenario,
	listProposals *usecase.ListProposals,
	showProposal *usecase.ShowProposal,
) (*App, error) {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Progress:      progress,
		RunScenario:   runScenario,
		ListProposals: listProposals,
		ShowProposal:  showProposal,
	}, nil
}
