//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-gov/internal/adapters"
	"github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/logging"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// InitApp creates a fully wired App instance. The cleanup releases the
// proposal store.
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunScenario,
		usecase.NewListProposals,
		usecase.NewShowProposal,

		// App
		NewApp,
	)
	return nil, nil, nil
}
