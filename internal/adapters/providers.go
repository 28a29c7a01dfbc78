package adapters

import (
	"fmt"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-gov/internal/adapters/badger"
	"github.com/trebuchet-org/treb-gov/internal/adapters/fs"
	"github.com/trebuchet-org/treb-gov/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-gov/internal/adapters/progress"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ProvideProposalStore picks the proposal store backend named by the
// runtime config. The cleanup closes the badger database when one was used.
func ProvideProposalStore(cfg *config.RuntimeConfig) (usecase.ProposalStore, func(), error) {
	switch cfg.Store {
	case config.StoreJSON, "":
		return fs.NewProposalStoreAdapter(cfg), func() {}, nil
	case config.StoreBadger:
		store := badger.NewProposalStoreAdapter(cfg)
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// ProvideProgressSink returns a spinner for interactive terminals and a
// silent sink otherwise.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerProgressReporter()
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewScenarioLoaderAdapter,
	wire.Bind(new(usecase.ScenarioSource), new(*fs.ScenarioLoaderAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ProposalSelector), new(*interactive.SelectorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideProposalStore,
	ProvideProgressSink,

	FSSet,
	InteractiveSet,
)
