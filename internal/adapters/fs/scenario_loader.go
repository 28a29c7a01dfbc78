package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ScenarioLoaderAdapter reads scenario YAML files
type ScenarioLoaderAdapter struct {
	projectRoot string
}

// NewScenarioLoaderAdapter creates a new ScenarioLoaderAdapter
func NewScenarioLoaderAdapter(cfg *config.RuntimeConfig) *ScenarioLoaderAdapter {
	return &ScenarioLoaderAdapter{projectRoot: cfg.ProjectRoot}
}

// LoadScenario parses a scenario. Relative paths are resolved against the
// working directory first, then the project root. Unknown keys are rejected
// so typos in step fields fail loudly.
func (l *ScenarioLoaderAdapter) LoadScenario(_ context.Context, path string) (*domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !filepath.IsAbs(path) && l.projectRoot != "" {
		data, err = os.ReadFile(filepath.Join(l.projectRoot, path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var scenario domain.Scenario
	if err := dec.Decode(&scenario); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario %s is empty", path)
		}
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	for i, step := range scenario.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("scenario %s: step %d has no action", path, i+1)
		}
	}
	return &scenario, nil
}

// Ensure ScenarioLoaderAdapter implements ScenarioSource
var _ usecase.ScenarioSource = (*ScenarioLoaderAdapter)(nil)
