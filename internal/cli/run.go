package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/adapters/progress"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		dryRun  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run a governance scenario against a fresh DAO",
		Long: `Deploy a fresh in-memory DAO from dao.toml and apply the steps of a
scenario file in order. Every proposal the scenario creates is recorded in
the proposal store unless --dry-run is given.

A step may name the error it is expected to fail with:

  - action: vote
    from: alice
    proposal: raise-quorum
    support: for
    expect_error: AlreadyVoted

Any other failing step aborts the run and nothing is recorded.`,
		Example: `  # Run a scenario and record its proposals
  trebgov run scenarios/lifecycle.yaml

  # Show every emitted event without recording anything
  trebgov run scenarios/lifecycle.yaml --dry-run -v

  # Record into the badger store
  trebgov run scenarios/lifecycle.yaml --store badger`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RunScenario.Run(cmd.Context(), usecase.RunScenarioParams{
				Path:   args[0],
				DryRun: dryRun,
			})
			if s, ok := app.Progress.(*progress.SpinnerProgressReporter); ok {
				s.Stop()
			}
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*usecase.ScenarioResult](cmd.OutOrStdout()).Render(result)
			}

			renderer := render.NewScenarioRenderer(cmd.OutOrStdout(), !color.NoColor, verbose)
			if err := renderer.Render(result); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatWarning("Dry run: no proposals were recorded"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(
					fmt.Sprintf("Scenario %s completed, %d proposal(s) recorded", result.Scenario, len(result.Proposals))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the scenario without recording proposals")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the events emitted by each step")

	return cmd
}
