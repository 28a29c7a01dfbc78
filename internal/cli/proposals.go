package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewProposalsCmd creates the proposals command group
func NewProposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"proposal", "p"},
		Short:   "Inspect recorded proposals",
		Long:    "Commands for inspecting the proposals recorded by scenario runs",
	}

	cmd.AddCommand(newProposalsListCmd())
	cmd.AddCommand(newProposalsShowCmd())
	return cmd
}

func newProposalsListCmd() *cobra.Command {
	var (
		scenario string
		state    string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded proposals",
		Long: `List the proposals recorded by scenario runs, grouped by scenario.

The list can be filtered by scenario name or final proposal state.`,
		Example: `  # List everything
  trebgov proposals list

  # Only the executed proposals of one scenario
  trebgov proposals list --scenario lifecycle --state executed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListProposals.Run(cmd.Context(), usecase.ListProposalsParams{
				Scenario: scenario,
				State:    state,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*usecase.ProposalListResult](cmd.OutOrStdout()).Render(result)
			}
			return render.NewProposalsRenderer(cmd.OutOrStdout(), !color.NoColor).Render(result)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Filter by scenario name")
	cmd.Flags().StringVar(&state, "state", "", "Filter by proposal state (pending, active, canceled, defeated, succeeded, queued, expired, executed)")

	return cmd
}

func newProposalsShowCmd() *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "show <proposal>",
		Short: "Show a recorded proposal",
		Long: `Show the details of one recorded proposal.

The proposal can be given as:
- Full proposal id (decimal)
- A prefix of the id: "4519"
- Part of the description: "raise quorum"

When several proposals match, an interactive picker is shown unless
--non-interactive is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			rec, err := app.ShowProposal.Run(cmd.Context(), usecase.ShowProposalParams{
				Query:    args[0],
				Scenario: scenario,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve proposal: %w", err)
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*domain.ProposalRecord](cmd.OutOrStdout()).Render(rec)
			}
			return render.NewProposalRenderer(cmd.OutOrStdout(), !color.NoColor).Render(rec)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Only match proposals of this scenario")

	return cmd
}
