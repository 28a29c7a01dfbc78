package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/app"
	"github.com/trebuchet-org/treb-gov/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// Execute runs the root command and releases app resources afterwards,
// including when the command fails.
func Execute(ctx context.Context) error {
	rootCmd, release := newRootCmd()
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, func()) {
	var cleanup func()

	rootCmd := &cobra.Command{
		Use:   "trebgov",
		Short: "Token-vote governance simulator",
		Long: `trebgov runs governance scenarios against an in-memory DAO: a staked
voting-power token with delegation checkpoints, a governor with quorum and
proposal threshold, and a timelock with role-based access control.

Scenarios are YAML files of steps (deposit, delegate, propose, vote, queue,
execute, mine, ...). Governance parameters come from dao.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot := config.FindProjectRoot()
			v := config.SetupViper(projectRoot, cmd)

			appInstance, release, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			cleanup = release

			appInstance.Logger.Debug("app initialized",
				"projectRoot", appInstance.Config.ProjectRoot,
				"dataDir", appInstance.Config.DataDir,
				"store", appInstance.Config.Store,
				"governance", appInstance.Config.ConfigSource)

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cleanup = func() {
					cancel()
					release()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().String("store", "", "Proposal store backend (json or badger)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for proposal records (defaults to <project>/.trebgov)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	runCmd := NewRunCmd()
	runCmd.GroupID = "main"
	rootCmd.AddCommand(runCmd)

	proposalsCmd := NewProposalsCmd()
	proposalsCmd.GroupID = "main"
	rootCmd.AddCommand(proposalsCmd)

	configCmd := NewConfigCmd()
	configCmd.GroupID = "management"
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, func() {
		if cleanup != nil {
			cleanup()
		}
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
