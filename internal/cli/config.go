package cli

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the runtime settings and the governance parameters scenarios are
deployed with.

Governance parameters are read from dao.toml in the project root, after
loading .env and .env.local; ${VAR} references are expanded. Runtime
settings come from flags, TREBGOV_* environment variables and
.trebgov/config.local.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			view, err := configView(app.Config)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*render.ConfigView](cmd.OutOrStdout()).Render(view)
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).Render(view)
		},
	}
}

func configView(cfg *config.RuntimeConfig) (*render.ConfigView, error) {
	gov := cfg.Governance
	deployer, addrs, err := usecase.DeploymentAddresses(gov)
	if err != nil {
		return nil, err
	}

	view := &render.ConfigView{
		ProjectRoot:       cfg.ProjectRoot,
		DataDir:           cfg.DataDir,
		Store:             string(cfg.Store),
		Source:            cfg.ConfigSource,
		VotingDelay:       gov.VotingDelay,
		VotingPeriod:      gov.VotingPeriod,
		ProposalThreshold: domain.FormatTokenAmount(gov.ProposalThreshold),
		QuorumPercent:     gov.QuorumNumerator,
		GracePeriod:       durationOrNone(gov.GracePeriod),
		Guardian:          gov.Guardian,
		Timelock:          gov.Timelock,
		MinDelay:          gov.MinDelay.String(),
		RenounceAdmin:     gov.RenounceAdmin,
		Deployer:          gov.Deployer,
		BlockTime:         gov.BlockTime.String(),
		Genesis:           gov.Genesis.UTC().Format(time.RFC3339),
		Addresses: render.ConfigAddresses{
			Deployer: deployer.Hex(),
			Token:    addrs.Token.Hex(),
			Governor: addrs.Governor.Hex(),
		},
	}
	if gov.Timelock {
		view.Addresses.Timelock = addrs.Timelock.Hex()
	}

	roles, err := usecase.DeploymentRoles(gov)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		view.Roles = append(view.Roles, render.ConfigRole{
			Role: r.Role.String(),
			Members: lo.Map(r.Members, func(a common.Address, _ int) string {
				return a.Hex()
			}),
		})
	}
	return view, nil
}

func durationOrNone(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}
