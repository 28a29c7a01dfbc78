package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// ConfigView is the resolved configuration shown by `trebgov config`.
type ConfigView struct {
	ProjectRoot string `json:"projectRoot"`
	DataDir     string `json:"dataDir"`
	Store       string `json:"store"`
	Source      string `json:"source"`

	VotingDelay       uint64 `json:"votingDelay"`
	VotingPeriod      uint64 `json:"votingPeriod"`
	ProposalThreshold string `json:"proposalThreshold"`
	QuorumPercent     uint64 `json:"quorumPercent"`
	GracePeriod       string `json:"gracePeriod"`
	Guardian          string `json:"guardian,omitempty"`

	Timelock      bool   `json:"timelock"`
	MinDelay      string `json:"minDelay"`
	RenounceAdmin bool   `json:"renounceAdmin"`

	Deployer  string `json:"deployer"`
	BlockTime string `json:"blockTime"`
	Genesis   string `json:"genesis"`

	Addresses ConfigAddresses `json:"addresses"`
	Roles     []ConfigRole    `json:"roles,omitempty"`
}

// ConfigRole lists the timelock holders of one role after deployment.
type ConfigRole struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

type ConfigAddresses struct {
	Deployer string `json:"deployer"`
	Token    string `json:"token"`
	Timelock string `json:"timelock,omitempty"`
	Governor string `json:"governor"`
}

// ConfigRenderer renders the resolved configuration
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

func (r *ConfigRenderer) Render(view *ConfigView) error {
	fmt.Fprintf(r.out, "%s %s\n\n", headerStyle.Sprint("Governance parameters from"), view.Source)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{PaddingLeft: "  ", PaddingRight: " "}

	section := func(name string) {
		t.AppendRow(table.Row{headerStyle.Sprint(name), ""})
	}
	row := func(label string, value any) {
		t.AppendRow(table.Row{labelStyle.Sprint("  " + label), value})
	}

	section("Runtime")
	row("project root", view.ProjectRoot)
	row("data dir", view.DataDir)
	row("store", view.Store)

	section("Governor")
	row("voting delay", fmt.Sprintf("%d blocks", view.VotingDelay))
	row("voting period", fmt.Sprintf("%d blocks", view.VotingPeriod))
	row("proposal threshold", view.ProposalThreshold+" tokens")
	row("quorum", fmt.Sprintf("%d%%", view.QuorumPercent))
	row("grace period", view.GracePeriod)
	if view.Guardian != "" {
		row("guardian", view.Guardian)
	}

	section("Timelock")
	if view.Timelock {
		row("min delay", view.MinDelay)
		row("renounce admin", view.RenounceAdmin)
		for _, r := range view.Roles {
			members := "-"
			if len(r.Members) > 0 {
				members = addressStyle.Sprint(strings.Join(r.Members, ", "))
			}
			row(r.Role, members)
		}
	} else {
		row("enabled", false)
	}

	section("Chain")
	row("deployer", view.Deployer)
	row("block time", view.BlockTime)
	row("genesis", view.Genesis)

	section("Addresses")
	row("deployer", addressStyle.Sprint(view.Addresses.Deployer))
	row("token", addressStyle.Sprint(view.Addresses.Token))
	if view.Addresses.Timelock != "" {
		row("timelock", addressStyle.Sprint(view.Addresses.Timelock))
	}
	row("governor", addressStyle.Sprint(view.Addresses.Governor))

	fmt.Fprintln(r.out, t.Render())
	return nil
}

// Ensure ConfigRenderer implements Renderer
var _ Renderer[*ConfigView] = (*ConfigRenderer)(nil)
