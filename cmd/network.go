package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect Stacks networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := network.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 1},
			{Title: "Name", Width: 9},
			{Title: "Display", Width: 16},
			{Title: "API", Width: 30},
			{Title: "Explorer chain", Width: 14},
		})

		for _, n := range reg.All() {
			mark := ""
			if n.Name == cfg.NetworkMode {
				mark = ui.StyleSuccess.Render("●")
			}
			api := n.APIURL
			if n.Name == cfg.NetworkMode && cfg.APIURL != "" {
				api = cfg.APIURL
			}
			t.AddRow(ui.Row{mark, ui.NetworkName(n.Name), n.DisplayName, api, n.ExplorerName})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta("● active  ·  change with: stxtoken config set-network-mode <mode>"))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the active network's API answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := activeNetwork()
		if err != nil {
			return err
		}
		client := newClient(net)

		ctx, cancel := context.WithTimeout(cmd.Context(), config.PingTimeout)
		defer cancel()

		latency, height, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("%s unreachable: %w", net.APIURL, err)
		}
		fmt.Println(ui.KeyValueBlock(net.DisplayName, [][2]string{
			{"API", net.APIURL},
			{"Latency", latency.Round(1e6).String()},
			{"Tip height", fmt.Sprint(height)},
		}))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkPingCmd)
}
