package cmd

import (
	"fmt"

	"servctl/internal/cli"
	"servctl/internal/session"

	"github.com/spf13/cobra"
)

var (
	tunnelPort         int
	tunnelOutputFormat string
)

var tunnelCmd = &cobra.Command{
	Use:   "tunnel",
	Short: "Manage the shared public tunnel",
	Long: `The tunnel exposes one local port through a public address so players
outside the network can join. There is one tunnel for all servers.

Available commands:
  start   - Start the tunnel (see --port)
  stop    - Stop the tunnel
  status  - Show whether the tunnel runs and its public address`,
}

var tunnelStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tunnel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTunnelAction(cmd, session.ActionStart)
	},
}

var tunnelStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tunnel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTunnelAction(cmd, session.ActionStop)
	},
}

var tunnelStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tunnel state and public address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(tunnelOutputFormat)
		if err != nil {
			return err
		}
		services, err := bootstrap()
		if err != nil {
			return err
		}
		ts, err := services.TunnelStatus(commandContext(cmd))
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), format).Tunnel(ts)
	},
}

func runTunnelAction(cmd *cobra.Command, kind session.ActionKind) error {
	services, err := bootstrap()
	if err != nil {
		return err
	}
	if err := services.Action(commandContext(cmd), "", session.TargetTunnel, kind, tunnelPort); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Requested tunnel %s\n", kind)
	return nil
}

func init() {
	rootCmd.AddCommand(tunnelCmd)

	tunnelCmd.AddCommand(tunnelStartCmd)
	tunnelCmd.AddCommand(tunnelStopCmd)
	tunnelCmd.AddCommand(tunnelStatusCmd)

	tunnelStartCmd.Flags().IntVarP(&tunnelPort, "port", "p", 0, "Local port to expose (default from config, 25565)")
	tunnelStatusCmd.Flags().StringVarP(&tunnelOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
