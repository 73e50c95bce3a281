package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"servctl/internal/cli"
	"servctl/internal/session"

	"github.com/spf13/cobra"
)

var (
	outputFormat string
	playersWait  time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status <server-id>",
	Short: "Show whether a server is running, plus the tunnel state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		services, err := bootstrap()
		if err != nil {
			return err
		}
		st, err := services.Status(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), format).Status(st)
	},
}

func newProcessActionCmd(kind session.ActionKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " <server-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := bootstrap()
			if err != nil {
				return err
			}
			if err := services.Action(commandContext(cmd), args[0], session.TargetProcess, kind, 0); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested %s of server '%s'\n", kind, args[0])
			return nil
		},
	}
}

var sendCmd = &cobra.Command{
	Use:   "send <server-id> <command...>",
	Short: "Send a console command to a running server",
	Long: `Sends one console command to a running server. The words after the
server id are joined with spaces, so quoting is optional:

  servctl send survival say hello everyone`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		if err := services.Send(commandContext(cmd), args[0], text); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent '%s'\n", text)
		return nil
	},
}

func newQuickActionCmd(prefix, short string) *cobra.Command {
	return &cobra.Command{
		Use:   prefix + " <server-id> <player>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := bootstrap()
			if err != nil {
				return err
			}
			text, err := services.Quick(commandContext(cmd), args[0], prefix, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent '%s'\n", text)
			return nil
		},
	}
}

var playersCmd = &cobra.Command{
	Use:   "players <server-id>",
	Short: "List the players online, as printed by the server console",
	Long: `Sends 'list' to the server and prints the console output that follows
for a short while (see --wait).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(commandContext(cmd), playersWait)
		defer cancel()

		followed := make(chan error, 1)
		go func() {
			followed <- services.FollowLogs(ctx, args[0], cmd.OutOrStdout())
		}()
		if err := services.Send(ctx, args[0], "list"); err != nil {
			cancel()
			<-followed
			return err
		}
		return <-followed
	},
}

func init() {
	statusCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	playersCmd.Flags().DurationVar(&playersWait, "wait", 3*time.Second, "How long to print console output after sending 'list'")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(newProcessActionCmd(session.ActionStart, "Start a server"))
	rootCmd.AddCommand(newProcessActionCmd(session.ActionStop, "Stop a server"))
	rootCmd.AddCommand(newProcessActionCmd(session.ActionRestart, "Restart a server: stop, wait, then start"))
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(newQuickActionCmd("op", "Make a player operator"))
	rootCmd.AddCommand(newQuickActionCmd("kick", "Kick a player"))
	rootCmd.AddCommand(playersCmd)
}
