package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <server-id>",
	Short: "Follow a server's console output",
	Long: `Prints the live console output of a server until the panel closes the
stream or you press Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return services.FollowLogs(ctx, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
