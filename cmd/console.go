package cmd

import (
	"fmt"

	"servctl/internal/app"

	"github.com/spf13/cobra"
)

// consoleNoTUI selects the plain streaming mode, useful when stdout is a
// pipe or a log file.
var consoleNoTUI bool

var consoleCmd = &cobra.Command{
	Use:   "console <server-id>",
	Short: "Attach to a server with the interactive dashboard or a plain log stream",
	Long: `Attaches to one server and keeps its state live until you quit.
It can run in two modes:

1. Interactive TUI Mode (default):
   - Shows the run state and the tunnel state, refreshed in the background.
   - Start, stop and restart the server and toggle the tunnel from the keyboard.
   - Follows the live console output and sends commands and quick actions.

2. Non-TUI Mode (using --no-tui flag):
   - Prints run state changes, tunnel changes and console output to stdout.
   - Runs until interrupted (e.g., Ctrl+C).

Use 'servctl servers' to list the server ids known to the panel.`,
	Args: cobra.ExactArgs(1),
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg := newAppConfig(consoleNoTUI)
	cfg.ServerID = args[0]

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(commandContext(cmd))
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().BoolVar(&consoleNoTUI, "no-tui", false, "Print the console to stdout instead of showing the dashboard")
}
