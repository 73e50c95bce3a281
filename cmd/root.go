package cmd

import (
	"context"
	"os"

	"servctl/internal/app"
	"servctl/pkg/logging"

	"github.com/spf13/cobra"
)

// Flags shared by every command that talks to the panel.
var (
	rootConfigPath string
	rootToken      string
	rootDebug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "servctl",
	Short: "Operate game servers hosted behind a remote panel",
	Long: `servctl is a terminal console for game servers managed by a remote panel.
It starts, stops and restarts servers, follows their live console output,
sends console commands and quick actions, and toggles the shared public tunnel.

Use 'servctl console <server-id>' for the interactive dashboard, the one-shot
commands for scripting, or 'servctl mcp' to let an AI assistant operate the
console over the Model Context Protocol.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. unknown servers, rejected actions)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "servctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Config file layered on top of ~/.config/servctl/config.yaml and ./.servctl/config.yaml")
	rootCmd.PersistentFlags().StringVar(&rootToken, "token", "", "Panel access token (overrides SERVCTL_TOKEN and the stored token)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}

// newAppConfig builds the application config from the persistent flags.
func newAppConfig(noTUI bool) *app.Config {
	return app.NewConfig(noTUI, rootDebug, rootConfigPath, rootToken)
}

// bootstrap loads the configuration and builds the panel services for the
// one-shot commands.
func bootstrap() (*app.Services, error) {
	return app.Bootstrap(newAppConfig(true))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
