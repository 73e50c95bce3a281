package cmd

import (
	"fmt"
	"os"
	"strings"

	"servctl/internal/auth"

	"github.com/spf13/cobra"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the panel and store the access token",
	Long: `Exchanges a username and password for an access token and stores it in
~/.config/servctl/token. The password is read without echo.

The stored token is used when neither --token nor SERVCTL_TOKEN is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		username := strings.TrimSpace(loginUsername)
		if username == "" {
			return fmt.Errorf("--username is required")
		}
		password, err := auth.ReadPassword(os.Stdin, cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}
		token, err := services.Client.Login(commandContext(cmd), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := services.Tokens.Save(token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s, token stored in %s\n", username, services.Tokens.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		if err := services.Tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Panel username")
}
