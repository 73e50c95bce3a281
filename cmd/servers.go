package cmd

import (
	"servctl/internal/cli"

	"github.com/spf13/cobra"
)

var serversOutputFormat string

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the servers known to the panel",
	Long: `Lists every server the panel manages with its id, name and version.
The id is what the other commands take as <server-id>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(serversOutputFormat)
		if err != nil {
			return err
		}
		services, err := bootstrap()
		if err != nil {
			return err
		}
		servers, err := services.Servers(commandContext(cmd))
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), format).Servers(servers)
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.Flags().StringVarP(&serversOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
