// Command painel serves the SEEU extract dashboard.
package main

import (
	"context"

	"github.com/spf13/cobra"

	"painel/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "painel",
	Short: "Painel de cumprimentos do SEEU",
	Long: `Serves a login-gated dashboard over a SEEU extract (CSV).

Without a subcommand painel starts the web server, like 'painel serve'.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, hashCmd, reportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		cli.Fatal(err)
	}
}
