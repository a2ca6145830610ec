package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"painel/internal/auth"
)

var hashCmd = &cobra.Command{
	Use:   "hash <text>",
	Short: "Print the SHA-256 digest used in credential files",
	Long: `Print the lowercase hex SHA-256 digest of text.

Use it to fill the user_hash and password_hash entries of CREDENTIALS_FILE.
The text is hashed as given, without trimming.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.Hash(args[0]))
		return err
	},
}
