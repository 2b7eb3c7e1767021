// Command tablebook proposes, joins and lists board game tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile string
		id      identity
		a       = &app{}
	)

	cmd := &cobra.Command{
		Use:           "tablebook",
		Short:         "Book seats at board game tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), envFile, cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Read TABLEBOOK_* variables from this file when it exists")
	flags.StringVar(&id.ID, "user", os.Getenv("TABLEBOOK_USER"), "ID of the acting user")
	flags.StringVar(&id.Username, "username", os.Getenv("TABLEBOOK_USERNAME"), "Display name of the acting user")
	flags.StringVar(&id.Email, "email", os.Getenv("TABLEBOOK_EMAIL"), "Email of the acting user")
	flags.BoolVar(&id.Admin, "admin", false, "Act as an administrator")
	flags.BoolVar(&id.Banned, "banned", false, "Act as a banned user")

	a.identity = &id

	cmd.AddCommand(
		migrateCmd(a),
		locationsCmd(a),
		proposeCmd(a),
		joinCmd(a),
		leaveCmd(a),
		updateCmd(a),
		deleteCmd(a),
		showCmd(a),
		listCmd(a),
		conflictsCmd(a),
	)
	return cmd
}
