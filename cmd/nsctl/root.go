package main

import (
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

type rootOptions struct {
	dbPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "nsctl",
		Short:         "Administer a neuro-sync store",
		Long:          "nsctl migrates and inspects the neuro-sync SQLite store and runs streak reconciliation by hand.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides DB_PATH)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newInfoCmd(opts),
		newXPCmd(opts),
		newReconcileCmd(opts),
	)
	return cmd
}
