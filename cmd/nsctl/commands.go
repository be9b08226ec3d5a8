package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			version, err := a.DB.CurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show store location, size and schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := a.DB.Info(ctx)
			if err != nil {
				return err
			}
			last, ok, err := a.Streaks.LastReconciled(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui := newStyles(out)
			fmt.Fprintln(out, ui.labelValue("path", info.Path))
			fmt.Fprintln(out, ui.labelValue("size", fmt.Sprintf("%d bytes", info.SizeBytes)))
			fmt.Fprintln(out, ui.labelValue("schema version", info.SchemaVersion))
			if ok {
				fmt.Fprintln(out, ui.labelValue("reconciled", ui.good.Render(last.Format(time.RFC3339))))
			} else {
				fmt.Fprintln(out, ui.labelValue("reconciled", ui.bad.Render("never")))
			}
			return nil
		},
	}
}

func newXPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "xp <user-id>",
		Short: "Show a user's XP total by source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := a.Users.Get(ctx, args[0])
			if err != nil {
				return err
			}

			entries, err := a.Repo.XP.List(ctx, database.XPFilter{UserID: user.ID})
			if err != nil {
				return err
			}

			bySource := make(map[models.XPSource]int)
			total := 0
			for _, e := range entries {
				bySource[e.Source] += e.Points
				total += e.Points
			}

			out := cmd.OutOrStdout()
			ui := newStyles(out)
			fmt.Fprintln(out, ui.heading.Render(user.Name)+" "+ui.muted.Render("<"+user.Email+">"))
			for _, source := range slices.Sorted(maps.Keys(bySource)) {
				fmt.Fprintln(out, "  "+ui.labelValue(strings.ReplaceAll(string(source), "_", " "), bySource[source]))
			}
			fmt.Fprintln(out, ui.labelValue("total", total))
			return nil
		},
	}
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Reset streaks whose habit missed its period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Streaks.Reconcile(ctx, models.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, reset %d, failed %d\n", result.Checked, result.Reset, result.Failed)
			return nil
		},
	}
}
