// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/migrations"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if list {
				all, err := migrations.Load()
				if err != nil {
					return err
				}
				for _, m := range all {
					fmt.Fprintln(out, m)
				}
				return nil
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Log)

			ctx := cmd.Context()
			db, err := core.NewDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exits right after

			ran, err := migrations.Up(ctx, db.DB, logger)
			if err != nil {
				return err
			}

			if len(ran) == 0 {
				fmt.Fprintln(out, "schema up to date")
				return nil
			}
			for _, m := range ran {
				fmt.Fprintf(out, "applied %s\n", m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migrations without connecting")

	return cmd
}
