package main

import (
	"github.com/spf13/cobra"

	"github.com/rpattn/leadcrm/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var rollback int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			if rollback > 0 {
				return db.RollbackMigrations(cfg.Database, rollback, log)
			}
			return db.RunMigrations(cfg.Database, log)
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "roll back this many migrations instead of applying")
	return cmd
}
