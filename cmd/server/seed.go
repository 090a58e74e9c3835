package main

import (
	"github.com/spf13/cobra"

	"github.com/rpattn/leadcrm/internal/db"
	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

// sampleEmployees is the demo roster referenced by the sample lead sheets.
var sampleEmployees = []domain.Employee{
	{EmployeeID: "EMP001", Name: "Alice Johnson", Email: "alice.johnson@company.com"},
	{EmployeeID: "EMP002", Name: "Bob Smith", Email: "bob.smith@company.com"},
	{EmployeeID: "EMP003", Name: "Carol Davis", Email: "carol.davis@company.com"},
	{EmployeeID: "EMP004", Name: "David Wilson", Email: "david.wilson@company.com"},
	{EmployeeID: "EMP005", Name: "Emma Brown", Email: "emma.brown@company.com"},
}

func newSeedEmployeesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-employees",
		Short: "Insert or refresh the sample employee roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			conn, err := db.NewConnection(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			count, err := repository.NewEmployeeRepository(conn.Pool).Upsert(cmd.Context(), sampleEmployees)
			if err != nil {
				return err
			}
			log.WithField("employees", count).Info("sample employees upserted")
			return nil
		},
	}
}
