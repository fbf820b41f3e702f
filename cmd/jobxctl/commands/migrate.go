package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobx/internal/database"
)

// MigrateCmd creates or updates the schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(e.db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}
