package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobx/cmd/jobxctl/commands"
)

var rootCmd = &cobra.Command{
	Use:   "jobxctl",
	Short: "jobxctl - JobX operator and applicant tooling",
	Long: `jobxctl - JobX operator and applicant tooling.

Available commands:
  migrate  - Create or update the database schema
  sweep    - Close every job past its expiry
  set-plan - Move a user between the free and paid plans
  apply    - Submit an application through the API

Examples:
  jobxctl migrate
  jobxctl sweep
  jobxctl set-plan --email ada@example.com --plan paid
  jobxctl apply --token $TOKEN --job-id 12 --resume cv.pdf`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", os.Getenv("JOBX_CONFIG"), "path to a YAML config file")

	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.SweepCmd)
	rootCmd.AddCommand(commands.SetPlanCmd)
	rootCmd.AddCommand(commands.ApplyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
