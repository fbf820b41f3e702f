package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobx/internal/services"
)

// SweepCmd runs one expiry pass, for cron deployments without the API's
// background sweeper.
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Close every job past its expiry",
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	cache := services.ListingCache(services.NopCache{})
	if e.cfg.Redis.URL != "" {
		rc, err := services.NewRedisCache(e.cfg.Redis.URL, e.cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer rc.Close()
		cache = rc
	}

	jobs := services.NewJobService(e.db, cache, e.log)
	closed, err := services.NewSweeperService(jobs, e.cfg.Sweeper.Interval, e.log).SweepOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Closed %d expired job(s)\n", closed)
	return nil
}
