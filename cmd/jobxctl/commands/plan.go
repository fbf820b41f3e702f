package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/services"
)

var (
	planUserID uint
	planEmail  string
	planName   string
)

// SetPlanCmd moves a user between plans. Billing is handled elsewhere.
var SetPlanCmd = &cobra.Command{
	Use:   "set-plan",
	Short: "Move a user between the free and paid plans",
	RunE:  runSetPlan,
}

func init() {
	SetPlanCmd.Flags().UintVar(&planUserID, "user-id", 0, "user id")
	SetPlanCmd.Flags().StringVar(&planEmail, "email", "", "user email (instead of --user-id)")
	SetPlanCmd.Flags().StringVar(&planName, "plan", "", "free or paid")
	SetPlanCmd.MarkFlagsMutuallyExclusive("user-id", "email")
	SetPlanCmd.MarkFlagsOneRequired("user-id", "email")
	_ = SetPlanCmd.MarkFlagRequired("plan")
}

func runSetPlan(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	users := services.NewUserService(e.db, e.log)
	quota := services.NewQuotaPolicy(e.cfg.Applications.FreeQuota, e.cfg.Applications.QuotaWindow)
	subs := services.NewSubscriptionService(e.db, quota, users, e.log)

	id := planUserID
	if planEmail != "" {
		u, err := users.GetByEmail(ctx, planEmail)
		if err != nil {
			return err
		}
		id = u.ID
	}

	u, err := subs.SetPlan(ctx, id, planName)
	if err != nil {
		return apperr.New(apperr.Message(err, err.Error()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now on the %s plan\n", u.Email, u.SubscriptionPlan)
	return nil
}
