package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

// SubscriptionService reads plans and quota usage. Plan changes arrive from
// the payment provider through SetPlan.
type SubscriptionService struct {
	DB    *gorm.DB
	Quota *QuotaPolicy
	Users *UserService
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewSubscriptionService(db *gorm.DB, quota *QuotaPolicy, users *UserService, log *zap.SugaredLogger) *SubscriptionService {
	return &SubscriptionService{
		DB:    db,
		Quota: quota,
		Users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *SubscriptionService) Usage(ctx context.Context, userID uint) (*QuotaUsage, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Quota.Usage(ctx, s.DB, user, s.now())
}

// SetPlan records the plan reported by the payment provider.
func (s *SubscriptionService) SetPlan(ctx context.Context, userID uint, plan string) (*models.User, error) {
	if plan != models.PlanFree && plan != models.PlanPaid {
		return nil, apperr.Invalid("plan", "must be one of: free, paid")
	}
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionPlan == plan {
		return user, nil
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("subscription_plan", plan).Error; err != nil {
		return nil, apperr.Wrapf(err, "set plan for user %d", userID)
	}

	logger.FromContext(ctx, s.log).Infow("subscription plan changed",
		logger.FieldUserID, userID,
		"from", user.SubscriptionPlan,
		"to", plan)
	user.SubscriptionPlan = plan
	return user, nil
}
