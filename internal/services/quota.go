package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/models"
)

// QuotaPolicy limits free-plan applicants to Limit applications inside a
// rolling Window. Paid plans are never limited.
type QuotaPolicy struct {
	Limit  int
	Window time.Duration
}

func NewQuotaPolicy(limit int, window time.Duration) *QuotaPolicy {
	return &QuotaPolicy{Limit: limit, Window: window}
}

// QuotaUsage is what GET /api/subscriptions/me reports.
type QuotaUsage struct {
	Plan       string     `json:"plan"`
	Unlimited  bool       `json:"unlimited"`
	Used       int        `json:"used"`
	Limit      int        `json:"limit"`
	Remaining  int        `json:"remaining"`
	WindowDays int        `json:"window_days,omitempty"`
	ResetsAt   *time.Time `json:"resets_at"`
}

func (p *QuotaPolicy) limited(user *models.User) bool {
	return user.SubscriptionPlan != models.PlanPaid
}

// windowStart is the exclusive lower bound of the window ending at now.
func (p *QuotaPolicy) windowStart(now time.Time) time.Time {
	return now.Add(-p.Window)
}

func (p *QuotaPolicy) used(ctx context.Context, db *gorm.DB, userID uint, now time.Time) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Application{}).
		Where("applicant_id = ? AND applied_at > ?", userID, p.windowStart(now)).
		Count(&n).Error
	if err != nil {
		return 0, apperr.Wrap(err, "count applications in quota window")
	}
	return int(n), nil
}

// CanApply returns a *apperr.QuotaError when user may not submit another
// application at now. It only reads.
func (p *QuotaPolicy) CanApply(ctx context.Context, db *gorm.DB, user *models.User, now time.Time) error {
	if !p.limited(user) {
		return nil
	}
	used, err := p.used(ctx, db, user.ID, now)
	if err != nil {
		return err
	}
	if used >= p.Limit {
		return apperr.WithHint(&apperr.QuotaError{Limit: p.Limit, Used: used, RequiresPremium: true},
			"You have reached the free plan limit. Upgrade to apply to more jobs.")
	}
	return nil
}

// Usage reports the user's position in the window. ResetsAt is when the
// oldest counted application leaves the window.
func (p *QuotaPolicy) Usage(ctx context.Context, db *gorm.DB, user *models.User, now time.Time) (*QuotaUsage, error) {
	used, err := p.used(ctx, db, user.ID, now)
	if err != nil {
		return nil, err
	}
	if !p.limited(user) {
		return &QuotaUsage{Plan: user.SubscriptionPlan, Unlimited: true, Used: used}, nil
	}

	u := &QuotaUsage{
		Plan:       user.SubscriptionPlan,
		Used:       used,
		Limit:      p.Limit,
		Remaining:  max(p.Limit-used, 0),
		WindowDays: int(p.Window / (24 * time.Hour)),
	}
	if used == 0 {
		return u, nil
	}

	var oldest models.Application
	err = db.WithContext(ctx).
		Where("applicant_id = ? AND applied_at > ?", user.ID, p.windowStart(now)).
		Order("applied_at ASC").
		First(&oldest).Error
	if err != nil {
		return nil, apperr.Wrap(err, "find oldest application in window")
	}
	resets := oldest.AppliedAt.UTC().Add(p.Window)
	u.ResetsAt = &resets
	return u, nil
}
