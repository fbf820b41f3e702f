package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/testutil"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	clock   *testutil.Clock
	jobs    *JobService
	apps    *ApplicationService
	users   *UserService
	subs    *SubscriptionService
	company *CompanyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(epoch)
	log := logger.Nop()

	quota := NewQuotaPolicy(5, 30*24*time.Hour)
	f := &fixture{
		db:      db,
		clock:   clock,
		jobs:    NewJobService(db, nil, log),
		apps:    NewApplicationService(db, quota, nil, false, log),
		users:   NewUserService(db, log),
		company: NewCompanyService(db, log),
	}
	f.subs = NewSubscriptionService(db, quota, f.users, log)
	f.jobs.now = clock.Now
	f.apps.now = clock.Now
	f.subs.now = clock.Now
	return f
}
