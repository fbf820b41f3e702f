// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/jobx/internal/database"
	"github.com/justsurfingit/jobx/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to t.
// A single connection keeps every statement on the same in-memory file.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	cfg := database.GormConfig()
	cfg.Logger = gormlogger.Discard
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{T: t.UTC()} }

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// CreateUser inserts a user with the given role and plan.
func CreateUser(t *testing.T, db *gorm.DB, email, role, plan string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email, PasswordHash: "x", Role: role, SubscriptionPlan: plan}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateEmployer inserts an employer and the company they own.
func CreateEmployer(t *testing.T, db *gorm.DB, email, companyName string) (*models.User, *models.Company) {
	t.Helper()
	u := CreateUser(t, db, email, models.RoleEmployer, models.PlanFree)
	c := &models.Company{OwnerID: u.ID, Name: companyName}
	require.NoError(t, db.Create(c).Error)
	return u, c
}

// CreateJob inserts an active job for company with the given tier.
func CreateJob(t *testing.T, db *gorm.DB, companyID uint, title, tier string, createdAt time.Time) *models.Job {
	t.Helper()
	j := &models.Job{
		CreatedAt:   createdAt,
		CompanyID:   companyID,
		Title:       title,
		Description: "A long enough description of the role that passes every validation rule.",
		Location:    "Berlin",
		JobType:     "full-time",
		WorkMode:    "remote",
		Tier:        tier,
		Status:      models.JobStatusActive,
		ExpiresAt:   createdAt.Add(models.TierLifetime(tier)),
	}
	require.NoError(t, db.Create(j).Error)
	return j
}
