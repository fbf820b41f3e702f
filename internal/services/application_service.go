package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

type ApplicationService struct {
	DB     *gorm.DB
	Quota  *QuotaPolicy
	Cache  ListingCache
	Strict bool // enforce forward-only status transitions
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewApplicationService(db *gorm.DB, quota *QuotaPolicy, cache ListingCache, strict bool, log *zap.SugaredLogger) *ApplicationService {
	if cache == nil {
		cache = NopCache{}
	}
	return &ApplicationService{
		DB:     db,
		Quota:  quota,
		Cache:  cache,
		Strict: strict,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ApplyInput is what an applicant submits.
type ApplyInput struct {
	JobID       uint
	CoverLetter string
	ResumeURL   string
}

// ApplicationPage is one page of an applicant's history.
type ApplicationPage struct {
	Applications []models.Application `json:"applications"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

var errAlreadyApplied = apperr.WithHint(apperr.ErrConflict, "You have already applied to this job")

// Apply submits an application. The applicant row is locked first so
// concurrent submissions by one user serialize, then the checks run in
// order: job exists, job open, no duplicate, quota.
func (s *ApplicationService) Apply(ctx context.Context, applicantID uint, in ApplyInput) (*models.Application, error) {
	if in.JobID == 0 {
		return nil, apperr.Invalid("job_id", "is required")
	}

	var app *models.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, applicantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrapf(apperr.ErrUnauthorized, "applicant %d", applicantID)
		}
		if err != nil {
			return apperr.Wrap(err, "lock applicant")
		}

		var job models.Job
		err = tx.First(&job, in.JobID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "job %d", in.JobID), "Job not found")
		}
		if err != nil {
			return apperr.Wrapf(err, "load job %d", in.JobID)
		}
		if job.Status != models.JobStatusActive || !job.ExpiresAt.After(now) {
			return apperr.WithHint(apperr.Wrapf(apperr.ErrInvalidState, "job %d is %s", job.ID, job.Status),
				"This job is no longer accepting applications")
		}

		var existing int64
		err = tx.Model(&models.Application{}).
			Where("job_id = ? AND applicant_id = ?", job.ID, applicantID).
			Count(&existing).Error
		if err != nil {
			return apperr.Wrap(err, "check existing application")
		}
		if existing > 0 {
			return errAlreadyApplied
		}

		if err := s.Quota.CanApply(ctx, tx, &user, now); err != nil {
			return err
		}

		app = &models.Application{
			JobID:       job.ID,
			ApplicantID: applicantID,
			Status:      models.StatusPending,
			CoverLetter: strings.TrimSpace(in.CoverLetter),
			ResumeURL:   strings.TrimSpace(in.ResumeURL),
			AppliedAt:   now,
		}
		if err := tx.Create(app).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyApplied
			}
			return apperr.Wrap(err, "insert application")
		}

		err = tx.Model(&models.Job{}).Where("id = ?", job.ID).
			UpdateColumn("applications_count", gorm.Expr("applications_count + 1")).Error
		if err != nil {
			return apperr.Wrap(err, "increment applications count")
		}

		return tx.Create(&models.ApplicationEvent{
			CreatedAt:     now,
			ApplicationID: app.ID,
			JobID:         job.ID,
			ActorID:       applicantID,
			ToStatus:      models.StatusPending,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.FromContext(ctx, s.log).Infow("application submitted",
		logger.FieldApplicationID, app.ID,
		logger.FieldJobID, app.JobID,
		logger.FieldUserID, applicantID)
	return app, nil
}

// Withdraw deletes the caller's application and its ledger rows. Another
// user's application is reported as not found.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, applicantID uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.Application
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND applicant_id = ?", applicationID, applicantID).
			First(&app).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "application %d for applicant %d", applicationID, applicantID),
				"Application not found")
		}
		if err != nil {
			return apperr.Wrapf(err, "load application %d", applicationID)
		}

		if err := tx.Where("application_id = ?", app.ID).Delete(&models.ApplicationEvent{}).Error; err != nil {
			return apperr.Wrap(err, "delete application events")
		}
		if err := tx.Delete(&app).Error; err != nil {
			return apperr.Wrap(err, "delete application")
		}

		err = tx.Model(&models.Job{}).Where("id = ?", app.JobID).
			UpdateColumn("applications_count",
				gorm.Expr("CASE WHEN applications_count > 0 THEN applications_count - 1 ELSE 0 END")).Error
		if err != nil {
			return apperr.Wrap(err, "decrement applications count")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)

	logger.FromContext(ctx, s.log).Infow("application withdrawn",
		logger.FieldApplicationID, applicationID,
		logger.FieldUserID, applicantID)
	return nil
}

// ListMine returns the applicant's applications with job and company,
// newest first.
func (s *ApplicationService) ListMine(ctx context.Context, applicantID uint, status string, page, limit int) (*ApplicationPage, error) {
	if status != "" && !models.IsApplicationStatus(status) {
		return nil, invalidStatus()
	}
	page, limit = normalizePage(page, limit)

	db := s.DB.WithContext(ctx).Model(&models.Application{}).Where("applicant_id = ?", applicantID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	db = db.Session(&gorm.Session{})

	out := &ApplicationPage{Applications: []models.Application{}, Page: page, Limit: limit}
	if err := db.Count(&out.Total).Error; err != nil {
		return nil, apperr.Wrap(err, "count applications")
	}
	err := db.Preload("Job").Preload("Job.Company").
		Order("applied_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out.Applications).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list applications")
	}
	return out, nil
}

// ListForJob returns the applicants of a job owned by companyID.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID, companyID uint, status string) ([]models.Application, error) {
	if status != "" && !models.IsApplicationStatus(status) {
		return nil, invalidStatus()
	}
	if _, err := s.ownedJob(ctx, s.DB, jobID, companyID); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx).Where("job_id = ?", jobID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	apps := []models.Application{}
	err := db.Preload("Applicant", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).Order("applied_at DESC").Order("id DESC").Find(&apps).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list job applications")
	}
	return apps, nil
}

// SetStatus moves an application of one of companyID's jobs to status,
// stamps reviewed_at and records the change in the ledger.
func (s *ApplicationService) SetStatus(ctx context.Context, applicationID, companyID, actorID uint, status string) (*models.Application, error) {
	if !models.IsApplicationStatus(status) {
		return nil, invalidStatus()
	}

	var app models.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, applicationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "application %d", applicationID), "Application not found")
		}
		if err != nil {
			return apperr.Wrapf(err, "load application %d", applicationID)
		}
		if _, err := s.ownedJob(ctx, tx, app.JobID, companyID); err != nil {
			if apperr.Is(err, apperr.ErrNotFound) {
				return apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "job of application %d", applicationID), "Application not found")
			}
			return err
		}

		from := app.Status
		if s.Strict && !models.CanTransition(from, status) {
			return apperr.WithHint(apperr.Wrapf(apperr.ErrInvalidState, "transition %s -> %s", from, status),
				"Cannot move an application from "+from+" to "+status)
		}

		now := s.now()
		err = tx.Model(&app).Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": now,
		}).Error
		if err != nil {
			return apperr.Wrap(err, "update application status")
		}
		app.Status = status
		app.ReviewedAt = &now

		return tx.Create(&models.ApplicationEvent{
			CreatedAt:     now,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			ActorID:       actorID,
			FromStatus:    from,
			ToStatus:      status,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Infow("application status changed",
		logger.FieldApplicationID, app.ID,
		logger.FieldCompanyID, companyID,
		"status", status)
	return &app, nil
}

// History returns the ledger of an application, oldest first. Only the
// applicant and the owning company may read it; anyone else gets not found.
func (s *ApplicationService) History(ctx context.Context, applicationID, userID, companyID uint) ([]models.ApplicationEvent, error) {
	notFound := apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "application %d", applicationID), "Application not found")

	var app models.Application
	err := s.DB.WithContext(ctx).Preload("Job").First(&app, applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "load application %d", applicationID)
	}
	owner := companyID != 0 && app.Job != nil && app.Job.CompanyID == companyID
	if app.ApplicantID != userID && !owner {
		return nil, notFound
	}

	events := []models.ApplicationEvent{}
	err = s.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list application events")
	}
	return events, nil
}

// ownedJob loads jobID and checks it belongs to companyID.
func (s *ApplicationService) ownedJob(ctx context.Context, db *gorm.DB, jobID, companyID uint) (*models.Job, error) {
	var job models.Job
	err := db.WithContext(ctx).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "job %d", jobID), "Job not found")
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "load job %d", jobID)
	}
	if job.CompanyID != companyID {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrForbidden, "job %d belongs to company %d", jobID, job.CompanyID),
			"You can only manage applications for your own jobs")
	}
	return &job, nil
}

func (s *ApplicationService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.log.Warnw("listing cache invalidation failed", logger.FieldError, err)
	}
}

func invalidStatus() error {
	return apperr.Invalid("status", "must be one of: "+strings.Join(models.ApplicationStatuses, ", "))
}
