package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// tierOrder sorts featured, then standard, then free.
var tierOrder = fmt.Sprintf("CASE jobs.tier WHEN '%s' THEN %d WHEN '%s' THEN %d ELSE %d END",
	models.TierFeatured, models.TierRank(models.TierFeatured),
	models.TierStandard, models.TierRank(models.TierStandard),
	models.TierRank(models.TierFree))

type JobService struct {
	DB    *gorm.DB
	Cache ListingCache
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewJobService(db *gorm.DB, cache ListingCache, log *zap.SugaredLogger) *JobService {
	if cache == nil {
		cache = NopCache{}
	}
	return &JobService{
		DB:    db,
		Cache: cache,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// JobPage is one page of the public listing.
type JobPage struct {
	Jobs  []models.Job `json:"jobs"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// CreateJob posts a listing for companyID. The tier defaults to free and
// fixes expires_at.
func (s *JobService) CreateJob(ctx context.Context, companyID uint, req *dtos.JobCreationRequest) (*models.Job, error) {
	if err := validateJob(req); err != nil {
		return nil, err
	}
	tier := req.Tier
	if tier == "" {
		tier = models.TierFree
	}

	now := s.now()
	job := &models.Job{
		CreatedAt:   now,
		UpdatedAt:   now,
		CompanyID:   companyID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		JobType:     req.JobType,
		WorkMode:    req.WorkMode,
		Salary:      strings.TrimSpace(req.Salary),
		Skills:      cleanSkills(req.Skills),
		Tier:        tier,
		Status:      models.JobStatusActive,
		ExpiresAt:   now.Add(models.TierLifetime(tier)),
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apperr.Wrap(err, "create job")
	}
	s.invalidate(ctx)

	logger.FromContext(ctx, s.log).Infow("job created",
		logger.FieldJobID, job.ID,
		logger.FieldCompanyID, companyID,
		"tier", tier)
	return job, nil
}

// ListJobs returns open listings matching q, featured first and newest first
// within a tier.
func (s *JobService) ListJobs(ctx context.Context, q dtos.JobListQuery) (*JobPage, error) {
	q.Page, q.Limit = normalizePage(q.Page, q.Limit)
	key := listKey(q)

	var cached JobPage
	if hit, err := s.Cache.Get(ctx, key, &cached); err != nil {
		s.log.Warnw("listing cache read failed", logger.FieldError, err)
	} else if hit {
		return &cached, nil
	}

	db := s.DB.WithContext(ctx).Model(&models.Job{}).
		Where("jobs.status = ? AND jobs.expires_at > ?", models.JobStatusActive, s.now())
	if loc := strings.TrimSpace(q.Location); loc != "" {
		db = db.Where("LOWER(jobs.location) LIKE ? ESCAPE '\\'", likePattern(loc))
	}
	if q.JobType != "" {
		db = db.Where("jobs.job_type = ?", q.JobType)
	}
	if q.WorkMode != "" {
		db = db.Where("jobs.work_mode = ?", q.WorkMode)
	}
	if q.Tier != "" {
		db = db.Where("jobs.tier = ?", q.Tier)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		p := likePattern(search)
		db = db.Where("(LOWER(jobs.title) LIKE ? ESCAPE '\\' OR LOWER(jobs.description) LIKE ? ESCAPE '\\')", p, p)
	}

	db = db.Session(&gorm.Session{})

	page := &JobPage{Page: q.Page, Limit: q.Limit, Jobs: []models.Job{}}
	if err := db.Count(&page.Total).Error; err != nil {
		return nil, apperr.Wrap(err, "count jobs")
	}
	err := db.Preload("Company").
		Order(tierOrder).
		Order("jobs.created_at DESC").
		Order("jobs.id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&page.Jobs).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list jobs")
	}

	if err := s.Cache.Set(ctx, key, page); err != nil {
		s.log.Warnw("listing cache write failed", logger.FieldError, err)
	}
	return page, nil
}

// GetJob returns a listing in any status.
func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "job %d", id), "Job not found")
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "get job %d", id)
	}
	return &job, nil
}

// ListCompanyJobs is the employer dashboard: every listing, closed included.
func (s *JobService) ListCompanyJobs(ctx context.Context, companyID uint) ([]models.Job, error) {
	jobs := []models.Job{}
	err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list company jobs")
	}
	return jobs, nil
}

// CloseJob soft-closes a listing owned by companyID.
func (s *JobService) CloseJob(ctx context.Context, jobID, companyID uint) (*models.Job, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrForbidden, "job %d belongs to company %d", jobID, job.CompanyID),
			"You can only close your own job postings")
	}
	if job.Status == models.JobStatusClosed {
		return job, nil
	}

	err = s.DB.WithContext(ctx).Model(job).Updates(map[string]interface{}{
		"status":     models.JobStatusClosed,
		"updated_at": s.now(),
	}).Error
	if err != nil {
		return nil, apperr.Wrapf(err, "close job %d", jobID)
	}
	job.Status = models.JobStatusClosed
	s.invalidate(ctx)

	logger.FromContext(ctx, s.log).Infow("job closed",
		logger.FieldJobID, jobID,
		logger.FieldCompanyID, companyID)
	return job, nil
}

// CloseExpired closes every active listing whose expires_at is at or before
// now and returns how many it closed.
func (s *JobService) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND expires_at <= ?", models.JobStatusActive, now).
		Updates(map[string]interface{}{
			"status":     models.JobStatusClosed,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, apperr.Wrap(res.Error, "close expired jobs")
	}
	if res.RowsAffected > 0 {
		s.invalidate(ctx)
	}
	return res.RowsAffected, nil
}

func (s *JobService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.log.Warnw("listing cache invalidation failed", logger.FieldError, err)
	}
}

// validateJob repeats the request rules for callers that skip gin binding.
func validateJob(req *dtos.JobCreationRequest) error {
	verr := &apperr.ValidationError{}
	if utf8.RuneCountInString(strings.TrimSpace(req.Title)) < 5 {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "title", Message: "must be at least 5 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Description)) < 50 {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "description", Message: "must be at least 50 characters"})
	}
	if strings.TrimSpace(req.Location) == "" {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "location", Message: "is required"})
	}
	if !models.IsJobType(req.JobType) {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "job_type", Message: "must be one of: " + strings.Join(models.JobTypes, ", ")})
	}
	if !models.IsWorkMode(req.WorkMode) {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "work_mode", Message: "must be one of: " + strings.Join(models.WorkModes, ", ")})
	}
	if req.Tier != "" && !models.IsTier(req.Tier) {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "tier", Message: "must be one of: " + strings.Join(models.Tiers, ", ")})
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// likePattern lowercases s and escapes LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
