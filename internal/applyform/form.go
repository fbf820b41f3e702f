// Package applyform is the client side of the application flow: it checks
// the form locally, then submits it and reports the server's decision.
package applyform

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/models"
	"github.com/justsurfingit/jobx/internal/resume"
)

const maxCoverLetter = 10000

// Form is what the applicant fills in.
type Form struct {
	JobID       uint
	CoverLetter string
	ResumeName  string
	Resume      []byte
}

// Validate runs every local check. Nothing is sent before it passes.
func (f Form) Validate(maxResumeBytes int64) error {
	verr := &apperr.ValidationError{}
	if f.JobID == 0 {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "job_id", Message: "is required"})
	}
	if utf8.RuneCountInString(f.CoverLetter) > maxCoverLetter {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "cover_letter", Message: "must be at most 10000 characters"})
	}
	if _, err := resume.Validate(f.ResumeName, f.Resume, maxResumeBytes); err != nil {
		var rerr *apperr.ValidationError
		if apperr.As(err, &rerr) {
			verr.Fields = append(verr.Fields, rerr.Fields...)
		} else {
			return err
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type Outcome string

const (
	OutcomeSubmitted       Outcome = "submitted"
	OutcomeAlreadyApplied  Outcome = "already_applied"
	OutcomeUpgradeRequired Outcome = "upgrade_required"
)

// Result is what the form shows after a submission attempt. Application is
// the new or existing application; it is nil for upgrade_required.
type Result struct {
	Outcome     Outcome
	Application *models.Application
	Message     string
}

// Session holds the caller's applications so already-applied jobs are
// shown read-only without a round trip.
type Session struct {
	client         *Client
	maxResumeBytes int64
	applied        map[uint]models.Application
}

// NewSession loads the caller's current applications.
func NewSession(ctx context.Context, client *Client, maxResumeBytes int64) (*Session, error) {
	s := &Session{client: client, maxResumeBytes: maxResumeBytes}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Refresh(ctx context.Context) error {
	apps, err := s.client.MyApplications(ctx)
	if err != nil {
		return err
	}
	s.applied = make(map[uint]models.Application, len(apps))
	for _, a := range apps {
		s.applied[a.JobID] = a
	}
	return nil
}

// Applied returns the caller's application to jobID, if any.
func (s *Session) Applied(jobID uint) (models.Application, bool) {
	a, ok := s.applied[jobID]
	return a, ok
}

// Submit validates the form, uploads the resume and posts the application.
func (s *Session) Submit(ctx context.Context, f Form) (*Result, error) {
	if existing, ok := s.Applied(f.JobID); ok {
		return alreadyApplied(existing), nil
	}
	if err := f.Validate(s.maxResumeBytes); err != nil {
		return nil, err
	}

	resumeURL, err := s.client.UploadResume(ctx, f.ResumeName, f.Resume)
	if err != nil {
		return nil, err
	}
	app, err := s.client.Apply(ctx, dtos.ApplyRequest{
		JobID:       f.JobID,
		CoverLetter: strings.TrimSpace(f.CoverLetter),
		ResumeURL:   resumeURL,
	})

	var apiErr *APIError
	switch {
	case err == nil:
		s.applied[app.JobID] = *app
		return &Result{Outcome: OutcomeSubmitted, Application: app, Message: "Application submitted"}, nil
	case apperr.As(err, &apiErr) && apiErr.Body.Code == httpx.CodeConflict:
		// another tab won the race
		if rerr := s.Refresh(ctx); rerr == nil {
			if existing, ok := s.Applied(f.JobID); ok {
				return alreadyApplied(existing), nil
			}
		}
		return &Result{Outcome: OutcomeAlreadyApplied, Message: apiErr.Body.Error}, nil
	case apperr.As(err, &apiErr) && apiErr.Body.Code == httpx.CodeQuota:
		return &Result{Outcome: OutcomeUpgradeRequired, Message: apiErr.Body.Error}, nil
	default:
		return nil, err
	}
}

func alreadyApplied(a models.Application) *Result {
	return &Result{
		Outcome:     OutcomeAlreadyApplied,
		Application: &a,
		Message:     "You applied to this job on " + a.AppliedAt.Format("2 Jan 2006") + ". Status: " + a.Status,
	}
}
