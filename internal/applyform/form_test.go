package applyform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/models"
)

var pdf = []byte("%PDF-1.4\n%%EOF\n")

// fakeAPI answers like the JobX API. applyCode picks the POST /applications
// outcome.
type fakeAPI struct {
	mu        sync.Mutex
	existing  []models.Application
	applyCode string
	calls     atomic.Int32
	uploads   atomic.Int32
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/applications/my-applications", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"applications": f.existing,
			"pagination":   httpx.NewPagination(1, 100, int64(len(f.existing))),
		})
	})
	mux.HandleFunc("POST /api/applications/resume", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.uploads.Add(1)
		file, header, err := r.FormFile("resume")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		writeJSON(w, http.StatusCreated, dtos.ResumeUploadResponse{ResumeURL: "/uploads/" + header.Filename, MimeType: "application/pdf"})
	})
	mux.HandleFunc("POST /api/applications", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		var req dtos.ApplyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch f.applyCode {
		case httpx.CodeConflict:
			f.mu.Lock()
			f.existing = append(f.existing, models.Application{ID: 9, JobID: req.JobID, Status: models.StatusReviewed, AppliedAt: time.Now()})
			f.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "You have already applied to this job", Code: httpx.CodeConflict})
		case httpx.CodeQuota:
			writeJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "Upgrade to apply to more jobs.", Code: httpx.CodeQuota, RequiresPremium: true})
		case httpx.CodeInternal:
			writeJSON(w, http.StatusInternalServerError, httpx.ErrorBody{Error: "Internal server error", Code: httpx.CodeInternal})
		default:
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"application": models.Application{ID: 1, JobID: req.JobID, Status: models.StatusPending, ResumeURL: req.ResumeURL, CoverLetter: req.CoverLetter},
			})
		}
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newSession(t *testing.T, api *fakeAPI) *Session {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	s, err := NewSession(context.Background(), NewClient(srv.URL+"/", "tok"), 0)
	require.NoError(t, err)
	return s
}

func TestFormValidate(t *testing.T) {
	err := Form{ResumeName: "cv.txt", Resume: []byte("hello"), CoverLetter: strings.Repeat("x", 10001)}.Validate(0)
	var verr *apperr.ValidationError
	require.True(t, apperr.As(err, &verr))
	var names []string
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"job_id", "cover_letter", "resume"}, names)

	assert.NoError(t, Form{JobID: 1, ResumeName: "cv.pdf", Resume: pdf}.Validate(0))
	assert.Error(t, Form{JobID: 1, ResumeName: "cv.pdf", Resume: pdf}.Validate(4), "size limit applies")
}

func TestSubmitSubmitted(t *testing.T) {
	api := &fakeAPI{}
	s := newSession(t, api)

	res, err := s.Submit(context.Background(), Form{JobID: 3, CoverLetter: " hi ", ResumeName: "cv.pdf", Resume: pdf})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, res.Outcome)
	assert.Equal(t, "/uploads/cv.pdf", res.Application.ResumeURL)
	assert.Equal(t, "hi", res.Application.CoverLetter)

	_, ok := s.Applied(3)
	assert.True(t, ok)
}

func TestSubmitRefusesLocallyWhenApplied(t *testing.T) {
	api := &fakeAPI{existing: []models.Application{{ID: 5, JobID: 3, Status: models.StatusInterview, AppliedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}}}
	s := newSession(t, api)
	before := api.calls.Load()

	res, err := s.Submit(context.Background(), Form{JobID: 3})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyApplied, res.Outcome)
	assert.Equal(t, models.StatusInterview, res.Application.Status)
	assert.Contains(t, res.Message, "1 Feb 2026")
	assert.Equal(t, before, api.calls.Load(), "no network call")
}

func TestSubmitInvalidFormMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	s := newSession(t, api)
	before := api.calls.Load()

	_, err := s.Submit(context.Background(), Form{JobID: 3, ResumeName: "cv.pdf", Resume: []byte("not a pdf")})
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
	assert.Equal(t, before, api.calls.Load())
}

func TestSubmitServerDecisions(t *testing.T) {
	api := &fakeAPI{applyCode: httpx.CodeConflict}
	s := newSession(t, api)
	res, err := s.Submit(context.Background(), Form{JobID: 4, ResumeName: "cv.pdf", Resume: pdf})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyApplied, res.Outcome)
	require.NotNil(t, res.Application)
	assert.Equal(t, models.StatusReviewed, res.Application.Status)

	api = &fakeAPI{applyCode: httpx.CodeQuota}
	s = newSession(t, api)
	res, err = s.Submit(context.Background(), Form{JobID: 4, ResumeName: "cv.pdf", Resume: pdf})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgradeRequired, res.Outcome)
	assert.Nil(t, res.Application)

	api = &fakeAPI{applyCode: httpx.CodeInternal}
	s = newSession(t, api)
	_, err = s.Submit(context.Background(), Form{JobID: 4, ResumeName: "cv.pdf", Resume: pdf})
	var apiErr *APIError
	require.True(t, apperr.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}
