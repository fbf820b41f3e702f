package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/middleware"
	"github.com/justsurfingit/jobx/internal/models"
	"github.com/justsurfingit/jobx/internal/resume"
	"github.com/justsurfingit/jobx/internal/services"
)

type ApplicationHandler struct {
	Apps      *services.ApplicationService
	Companies middleware.CompanyResolver
	Resumes   *resume.Store
	log       *zap.SugaredLogger
}

func NewApplicationHandler(apps *services.ApplicationService, companies middleware.CompanyResolver, resumes *resume.Store, log *zap.SugaredLogger) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Companies: companies, Resumes: resumes, log: log}
}

// Apply is POST /applications.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dtos.ApplyRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	app, err := h.Apps.Apply(c.Request.Context(), middleware.Claims(c).UserID, services.ApplyInput{
		JobID:       req.JobID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted", "application": app})
}

// UploadResume is POST /applications/resume with a multipart "resume" file.
func (h *ApplicationHandler) UploadResume(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Resumes.MaxBytes+1<<20)

	header, err := c.FormFile("resume")
	if err != nil {
		respondError(c, h.log, apperr.Invalid("resume", "is required (multipart field \"resume\", at most 5 MB)"))
		return
	}
	if header.Size > h.Resumes.MaxBytes {
		respondError(c, h.log, apperr.Invalid("resume", "must be at most 5 MB"))
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, h.log, apperr.Wrap(err, "open uploaded resume"))
		return
	}
	defer f.Close()

	saved, err := h.Resumes.Save(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.ResumeUploadResponse{
		ResumeURL: saved.URL,
		MimeType:  saved.MimeType,
		Size:      saved.Size,
	})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	var q dtos.MyApplicationsQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, err := h.Apps.ListMine(c.Request.Context(), middleware.Claims(c).UserID, q.Status, q.Page, q.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": page.Applications,
		"pagination":   httpx.NewPagination(page.Page, page.Limit, page.Total),
	})
}

// Withdraw is DELETE /applications/:id.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.Apps.Withdraw(c.Request.Context(), id, middleware.Claims(c).UserID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, ok := pathID(c, h.log, "jobId")
	if !ok {
		return
	}
	var q dtos.JobApplicantsQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	apps, err := h.Apps.ListForJob(c.Request.Context(), jobID, middleware.CompanyID(c), q.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "count": len(apps)})
}

// SetStatus is PATCH /applications/:id/status.
func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req dtos.StatusUpdateRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	app, err := h.Apps.SetStatus(c.Request.Context(), id, middleware.CompanyID(c), middleware.Claims(c).UserID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application status updated", "application": app})
}

// History is GET /applications/:id/history for the applicant or the
// owning employer.
func (h *ApplicationHandler) History(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	claims := middleware.Claims(c)

	var companyID uint
	if claims.Role == models.RoleEmployer {
		company, err := h.Companies.OwnedBy(c.Request.Context(), claims.UserID)
		switch {
		case err == nil:
			companyID = company.ID
		case !apperr.Is(err, apperr.ErrNotFound):
			respondError(c, h.log, err)
			return
		}
	}

	events, err := h.Apps.History(c.Request.Context(), id, claims.UserID, companyID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
