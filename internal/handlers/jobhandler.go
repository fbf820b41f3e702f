package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/middleware"
	"github.com/justsurfingit/jobx/internal/services"
)

// JobHandler serves the job listing endpoints. Extractor is nil when no LLM
// is configured.
type JobHandler struct {
	Extractor  services.JobExtractor
	JobService *services.JobService
	log        *zap.SugaredLogger
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(extractor services.JobExtractor, j *services.JobService, log *zap.SugaredLogger) *JobHandler {
	return &JobHandler{
		Extractor:  extractor,
		JobService: j,
		log:        log,
	}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	if h.Extractor == nil {
		respondError(c, h.log, apperr.WithHint(apperr.ErrUnavailable, "Job extraction is not configured"))
		return
	}
	var req dtos.JobExtractionRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	draft, err := h.Extractor.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draft,
	})
}

// CreateJob is POST /jobs for the caller's company.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), middleware.CompanyID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, err := h.JobService.ListJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":       page.Jobs,
		"pagination": httpx.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListCompanyJobs is the employer dashboard list, closed jobs included.
func (h *JobHandler) ListCompanyJobs(c *gin.Context) {
	jobs, err := h.JobService.ListCompanyJobs(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// CloseJob is DELETE /jobs/:id. Listings are closed, never deleted.
func (h *JobHandler) CloseJob(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	job, err := h.JobService.CloseJob(c.Request.Context(), id, middleware.CompanyID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job closed", "job": job})
}
