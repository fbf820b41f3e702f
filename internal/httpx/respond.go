// Package httpx renders errors and shared response shapes for the gin layer.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/logger"
)

// Machine-readable error codes returned in the "code" field.
const (
	CodeValidation   = "validation_failed"
	CodeNotFound     = "not_found"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeConflict     = "already_applied"
	CodeQuota        = "quota_exceeded"
	CodeInvalidState = "invalid_state"
	CodeUnavailable  = "unavailable"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error           string              `json:"error"`
	Code            string              `json:"code"`
	Details         []apperr.FieldError `json:"details,omitempty"`
	RequiresPremium bool                `json:"requiresPremium,omitempty"`
	RequestID       string              `json:"request_id,omitempty"`
}

// Classify maps an error to its HTTP status and body. Conflict and quota
// errors are 400s, matching what the web client already handles.
func Classify(err error) (int, ErrorBody) {
	var verr *apperr.ValidationError
	var qerr *apperr.QuotaError

	switch {
	case apperr.As(err, &verr):
		return http.StatusBadRequest, ErrorBody{Error: "Validation failed", Code: CodeValidation, Details: verr.Fields}
	case apperr.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, ErrorBody{Error: apperr.Message(err, "Validation failed"), Code: CodeValidation}
	case apperr.As(err, &qerr):
		return http.StatusBadRequest, ErrorBody{
			Error:           apperr.Message(err, "Application limit reached. Upgrade to apply to more jobs."),
			Code:            CodeQuota,
			RequiresPremium: qerr.RequiresPremium,
		}
	case apperr.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest, ErrorBody{Error: apperr.Message(err, "You have already applied to this job"), Code: CodeConflict}
	case apperr.Is(err, apperr.ErrInvalidState):
		return http.StatusBadRequest, ErrorBody{Error: apperr.Message(err, "Invalid state"), Code: CodeInvalidState}
	case apperr.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: apperr.Message(err, "Not found"), Code: CodeNotFound}
	case apperr.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Error: apperr.Message(err, "Forbidden"), Code: CodeForbidden}
	case apperr.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorBody{Error: apperr.Message(err, "Authentication required"), Code: CodeUnauthorized}
	case apperr.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Error: apperr.Message(err, "Service unavailable"), Code: CodeUnavailable}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "Internal server error", Code: CodeInternal}
	}
}

// Error aborts the request with the response for err. 5xx causes are logged,
// never sent to the client.
func Error(c *gin.Context, log *zap.SugaredLogger, err error) {
	status, body := Classify(err)
	body.RequestID = logger.RequestID(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), log).Errorw("request failed",
			logger.FieldPath, c.FullPath(),
			logger.FieldStatus, status,
			logger.FieldError, err)
	}
	c.AbortWithStatusJSON(status, body)
}

// Pagination is the paging block of list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
