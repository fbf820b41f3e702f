// Package apperr provides error handling for JobX.
//
// It re-exports github.com/cockroachdb/errors and defines the error kinds
// the HTTP layer understands. Services wrap a kind sentinel with context:
//
//	return apperr.Wrapf(apperr.ErrNotFound, "job %d", id)
//
// and handlers recover the kind with apperr.Is.
package apperr

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

var (
	New      = crdb.New
	Newf     = crdb.Newf
	Wrap     = crdb.Wrap
	Wrapf    = crdb.Wrapf
	Is       = crdb.Is
	As       = crdb.As
	WithHint = crdb.WithHint

	GetAllHints = crdb.GetAllHints
)

// Kinds. Match with Is.
var (
	ErrValidation   = New("validation failed")
	ErrNotFound     = New("not found")
	ErrForbidden    = New("forbidden")
	ErrUnauthorized = New("unauthorized")
	ErrConflict     = New("conflict")
	ErrQuota        = New("application quota exceeded")
	ErrInvalidState = New("invalid state")
	ErrUnavailable  = New("service unavailable")
)

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level messages and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Fields[0].Field + " " + e.Fields[0].Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a single-field validation error.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// QuotaError reports a free-plan quota hit. RequiresPremium tells the client
// an upgrade would lift the limit.
type QuotaError struct {
	Limit           int
	Used            int
	RequiresPremium bool
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("free plan limit reached: %d of %d applications used", e.Used, e.Limit)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuota }

// Message returns the first user-facing hint on err, or fallback.
func Message(err error, fallback string) string {
	if hints := GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return fallback
}
