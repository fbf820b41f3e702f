package apperr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := Wrapf(ErrNotFound, "job %d", 42)
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrForbidden))
	assert.Contains(t, err.Error(), "job 42")
}

func TestValidationError(t *testing.T) {
	err := Wrap(Invalid("status", "must be one of pending reviewed"), "set status")
	assert.True(t, Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, As(err, &verr))
	assert.Equal(t, "status", verr.Fields[0].Field)
}

func TestQuotaError(t *testing.T) {
	err := Wrap(&QuotaError{Limit: 5, Used: 5, RequiresPremium: true}, "apply")
	assert.True(t, Is(err, ErrQuota))

	var qerr *QuotaError
	require.True(t, As(err, &qerr))
	assert.True(t, qerr.RequiresPremium)
	assert.Equal(t, 5, qerr.Used)
}

func TestMessage(t *testing.T) {
	err := WithHint(Wrap(ErrConflict, "apply"), "You have already applied to this job")
	assert.Equal(t, "You have already applied to this job", Message(err, "conflict"))
	assert.Equal(t, "fallback", Message(ErrConflict, "fallback"))
}
