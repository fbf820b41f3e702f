package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for consistent structured logging.
const (
	FieldRequestID     = "request_id"
	FieldUserID        = "user_id"
	FieldCompanyID     = "company_id"
	FieldJobID         = "job_id"
	FieldApplicationID = "application_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatus        = "status"
	FieldDurationMS    = "duration_ms"
	FieldClientIP      = "client_ip"
	FieldCount         = "count"
	FieldError         = "error"
	FieldAddress       = "address"
	FieldComponent     = "component"
)

// New builds a sugared logger. JSON output is meant for production log
// shipping; the console encoder is for local runs.
func New(level string, jsonOutput bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type contextKey string

const requestIDKey contextKey = "logger_request_id"

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns l annotated with the request ID carried by ctx.
func FromContext(ctx context.Context, l *zap.SugaredLogger) *zap.SugaredLogger {
	if id := RequestID(ctx); id != "" {
		return l.With(FieldRequestID, id)
	}
	return l
}
