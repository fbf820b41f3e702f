package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags every request with an ID, reusing a well-formed incoming one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			logger.FieldMethod, c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
			logger.FieldClientIP, c.ClientIP(),
		}
		l := logger.FromContext(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Errorw("request", fields...)
		case status >= 400:
			l.Warnw("request", fields...)
		default:
			l.Infow("request", fields...)
		}
	}
}
