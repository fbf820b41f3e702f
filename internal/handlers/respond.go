package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
)

func respondError(c *gin.Context, log *zap.SugaredLogger, err error) {
	httpx.Error(c, log, err)
}

// bindJSON binds and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, log *zap.SugaredLogger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, log, dtos.BindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, log *zap.SugaredLogger, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondError(c, log, dtos.BindError(err))
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, log *zap.SugaredLogger, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, log, apperr.Invalid(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
