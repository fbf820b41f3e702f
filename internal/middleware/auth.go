package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/auth"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/models"
)

const (
	claimsKey    = "jobx_claims"
	companyIDKey = "jobx_company_id"
)

// CompanyResolver finds the company an employer owns.
type CompanyResolver interface {
	OwnedBy(ctx context.Context, ownerID uint) (*models.Company, error)
}

// Authenticate requires a valid bearer token and stores its claims.
func Authenticate(tokens *auth.TokenManager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			httpx.Error(c, log, apperr.WithHint(apperr.ErrUnauthorized, "Authentication required"))
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			httpx.Error(c, log, apperr.WithHint(err, "Invalid or expired token"))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets through only callers with the given role.
func RequireRole(role string, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Role != role {
			httpx.Error(c, log, apperr.WithHint(apperr.ErrForbidden, "This action requires a "+strings.ReplaceAll(role, "_", " ")+" account"))
			return
		}
		c.Next()
	}
}

// RequireCompany resolves the caller's company and stores its id.
func RequireCompany(companies CompanyResolver, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			httpx.Error(c, log, apperr.ErrUnauthorized)
			return
		}
		company, err := companies.OwnedBy(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.ErrNotFound) {
				err = apperr.WithHint(apperr.Wrap(apperr.ErrForbidden, err.Error()), "Create a company profile first")
			}
			httpx.Error(c, log, err)
			return
		}
		c.Set(companyIDKey, company.ID)
		c.Next()
	}
}

// Claims returns the authenticated caller, or nil.
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// CompanyID returns the id stored by RequireCompany.
func CompanyID(c *gin.Context) uint {
	return c.GetUint(companyIDKey)
}

// extractToken supports "Bearer <token>" and a bare token.
func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
