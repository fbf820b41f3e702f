package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/auth"
	"github.com/justsurfingit/jobx/internal/database"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/middleware"
	"github.com/justsurfingit/jobx/internal/models"
	"github.com/justsurfingit/jobx/internal/services"
)

type AuthHandler struct {
	Users  *services.UserService
	Tokens *auth.TokenManager
	log    *zap.SugaredLogger
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, dtos.AuthResponse{Token: token, User: user})
}

type CompanyHandler struct {
	Companies *services.CompanyService
	log       *zap.SugaredLogger
}

func NewCompanyHandler(companies *services.CompanyService, log *zap.SugaredLogger) *CompanyHandler {
	return &CompanyHandler{Companies: companies, log: log}
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var req dtos.CompanyCreationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	company, err := h.Companies.Create(c.Request.Context(), middleware.Claims(c).UserID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandler) Mine(c *gin.Context) {
	company, err := h.Companies.OwnedBy(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

type SubscriptionHandler struct {
	Subscriptions *services.SubscriptionService
	log           *zap.SugaredLogger
}

func NewSubscriptionHandler(subs *services.SubscriptionService, log *zap.SugaredLogger) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: subs, log: log}
}

// Me reports the caller's plan and quota usage.
func (h *SubscriptionHandler) Me(c *gin.Context) {
	usage, err := h.Subscriptions.Usage(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

type HealthHandler struct {
	DB  *gorm.DB
	log *zap.SugaredLogger
}

func NewHealthHandler(db *gorm.DB, log *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{DB: db, log: log}
}

// HealthCheck reports whether the database answers.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), h.DB); err != nil {
		h.log.Warnw("health check failed", logger.FieldError, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
