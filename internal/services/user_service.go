package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/auth"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

type UserService struct {
	DB  *gorm.DB
	log *zap.SugaredLogger
}

func NewUserService(db *gorm.DB, log *zap.SugaredLogger) *UserService {
	return &UserService{DB: db, log: log}
}

var errBadCredentials = apperr.WithHint(apperr.Wrap(apperr.ErrUnauthorized, "bad credentials"), "Invalid email or password")

// Register creates an account on the free plan.
func (s *UserService) Register(ctx context.Context, req *dtos.RegisterRequest) (*models.User, error) {
	if req.Role != models.RoleJobSeeker && req.Role != models.RoleEmployer {
		return nil, apperr.Invalid("role", "must be one of: job_seeker, employer")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:            normalizeEmail(req.Email),
		Name:             strings.TrimSpace(req.Name),
		PasswordHash:     hash,
		Role:             req.Role,
		SubscriptionPlan: models.PlanFree,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("email", "is already registered")
		}
		return nil, apperr.Wrap(err, "create user")
	}

	logger.FromContext(ctx, s.log).Infow("user registered",
		logger.FieldUserID, user.ID,
		"role", user.Role)
	return user, nil
}

// Login checks the password and returns the account.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load user")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errBadCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "user %d", id), "User not found")
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "load user %d", id)
	}
	return &user, nil
}

// GetByEmail is used by admin tooling.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "user %s", email), "User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load user by email")
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
