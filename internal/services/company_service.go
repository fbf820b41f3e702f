package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

type CompanyService struct {
	DB  *gorm.DB
	log *zap.SugaredLogger
}

func NewCompanyService(db *gorm.DB, log *zap.SugaredLogger) *CompanyService {
	return &CompanyService{DB: db, log: log}
}

var errCompanyExists = apperr.WithHint(apperr.Wrap(apperr.ErrInvalidState, "company already exists"),
	"You already have a company profile")

// Create registers the one company an employer may own.
func (s *CompanyService) Create(ctx context.Context, ownerID uint, req *dtos.CompanyCreationRequest) (*models.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Company{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return nil, apperr.Wrap(err, "check existing company")
	}
	if count > 0 {
		return nil, errCompanyExists
	}

	company := &models.Company{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Website:     strings.TrimSpace(req.Website),
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errCompanyExists
		}
		return nil, apperr.Wrap(err, "create company")
	}

	logger.FromContext(ctx, s.log).Infow("company created",
		logger.FieldCompanyID, company.ID,
		logger.FieldUserID, ownerID)
	return company, nil
}

// OwnedBy returns the company of an employer.
func (s *CompanyService) OwnedBy(ctx context.Context, ownerID uint) (*models.Company, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrNotFound, "company for owner %d", ownerID), "Company not found")
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "load company for owner %d", ownerID)
	}
	return &company, nil
}
