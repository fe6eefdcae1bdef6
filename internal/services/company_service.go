package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var companyOrder = map[string]string{
	SortNewest: "companies.created_at DESC",
	SortOldest: "companies.created_at ASC",
	SortAZ:     "companies.name ASC",
	SortZA:     "companies.name DESC",
}

type CompanyService struct {
	DB         *gorm.DB
	Log        *logrus.Logger
	Pagination Pagination

	now func() time.Time
}

func NewCompanyService(db *gorm.DB, log *logrus.Logger, p Pagination) *CompanyService {
	return &CompanyService{
		DB:         db,
		Log:        log,
		Pagination: p,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CompanyFilter struct {
	Search   string
	Location string
	Sort     string
	Page     int
	Limit    int
}

type CompanyPage struct {
	Companies []models.Company `json:"data"`
	Total     int64            `json:"total"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
	NumOfPage int              `json:"numOfPage"`
}

func (s *CompanyService) GetProfile(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).First(&company, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Company Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &company, nil
}

func (s *CompanyService) UpdateProfile(ctx context.Context, companyID uuid.UUID, req *dtos.UpdateCompanyRequest) (*models.Company, error) {
	for _, v := range []string{req.Name, req.Contact, req.Location, req.About, req.ProfileURL} {
		if strings.TrimSpace(v) == "" {
			return nil, apperr.Validation("Please Provide All Required Fields")
		}
	}

	var company models.Company
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&company, "id = ?", companyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("No Company with id: %s", companyID)
		}
		if err != nil {
			return err
		}

		company.Name = strings.TrimSpace(req.Name)
		company.Contact = strings.TrimSpace(req.Contact)
		company.Location = strings.TrimSpace(req.Location)
		company.About = req.About
		company.ProfileURL = strings.TrimSpace(req.ProfileURL)
		company.UpdatedAt = s.now()
		return tx.Model(&company).
			Select("Name", "Contact", "Location", "About", "ProfileURL", "UpdatedAt").
			Updates(&company).Error
	})
	if err != nil {
		return nil, wrapStoreErr("update company", err)
	}
	return &company, nil
}

// ListCompanies pages through companies matching a name search and location.
func (s *CompanyService) ListCompanies(ctx context.Context, f CompanyFilter) (*CompanyPage, error) {
	page, limit := s.Pagination.Normalize(f.Page, f.Limit)
	search := strings.TrimSpace(f.Search)
	location := strings.TrimSpace(f.Location)

	base := func() *gorm.DB {
		db := s.DB.WithContext(ctx).Model(&models.Company{})
		if search != "" {
			db = db.Where("LOWER(companies.name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(search))
		}
		if location != "" {
			db = db.Where("LOWER(companies.location) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(location))
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}

	order, ok := companyOrder[f.Sort]
	if !ok {
		order = companyOrder[SortNewest]
	}
	companies := []models.Company{}
	if offset, ok := pageOffset(page, limit, total); ok {
		err := base().
			Omit("password").
			Order(order + ", companies.id ASC").
			Offset(offset).
			Limit(limit).
			Find(&companies).Error
		if err != nil {
			return nil, fmt.Errorf("list companies: %w", err)
		}
	}

	return &CompanyPage{
		Companies: companies,
		Total:     total,
		Page:      page,
		Limit:     limit,
		NumOfPage: numOfPages(total, limit),
	}, nil
}

// GetCompanyByID loads a public company profile with its currently visible
// job posts, newest first.
func (s *CompanyService) GetCompanyByID(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	now := s.now()
	var company models.Company
	err := s.DB.WithContext(ctx).
		Omit("password").
		Preload("JobPosts", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(Visibility{}.Scope(now)).Order("jobs.created_at DESC, jobs.id ASC")
		}).
		First(&company, "companies.id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Company Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company.JobPosts == nil {
		company.JobPosts = []models.Job{}
	}
	return &company, nil
}
