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

type UserService struct {
	DB  *gorm.DB
	Log *logrus.Logger

	now func() time.Time
}

func NewUserService(db *gorm.DB, log *logrus.Logger) *UserService {
	return &UserService{DB: db, Log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// UpdateUser replaces the profile fields. The resume link only changes when
// cvUrl is present in the request.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req *dtos.UpdateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.FirstName) == "" ||
		strings.TrimSpace(req.LastName) == "" ||
		email == "" ||
		strings.TrimSpace(req.Contact) == "" ||
		strings.TrimSpace(req.Location) == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User Not Found")
		}
		if err != nil {
			return err
		}

		if email != user.Email {
			var taken int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return apperr.Conflict("Email Address already exists")
			}
		}

		user.FirstName = strings.TrimSpace(req.FirstName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.Email = email
		user.Contact = strings.TrimSpace(req.Contact)
		user.Location = strings.TrimSpace(req.Location)
		user.About = req.About
		user.JobTitle = strings.TrimSpace(req.JobTitle)
		user.Skills = NormalizeSkills(req.Skills)
		if req.ProfileURL != nil {
			user.ProfileURL = strings.TrimSpace(*req.ProfileURL)
		}
		if req.CVURL != nil {
			user.CVURL = strings.TrimSpace(*req.CVURL)
		}
		user.UpdatedAt = s.now()

		return tx.Model(&user).Select(
			"FirstName", "LastName", "Email", "Contact", "Location", "About",
			"JobTitle", "Skills", "ProfileURL", "CVURL", "UpdatedAt",
		).Updates(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email Address already exists")
		}
		return nil, wrapStoreErr("update user", err)
	}
	return &user, nil
}
