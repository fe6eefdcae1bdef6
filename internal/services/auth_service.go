package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// TokenIssuer signs a token for an account.
type TokenIssuer interface {
	Issue(userID, accountType string) (string, error)
}

// AuthService registers and signs in seekers and companies.
type AuthService struct {
	DB     *gorm.DB
	Log    *logrus.Logger
	Tokens TokenIssuer

	cost int
}

func NewAuthService(db *gorm.DB, log *logrus.Logger, tokens TokenIssuer) *AuthService {
	return &AuthService{DB: db, Log: log, Tokens: tokens, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperr.Validation("Password must be at least %d characters", minPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *AuthService) RegisterUser(ctx context.Context, req *dtos.RegisterUserRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" || email == "" || req.Password == "" {
		return nil, "", apperr.Validation("Please provide all required fields")
	}
	if err := s.emailFree(ctx, &models.User{}, email); err != nil {
		return nil, "", err
	}
	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hashed,
		Skills:    []string{},
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, "", duplicateEmail(err, "create user")
	}

	token, err := s.Tokens.Issue(user.ID.String(), models.RoleSeeker)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.Log.WithField("user_id", user.ID).Info("seeker registered")
	return user, token, nil
}

func (s *AuthService) LoginUser(ctx context.Context, req *dtos.LoginRequest) (*models.User, string, error) {
	var user models.User
	if err := s.findByEmail(ctx, &user, req); err != nil {
		return nil, "", err
	}
	if err := checkPassword(user.Password, req.Password); err != nil {
		return nil, "", err
	}
	token, err := s.Tokens.Issue(user.ID.String(), models.RoleSeeker)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return &user, token, nil
}

func (s *AuthService) RegisterCompany(ctx context.Context, req *dtos.RegisterCompanyRequest) (*models.Company, string, error) {
	email := normalizeEmail(req.Email)
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, "", apperr.Validation("Company Name is required!")
	case email == "":
		return nil, "", apperr.Validation("Email address is required!")
	}
	if err := s.emailFree(ctx, &models.Company{}, email); err != nil {
		return nil, "", err
	}
	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	company := &models.Company{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashed,
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, "", duplicateEmail(err, "create company")
	}

	token, err := s.Tokens.Issue(company.ID.String(), models.RoleCompany)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.Log.WithField("company_id", company.ID).Info("company registered")
	return company, token, nil
}

func (s *AuthService) LoginCompany(ctx context.Context, req *dtos.LoginRequest) (*models.Company, string, error) {
	var company models.Company
	if err := s.findByEmail(ctx, &company, req); err != nil {
		return nil, "", err
	}
	if err := checkPassword(company.Password, req.Password); err != nil {
		return nil, "", err
	}
	token, err := s.Tokens.Issue(company.ID.String(), models.RoleCompany)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return &company, token, nil
}

func (s *AuthService) emailFree(ctx context.Context, model any, email string) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(model).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("Email Address already exists")
	}
	return nil
}

func (s *AuthService) findByEmail(ctx context.Context, dest any, req *dtos.LoginRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return apperr.Validation("Please provide email and password")
	}
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalidCredentials()
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}
	return nil
}

func checkPassword(hashed, plain string) error {
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) != nil {
		return invalidCredentials()
	}
	return nil
}

// Unknown email and wrong password look the same to the caller.
func invalidCredentials() error {
	return apperr.Authentication(apperr.CodeInvalidCredentials, "Invalid email or password")
}

// duplicateEmail catches the unique index losing a race with emailFree.
func duplicateEmail(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Email Address already exists")
	}
	return fmt.Errorf("%s: %w", op, err)
}
