package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/job-board/internal/apperr"
)

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	UserID      string
	AccountType string
}

type Claims struct {
	UserID      string `json:"userId"`
	AccountType string `json:"accountType"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the given account.
func (m *TokenManager) Issue(userID, accountType string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:      userID,
		AccountType: accountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token. Expired tokens and every other failure map to
// different authentication codes.
func (m *TokenManager) Verify(token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.Authentication(apperr.CodeTokenExpired, "Token has expired")
		}
		return Identity{}, apperr.Authentication(apperr.CodeTokenInvalid, "Invalid or malformed token")
	}
	if claims.UserID == "" || claims.AccountType == "" {
		return Identity{}, apperr.Authentication(apperr.CodeTokenInvalid, "Invalid or malformed token")
	}
	return Identity{UserID: claims.UserID, AccountType: claims.AccountType}, nil
}
