package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected *apperr.Error, got %v", err)
	assert.Equal(t, apperr.KindAuthentication, e.Kind)
	return e.Code
}

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue("user-1", "seeker")
	require.NoError(t, err)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-1", AccountType: "seeker"}, id)
}

func TestVerifyExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue("user-1", "company")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.Equal(t, apperr.CodeTokenExpired, codeOf(t, err))
}

func TestVerifyInvalid(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	foreign, err := other.Issue("user-1", "seeker")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.Equal(t, apperr.CodeTokenInvalid, codeOf(t, err))
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	claims := Claims{
		UserID:      "user-1",
		AccountType: "seeker",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Equal(t, apperr.CodeTokenInvalid, codeOf(t, err))
}

func TestVerifyMissingClaims(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue("", "seeker")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Equal(t, apperr.CodeTokenInvalid, codeOf(t, err))
}
