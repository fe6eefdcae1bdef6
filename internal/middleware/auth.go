package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/auth"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Abort stops the chain with the standard error body.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.StatusCode(err), apperr.Body(err))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			Abort(c, apperr.Authentication(apperr.CodeTokenMissing, "Authentication token is required"))
			return
		}
		id, err := v.Verify(token)
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous callers through otherwise.
func OptionalAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if id, err := v.Verify(token); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(accountType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			Abort(c, apperr.Authentication(apperr.CodeTokenMissing, "Authentication token is required"))
			return
		}
		if id.AccountType != accountType {
			Abort(c, apperr.Authorization("This action requires a %s account", accountType))
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
