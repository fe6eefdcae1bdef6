package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tm *auth.TokenManager) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "userId": id.UserID})
	}
	r.GET("/private", RequireAuth(tm), whoami)
	r.GET("/company", RequireAuth(tm), RequireRole("company"), whoami)
	r.GET("/public", OptionalAuth(tm), whoami)
	return r
}

func do(r http.Handler, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequireAuth(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tm)

	w, body := do(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authentication token is required", body["message"])
	assert.Equal(t, "token_missing", body["code"])

	w, body = do(r, "/private", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or malformed token", body["message"])
	assert.Equal(t, "token_invalid", body["code"])

	token, err := tm.Issue("u1", "seeker")
	require.NoError(t, err)
	w, body = do(r, "/private", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["userId"])
}

func TestRequireAuthExpired(t *testing.T) {
	tm := auth.NewTokenManager("secret", -time.Minute)
	token, err := tm.Issue("u1", "seeker")
	require.NoError(t, err)

	w, body := do(newRouter(tm), "/private", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", body["message"])
	assert.Equal(t, "token_expired", body["code"])
}

func TestRequireRole(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tm)

	seeker, _ := tm.Issue("u1", "seeker")
	w, _ := do(r, "/company", seeker)
	assert.Equal(t, http.StatusForbidden, w.Code)

	company, _ := tm.Issue("c1", "company")
	w, _ = do(r, "/company", company)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tm)

	w, body := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])

	w, body = do(r, "/public", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])

	token, _ := tm.Issue("c1", "company")
	_, body = do(r, "/public", token)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "c1", body["userId"])
}
