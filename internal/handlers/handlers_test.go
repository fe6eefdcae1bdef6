package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/events"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewDB(t)
	log := quietLogger()
	tokens := auth.NewTokenManager("handler-secret", time.Hour)
	p := services.Pagination{DefaultLimit: 20, MaxLimit: 100}

	jobs := services.NewJobService(db, log, cache.Noop{}, events.Noop{}, p)
	apps := services.NewApplicationService(db, log, cache.Noop{}, events.Noop{})
	authSvc := services.NewAuthService(db, log, tokens)

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Auth:    NewAuthHandler(authSvc, log),
		User:    NewUserHandler(services.NewUserService(db, log), apps, log),
		Company: NewCompanyHandler(services.NewCompanyService(db, log, p), jobs, log),
		Job:     NewJobHandler(&services.LLMService{Log: log}, jobs, apps, log),
	}, tokens)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
	Job     json.RawMessage `json:"job"`
	User    json.RawMessage `json:"user"`
}

func call(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(t)
	w, env := call(t, r, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestErrorEnvelope(t *testing.T) {
	r := newRouter(t)

	w, env := call(t, r, http.MethodGet, "/api/v1/jobs/get-job-detail/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Invalid job id")

	w, env = call(t, r, http.MethodPost, "/api/v1/jobs/upload-job", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication token is required", env.Message)
	assert.Equal(t, "token_missing", env.Code)

	w, env = call(t, r, http.MethodGet, "/api/v1/jobs?exp=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestRespondErrorHidesInternals(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, quietLogger(), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, quietLogger(), apperr.Conflict("You have already applied to this job"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApplicationFlow(t *testing.T) {
	r := newRouter(t)

	w, env := call(t, r, http.MethodPost, "/api/v1/companies/register", "", map[string]any{
		"name": "Acme", "email": "jobs@acme.io", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	companyToken := env.Token

	w, env = call(t, r, http.MethodPost, "/api/v1/jobs/upload-job", companyToken, map[string]any{
		"jobTitle":     "Backend Engineer",
		"jobType":      "full-time",
		"location":     "Remote",
		"salary":       100000,
		"vacancies":    1,
		"experience":   2,
		"desc":         "Build APIs",
		"requirements": "Go",
		"skills":       []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var job struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Job, &job))

	w, env = call(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "password": "analytical",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seekerToken := env.Token
	var user struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.User, &user))

	// Seekers cannot post jobs, companies cannot apply.
	w, _ = call(t, r, http.MethodPost, "/api/v1/jobs/upload-job", seekerToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(t, r, http.MethodPost, "/api/v1/jobs/apply-jobs/"+job.ID, companyToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = call(t, r, http.MethodPost, "/api/v1/jobs/apply-jobs/"+job.ID, seekerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please upload your resume before applying", env.Message)

	w, _ = call(t, r, http.MethodPut, "/api/v1/users/update-user", seekerToken, map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com",
		"contact": "+44 20 0000", "location": "London", "cvUrl": "https://cv.example.com/ada.pdf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = call(t, r, http.MethodPost, "/api/v1/jobs/apply-jobs/"+job.ID, seekerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	w, env = call(t, r, http.MethodPost, "/api/v1/jobs/apply-jobs/"+job.ID, seekerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You have already applied to this job", env.Message)

	w, env = call(t, r, http.MethodGet, "/api/v1/jobs/applicants/"+job.ID, companyToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var applicants []services.Applicant
	require.NoError(t, json.Unmarshal(env.Data, &applicants))
	require.Len(t, applicants, 1)
	assert.Equal(t, "https://cv.example.com/ada.pdf", applicants[0].ResumeURL)

	w, _ = call(t, r, http.MethodPut, "/api/v1/jobs/update-application-status", companyToken, map[string]any{
		"jobId": job.ID, "userId": user.ID, "status": "accepted", "feedback": "See you Monday",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = call(t, r, http.MethodGet, "/api/v1/users/applied-jobs", seekerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var applied []struct {
		ID       string `json:"_id"`
		Status   string `json:"status"`
		Feedback string `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	require.Len(t, applied, 1)
	assert.Equal(t, job.ID, applied[0].ID)
	assert.Equal(t, "accepted", applied[0].Status)
	assert.Equal(t, "See you Monday", applied[0].Feedback)
}

func TestFindJobsCompanyBranch(t *testing.T) {
	r := newRouter(t)

	register := func(name, email string) string {
		w, env := call(t, r, http.MethodPost, "/api/v1/companies/register", "", map[string]any{
			"name": name, "email": email, "password": "secret1",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return env.Token
	}
	acme := register("Acme", "jobs@acme.io")
	globex := register("Globex", "jobs@globex.io")

	post := func(token, title string) {
		w, _ := call(t, r, http.MethodPost, "/api/v1/jobs/upload-job", token, map[string]any{
			"jobTitle": title, "jobType": "intern", "location": "Remote",
			"desc": "d", "requirements": "r",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	post(acme, "Acme intern")
	post(globex, "Globex intern")

	var page struct {
		Success   bool `json:"success"`
		TotalJobs int  `json:"totalJobs"`
		NumOfPage int  `json:"numOfPage"`
		Data      []struct {
			JobTitle string `json:"jobTitle"`
		} `json:"data"`
	}
	decode := func(w *httptest.ResponseRecorder) {
		page.Data = nil
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	}

	w, _ := call(t, r, http.MethodGet, "/api/v1/jobs?jType=Intern", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(w)
	assert.Equal(t, 2, page.TotalJobs)
	assert.Equal(t, 1, page.NumOfPage)

	w, _ = call(t, r, http.MethodGet, "/api/v1/jobs/find-jobs", acme, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Acme intern", page.Data[0].JobTitle)

	// A bad token on a public route is treated as anonymous.
	w, _ = call(t, r, http.MethodGet, "/api/v1/jobs", "garbage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(w)
	assert.Equal(t, 2, page.TotalJobs)
}

func TestExtractDisabledWithoutKey(t *testing.T) {
	r := newRouter(t)
	_, env := call(t, r, http.MethodPost, "/api/v1/companies/register", "", map[string]any{
		"name": "Acme", "email": "jobs@acme.io", "password": "secret1",
	})

	w, env := call(t, r, http.MethodPost, "/api/v1/jobs/extract", env.Token, map[string]any{"raw_text": "Hiring a Go developer"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
}

func TestJobFilterFromDeadline(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
	}
	for _, tt := range tests {
		f, err := jobFilterFrom(dtos.JobListQuery{Deadline: tt.raw})
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.OpenOnly, "deadline=%q", tt.raw)
	}
}
