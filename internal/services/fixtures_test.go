package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, jobID string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[jobID]
	return b, ok, nil
}

func (c *fakeCache) Set(_ context.Context, jobID string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[jobID] = payload
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, jobIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range jobIDs {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type published struct {
	Key  string
	Body json.RawMessage
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, body json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Key: routingKey, Body: body})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Key
	}
	return out
}

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	cache  *fakeCache
	events *fakePublisher
	jobs   *JobService
	apps   *ApplicationService

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := quietLogger()
	c := newFakeCache()
	pub := &fakePublisher{}

	jobs := NewJobService(db, log, c, pub, Pagination{DefaultLimit: 20, MaxLimit: 100})
	jobs.now = func() time.Time { return testNow }
	apps := NewApplicationService(db, log, c, pub)
	apps.now = func() time.Time { return testNow }

	return &fixture{t: t, db: db, cache: c, events: pub, jobs: jobs, apps: apps}
}

func (f *fixture) company(name string) models.Company {
	f.t.Helper()
	c := models.Company{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
		Password: "hash",
		Location: "Berlin",
	}
	require.NoError(f.t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) seeker(first, last, cv string, skills ...string) models.User {
	f.t.Helper()
	f.seq++
	u := models.User{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), f.seq),
		Password:  "hash",
		CVURL:     cv,
		JobTitle:  "Engineer",
		Skills:    skills,
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

type jobOpt func(*models.Job)

func withType(t models.JobType) jobOpt { return func(j *models.Job) { j.JobType = t } }
func withLocation(l string) jobOpt { return func(j *models.Job) { j.Location = l } }
func withSalary(s int64) jobOpt { return func(j *models.Job) { j.Salary = s } }
func withExperience(years int) jobOpt { return func(j *models.Job) { j.Experience = years } }
func withSkills(skills ...string) jobOpt { return func(j *models.Job) { j.Skills = skills } }
func expired() jobOpt { return func(j *models.Job) { j.Deadline = testNow.Add(-24 * time.Hour) } }
func archived() jobOpt { return func(j *models.Job) { j.IsArchived = true } }
func inactive() jobOpt { return func(j *models.Job) { j.IsActive = false } }

// job inserts a posting; each call is a minute newer than the previous one.
func (f *fixture) job(companyID uuid.UUID, title string, opts ...jobOpt) models.Job {
	f.t.Helper()
	f.seq++
	j := models.Job{
		CompanyID:    companyID,
		CreatedAt:    testNow.Add(-24 * time.Hour).Add(time.Duration(f.seq) * time.Minute),
		JobTitle:     title,
		JobType:      models.JobTypeFullTime,
		Location:     "Remote",
		Description:  "Build things",
		Requirements: "Experience",
		Skills:       []string{},
		Deadline:     testNow.Add(7 * 24 * time.Hour),
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(&j)
	}
	require.NoError(f.t, f.db.Create(&j).Error)
	require.NoError(f.t, replaceSkillIndex(f.db, j.ID, j.Skills))
	return j
}

func titles(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.JobTitle
	}
	return out
}
