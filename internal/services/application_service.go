package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/events"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationService struct {
	DB     *gorm.DB
	Log    *logrus.Logger
	Cache  cache.JobCache
	Events events.Publisher

	now func() time.Time
}

func NewApplicationService(db *gorm.DB, log *logrus.Logger, jobCache cache.JobCache, pub events.Publisher) *ApplicationService {
	return &ApplicationService{
		DB:     db,
		Log:    log,
		Cache:  jobCache,
		Events: pub,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type StatusUpdate struct {
	JobID    uuid.UUID
	UserID   uuid.UUID
	Status   models.ApplicationStatus
	Feedback *string
}

type ApplicantFilter struct {
	Search string
	Skills []string
	Status string
	Sort   string
}

type ApplicantUser struct {
	ID         uuid.UUID `json:"_id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	JobTitle   string    `json:"jobTitle"`
	Skills     []string  `json:"skills"`
	ProfileURL string    `json:"profileUrl"`
}

func (u ApplicantUser) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Applicant struct {
	ID          uuid.UUID                `json:"_id"`
	Status      models.ApplicationStatus `json:"status"`
	AppliedDate time.Time                `json:"appliedDate"`
	ResumeURL   string                   `json:"resumeUrl"`
	Feedback    string                   `json:"feedback,omitempty"`
	User        ApplicantUser            `json:"user"`
}

// AppliedJobView is a job annotated with the caller's own application.
type AppliedJobView struct {
	models.Job
	Status      models.ApplicationStatus `json:"status"`
	AppliedDate *time.Time               `json:"appliedDate,omitempty"`
	Feedback    string                   `json:"feedback,omitempty"`
}

// Apply records a pending application with a snapshot of the user's resume.
// The insert is conditional on the (job, user) pair, so concurrent duplicate
// requests cannot both succeed.
func (s *ApplicationService) Apply(ctx context.Context, jobID, userID uuid.UUID) (*models.Application, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if strings.TrimSpace(user.CVURL) == "" {
		return nil, apperr.Validation("Please upload your resume before applying")
	}

	var job models.Job
	err = db.Select("id", "company_id").First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	now := s.now()
	app := &models.Application{
		JobID:       jobID,
		UserID:      userID,
		Status:      models.StatusPending,
		ResumeURL:   user.CVURL,
		AppliedDate: now,
		UpdatedAt:   now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(app)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("You have already applied to this job")
		}

		err := tx.Model(&models.Job{}).Where("id = ?", jobID).
			UpdateColumn("application_count", gorm.Expr("application_count + ?", 1)).Error
		if err != nil {
			return err
		}

		// Keep the user's applied-jobs index in step with the insert.
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AppliedJob{UserID: userID, JobID: jobID, CreatedAt: now}).Error
	})
	if err != nil {
		return nil, wrapStoreErr("apply", err)
	}

	s.invalidate(ctx, jobID)
	publishEvent(ctx, s.Events, s.Log, events.ApplicationSubmitted, events.ApplicationEvent{
		JobID:     jobID.String(),
		UserID:    userID.String(),
		CompanyID: job.CompanyID.String(),
		Status:    string(app.Status),
		At:        now,
	})
	return app, nil
}

// UpdateStatus moves an application along pending -> accepted|rejected. Only
// the owning company may do it, and accepted or rejected are final.
func (s *ApplicationService) UpdateStatus(ctx context.Context, u StatusUpdate, companyID uuid.UUID) (*models.Application, error) {
	if !u.Status.Valid() {
		return nil, apperr.Validation("Invalid status value")
	}

	var (
		app     models.Application
		changed bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedJob(tx, u.JobID, companyID); err != nil {
			return err
		}

		err := tx.First(&app, "job_id = ? AND user_id = ?", u.JobID, u.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Application not found")
		}
		if err != nil {
			return err
		}

		if app.Status == u.Status && (u.Feedback == nil || *u.Feedback == app.Feedback) {
			return nil
		}
		if app.Status.Terminal() && app.Status != u.Status {
			return apperr.Conflict("Application has already been %s", app.Status)
		}

		updatedAt := s.now()
		changes := map[string]any{"status": u.Status, "updated_at": updatedAt}
		if u.Feedback != nil {
			changes["feedback"] = *u.Feedback
		}
		// Guarded on the status we read, so a concurrent decision is not overwritten.
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, app.Status).
			Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Application was updated by another request, reload and retry")
		}

		app.Status = u.Status
		app.UpdatedAt = updatedAt
		if u.Feedback != nil {
			app.Feedback = *u.Feedback
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("update application status", err)
	}
	if !changed {
		return &app, nil
	}

	s.invalidate(ctx, u.JobID)
	publishEvent(ctx, s.Events, s.Log, events.ApplicationStatusChanged, events.ApplicationEvent{
		JobID:     u.JobID.String(),
		UserID:    u.UserID.String(),
		CompanyID: companyID.String(),
		Status:    string(app.Status),
		At:        app.UpdatedAt,
	})
	return &app, nil
}

// ListApplicants returns the applicants of a job the company owns, filtered
// in memory after the fetch.
func (s *ApplicationService) ListApplicants(ctx context.Context, jobID, companyID uuid.UUID, f ApplicantFilter) ([]Applicant, error) {
	if f.Status != "" && !models.ApplicationStatus(f.Status).Valid() {
		return nil, apperr.Validation("Invalid status value")
	}

	db := s.DB.WithContext(ctx)
	if _, err := ownedJob(db, jobID, companyID); err != nil {
		if apperr.Is(err, apperr.KindAuthorization) {
			return nil, apperr.Authorization("Unauthorized to view applicants")
		}
		return nil, wrapStoreErr("load job", err)
	}

	var apps []models.Application
	err := db.Preload("User", omitPassword).
		Where("job_id = ?", jobID).
		Order("applied_date ASC, id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	applicants := make([]Applicant, 0, len(apps))
	for _, a := range apps {
		applicants = append(applicants, toApplicant(a))
	}
	return filterApplicants(applicants, f), nil
}

func toApplicant(a models.Application) Applicant {
	out := Applicant{
		ID:          a.ID,
		Status:      a.Status,
		AppliedDate: a.AppliedDate,
		ResumeURL:   a.ResumeURL,
		Feedback:    a.Feedback,
		User:        ApplicantUser{ID: a.UserID, Skills: []string{}},
	}
	if u := a.User; u != nil {
		if out.ResumeURL == "" {
			out.ResumeURL = u.CVURL
		}
		out.User = ApplicantUser{
			ID:         u.ID,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Email:      u.Email,
			JobTitle:   u.JobTitle,
			Skills:     append([]string{}, u.Skills...),
			ProfileURL: u.ProfileURL,
		}
	}
	return out
}

func filterApplicants(in []Applicant, f ApplicantFilter) []Applicant {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	wanted := make(map[string]bool)
	for _, s := range NormalizeSkills(f.Skills) {
		wanted[strings.ToLower(s)] = true
	}

	out := make([]Applicant, 0, len(in))
	for _, a := range in {
		if search != "" {
			if !strings.Contains(strings.ToLower(a.User.FullName()), search) {
				continue
			}
		}
		if len(wanted) > 0 && !hasAnySkill(a.User.Skills, wanted) {
			continue
		}
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		out = append(out, a)
	}

	if f.Sort == "date" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].AppliedDate.After(out[j].AppliedDate)
		})
	}
	return out
}

func hasAnySkill(skills []string, wanted map[string]bool) bool {
	for _, s := range skills {
		if wanted[strings.ToLower(strings.TrimSpace(s))] {
			return true
		}
	}
	return false
}

// ListUserApplications returns every job the user applied to, expired and
// archived ones included, each with the user's own application state.
func (s *ApplicationService) ListUserApplications(ctx context.Context, userID uuid.UUID) ([]AppliedJobView, error) {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("User not found")
	}

	var jobs []models.Job
	err := db.
		Scopes(Everything.Scope(s.now())).
		Joins("JOIN applied_jobs ON applied_jobs.job_id = jobs.id AND applied_jobs.user_id = ?", userID).
		Preload("Company", omitPassword).
		Preload("Applications", "user_id = ?", userID).
		Order("applied_jobs.created_at DESC, jobs.id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("load applied jobs: %w", err)
	}

	views := make([]AppliedJobView, 0, len(jobs))
	for _, job := range jobs {
		view := AppliedJobView{Status: models.StatusPending}
		if len(job.Applications) > 0 {
			own := job.Applications[0]
			view.Status = own.Status
			view.AppliedDate = &own.AppliedDate
			view.Feedback = own.Feedback
		}
		job.Applications = nil
		view.Job = job
		views = append(views, view)
	}
	return views, nil
}

func (s *ApplicationService) invalidate(ctx context.Context, jobID uuid.UUID) {
	if err := s.Cache.Invalidate(ctx, jobID.String()); err != nil {
		s.Log.WithError(err).WithField("job_id", jobID).Warn("job cache invalidation failed")
	}
}
