package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/events"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultDeadline = 30 * 24 * time.Hour

type JobService struct {
	DB         *gorm.DB
	Log        *logrus.Logger
	Cache      cache.JobCache
	Events     events.Publisher
	Pagination Pagination

	now func() time.Time
}

func NewJobService(db *gorm.DB, log *logrus.Logger, jobCache cache.JobCache, pub events.Publisher, p Pagination) *JobService {
	return &JobService{
		DB:         db,
		Log:        log,
		Cache:      jobCache,
		Events:     pub,
		Pagination: p,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type JobDetail struct {
	Job         models.Job   `json:"data"`
	SimilarJobs []models.Job `json:"similarJobs"`
}

// FindJobs runs the public listing query. Companies only ever see their own
// postings, expired ones included unless OpenOnly is set.
func (s *JobService) FindJobs(ctx context.Context, f JobFilter, caller Caller) (*JobPage, error) {
	filters, err := f.filterScope()
	if err != nil {
		return nil, err
	}
	page, limit := s.Pagination.Normalize(f.Page, f.Limit)

	vis := Visibility{}
	var owner func(*gorm.DB) *gorm.DB
	if caller.IsCompany() {
		vis = Visibility{IncludeExpired: !f.OpenOnly, IncludeArchived: f.IncludeArchived}
		owner = func(db *gorm.DB) *gorm.DB { return db.Where("jobs.company_id = ?", caller.ID) }
	} else {
		owner = func(db *gorm.DB) *gorm.DB { return db }
	}

	now := s.now()
	base := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&models.Job{}).Scopes(owner, vis.Scope(now), filters)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	jobs := []models.Job{}
	if offset, ok := pageOffset(page, limit, total); ok {
		err = base().
			Preload("Company", omitPassword).
			Order(orderFor(f.Sort)).
			Offset(offset).
			Limit(limit).
			Find(&jobs).Error
		if err != nil {
			return nil, fmt.Errorf("find jobs: %w", err)
		}
	}

	return &JobPage{
		Jobs:      jobs,
		TotalJobs: total,
		Page:      page,
		Limit:     limit,
		NumOfPage: numOfPages(total, limit),
	}, nil
}

// CompanyJobListing returns the company's jobs whose archived flag equals
// archived. Expired jobs are hidden unless includeExpired is set.
func (s *JobService) CompanyJobListing(ctx context.Context, companyID uuid.UUID, archived, includeExpired bool) ([]models.Job, error) {
	vis := Visibility{IncludeExpired: includeExpired, IncludeArchived: true}

	jobs := []models.Job{}
	err := s.DB.WithContext(ctx).
		Scopes(vis.Scope(s.now())).
		Where("jobs.company_id = ? AND jobs.is_archived = ?", companyID, archived).
		Order("jobs.created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("company job listing: %w", err)
	}
	return jobs, nil
}

// GetJobDetail loads one job and up to six similar ones. The job itself is
// never part of its own similar list. Only the job row is cached; similar
// jobs are read fresh on every call.
func (s *JobService) GetJobDetail(ctx context.Context, jobID uuid.UUID) (*JobDetail, error) {
	job, err := s.cachedJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	similar := []models.Job{}
	err = s.DB.WithContext(ctx).
		Scopes(Visibility{}.Scope(s.now())).
		Preload("Company", omitPassword).
		Where("jobs.id <> ?", job.ID).
		Where("(LOWER(jobs.job_title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(jobs.job_type) LIKE ? ESCAPE '"+likeEscape+"')",
			containsPattern(job.JobTitle), containsPattern(string(job.JobType))).
		Order("jobs.created_at DESC, jobs.id ASC").
		Limit(similarJobsLimit).
		Find(&similar).Error
	if err != nil {
		return nil, fmt.Errorf("similar jobs: %w", err)
	}

	return &JobDetail{Job: *job, SimilarJobs: similar}, nil
}

func (s *JobService) cachedJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	key := jobID.String()
	if payload, ok, err := s.Cache.Get(ctx, key); err != nil {
		s.Log.WithError(err).WithField("job_id", key).Warn("job cache read failed")
	} else if ok {
		var job models.Job
		if err := json.Unmarshal(payload, &job); err == nil {
			return &job, nil
		}
	}

	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company", omitPassword).First(&job, "jobs.id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Job Post Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if payload, err := json.Marshal(job); err == nil {
		if err := s.Cache.Set(ctx, key, payload); err != nil {
			s.Log.WithError(err).WithField("job_id", key).Warn("job cache write failed")
		}
	}
	return &job, nil
}

// CreateJob stores a new posting for the company.
func (s *JobService) CreateJob(ctx context.Context, companyID uuid.UUID, req *dtos.JobRequest) (*models.Job, error) {
	if err := validateJobRequest(req); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup company: %w", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("No Company with id: %s", companyID)
	}

	now := s.now()
	job := &models.Job{
		CompanyID: companyID,
		CreatedAt: now,
		IsActive:  true,
	}
	applyJobRequest(job, req)
	if req.Deadline == nil {
		job.Deadline = now.Add(defaultDeadline)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		return replaceSkillIndex(tx, job.ID, job.Skills)
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.publish(ctx, events.JobCreated, events.JobEvent{
		JobID:     job.ID.String(),
		CompanyID: companyID.String(),
		JobTitle:  job.JobTitle,
		At:        now,
	})
	return job, nil
}

// UpdateJob replaces the editable fields of a job the company owns. A missing
// deadline keeps the current one.
func (s *JobService) UpdateJob(ctx context.Context, jobID, companyID uuid.UUID, req *dtos.JobRequest) (*models.Job, error) {
	if err := validateJobRequest(req); err != nil {
		return nil, err
	}

	var job *models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if job, err = ownedJob(tx, jobID, companyID); err != nil {
			return err
		}
		applyJobRequest(job, req)
		job.UpdatedAt = s.now()

		err = tx.Model(job).Select(
			"JobTitle", "JobType", "Location", "Salary", "Vacancies", "Experience",
			"Description", "Requirements", "Skills", "Deadline", "IsActive", "UpdatedAt",
		).Updates(job).Error
		if err != nil {
			return err
		}
		return replaceSkillIndex(tx, job.ID, job.Skills)
	})
	if err != nil {
		return nil, wrapStoreErr("update job", err)
	}

	s.invalidate(ctx, jobID)
	return job, nil
}

// DeleteJob removes the job with its applications and index rows.
func (s *JobService) DeleteJob(ctx context.Context, jobID, companyID uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedJob(tx, jobID, companyID); err != nil {
			return err
		}
		for _, m := range []any{&models.Application{}, &models.JobSkill{}, &models.AppliedJob{}} {
			if err := tx.Where("job_id = ?", jobID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Job{}, "id = ?", jobID).Error
	})
	if err != nil {
		return wrapStoreErr("delete job", err)
	}

	s.invalidate(ctx, jobID)
	s.publish(ctx, events.JobDeleted, events.JobEvent{
		JobID:     jobID.String(),
		CompanyID: companyID.String(),
		At:        s.now(),
	})
	return nil
}

// ArchiveJob sets the archived flag. Applications are left untouched.
func (s *JobService) ArchiveJob(ctx context.Context, jobID, companyID uuid.UUID, archived bool) (*models.Job, error) {
	var job *models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if job, err = ownedJob(tx, jobID, companyID); err != nil {
			return err
		}
		job.IsArchived = archived
		job.UpdatedAt = s.now()
		return tx.Model(job).Select("IsArchived", "UpdatedAt").Updates(job).Error
	})
	if err != nil {
		return nil, wrapStoreErr("archive job", err)
	}

	s.invalidate(ctx, jobID)
	return job, nil
}

func (s *JobService) invalidate(ctx context.Context, jobID uuid.UUID) {
	if err := s.Cache.Invalidate(ctx, jobID.String()); err != nil {
		s.Log.WithError(err).WithField("job_id", jobID).Warn("job cache invalidation failed")
	}
}

func (s *JobService) publish(ctx context.Context, routingKey string, event any) {
	publishEvent(ctx, s.Events, s.Log, routingKey, event)
}

// ownedJob loads the job and checks that companyID owns it.
func ownedJob(db *gorm.DB, jobID, companyID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := db.First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, apperr.Authorization("You are not the owner of this job")
	}
	return &job, nil
}

func validateJobRequest(req *dtos.JobRequest) error {
	if strings.TrimSpace(req.JobTitle) == "" ||
		strings.TrimSpace(req.Location) == "" ||
		strings.TrimSpace(req.Desc) == "" ||
		strings.TrimSpace(req.Requirements) == "" {
		return apperr.Validation("Please provide all required fields")
	}
	if !models.JobType(req.JobType).Valid() {
		return apperr.Validation("Job type must be one of full-time, part-time, contract, intern")
	}
	if req.Salary < 0 || req.Vacancies < 0 || req.Experience < 0 {
		return apperr.Validation("Salary, vacancies and experience cannot be negative")
	}
	return nil
}

func applyJobRequest(job *models.Job, req *dtos.JobRequest) {
	job.JobTitle = strings.TrimSpace(req.JobTitle)
	job.JobType = models.JobType(req.JobType)
	job.Location = strings.TrimSpace(req.Location)
	job.Salary = req.Salary
	job.Vacancies = req.Vacancies
	job.Experience = req.Experience
	job.Description = req.Desc
	job.Requirements = req.Requirements
	job.Skills = NormalizeSkills(req.Skills)
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
	if req.Deadline != nil {
		job.Deadline = req.Deadline.UTC()
	}
}

// replaceSkillIndex rewrites the lower-cased skill rows of a job.
func replaceSkillIndex(tx *gorm.DB, jobID uuid.UUID, skills []string) error {
	if err := tx.Where("job_id = ?", jobID).Delete(&models.JobSkill{}).Error; err != nil {
		return err
	}
	rows := make([]models.JobSkill, 0, len(skills))
	for _, skill := range lowerAll(NormalizeSkills(skills)) {
		rows = append(rows, models.JobSkill{JobID: jobID, Skill: skill})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// wrapStoreErr keeps business errors as they are and wraps store failures.
func wrapStoreErr(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func publishEvent(ctx context.Context, pub events.Publisher, log *logrus.Logger, routingKey string, event any) {
	body, err := events.Encode(event)
	if err == nil {
		err = pub.Publish(ctx, routingKey, body)
	}
	if err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Warn("event publish failed")
	}
}
