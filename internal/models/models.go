package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleSeeker  = "seeker"
	RoleCompany = "company"
)

type JobType string

const (
	JobTypeFullTime JobType = "full-time"
	JobTypePartTime JobType = "part-time"
	JobTypeContract JobType = "contract"
	JobTypeIntern   JobType = "intern"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeIntern:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FirstName  string                      `gorm:"not null" json:"firstName"`
	LastName   string                      `gorm:"not null" json:"lastName"`
	Email      string                      `gorm:"uniqueIndex;not null" json:"email"`
	Password   string                      `gorm:"not null" json:"-"`
	Contact    string                      `json:"contact"`
	Location   string                      `json:"location"`
	About      string                      `gorm:"type:text" json:"about"`
	JobTitle   string                      `json:"jobTitle"`
	ProfileURL string                      `json:"profileUrl"`
	CVURL      string                      `gorm:"column:cv_url" json:"cvUrl"`
	Skills     datatypes.JSONSlice[string] `json:"skills"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Password   string `gorm:"not null" json:"-"`
	Contact    string `json:"contact"`
	Location   string `json:"location"`
	About      string `gorm:"type:text" json:"about"`
	ProfileURL string `json:"profileUrl"`

	// Filled by query-time lookup on jobs.company_id, never persisted from here.
	JobPosts []Job `gorm:"foreignKey:CompanyID" json:"jobPosts,omitempty"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Foreign Key
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"companyId"`
	// Association: GORM needs Preload() to fill this
	Company *Company `json:"company,omitempty"`

	JobTitle     string                      `gorm:"not null" json:"jobTitle"`
	JobType      JobType                     `gorm:"type:varchar(32);not null;index" json:"jobType"`
	Location     string                      `gorm:"not null" json:"location"`
	Salary       int64                       `gorm:"not null;default:0" json:"salary"`
	Vacancies    int                         `json:"vacancies"`
	Experience   int                         `gorm:"not null;default:0" json:"experience"`
	Description  string                      `gorm:"type:text" json:"desc"`
	Requirements string                      `gorm:"type:text" json:"requirements"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Deadline     time.Time                   `gorm:"not null;index" json:"deadline"`
	IsActive     bool                        `gorm:"not null" json:"isActive"`
	IsArchived   bool                        `gorm:"not null;default:false;index" json:"isArchived"`

	ApplicationCount int           `gorm:"not null;default:0" json:"applicationCount"`
	Applications     []Application `json:"applications,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the deadline has passed at the given instant.
func (j *Job) IsExpired(now time.Time) bool {
	return !j.Deadline.After(now)
}

// JobSkill is the lower-cased skill index used by the skills filter.
type JobSkill struct {
	JobID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Skill string    `gorm:"primaryKey;index"`
}

// Application belongs to exactly one job and is removed with it.
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"_id"`
	JobID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_user" json:"jobId"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_user;index" json:"userId"`
	User        *User             `json:"user,omitempty"`
	Status      ApplicationStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ResumeURL   string            `json:"resumeUrl"`
	Feedback    string            `gorm:"type:text" json:"feedback,omitempty"`
	AppliedDate time.Time         `gorm:"not null" json:"appliedDate"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AppliedJob indexes the jobs a user applied to, so "my applications" never scans jobs.
type AppliedJob struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Company{},
		&Job{},
		&JobSkill{},
		&Application{},
		&AppliedJob{},
	}
}
