package dtos

import "time"

type JobExtractionRequest struct {
	RawText string `json:"raw_text" binding:"required"`
}

// JobDraft is what the extraction agent fills in for the upload form.
type JobDraft struct {
	JobTitle     string   `json:"jobTitle"`
	JobType      string   `json:"jobType"`
	Location     string   `json:"location"`
	Salary       *int64   `json:"salary"`
	Experience   *int     `json:"experience"`
	Desc         string   `json:"desc"`
	Requirements string   `json:"requirements"`
	Skills       []string `json:"skills"`
}

// JobRequest is the body of upload-job and update-job.
type JobRequest struct {
	JobTitle     string   `json:"jobTitle" binding:"required"`
	JobType      string   `json:"jobType" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Salary       int64    `json:"salary" binding:"gte=0"`
	Vacancies    int      `json:"vacancies" binding:"gte=0"`
	Experience   int      `json:"experience" binding:"gte=0"`
	Desc         string   `json:"desc" binding:"required"`
	Requirements string   `json:"requirements" binding:"required"`
	Skills       []string `json:"skills"`
	IsActive     *bool    `json:"isActive"`

	// Optional Fields
	Deadline *time.Time `json:"deadline"` // Defaults to 30 days from now on upload
}

// JobListQuery carries the query string of GET /jobs.
type JobListQuery struct {
	Search          string `form:"search"`
	Query           string `form:"query"`
	Location        string `form:"location"`
	CmpLoc          string `form:"cmpLoc"`
	JobType         string `form:"jType"`
	Experience      string `form:"exp"`
	Skills          string `form:"skills"`
	IsActive        string `form:"isActive"`
	Deadline        string `form:"deadline"`
	Sort            string `form:"sort"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
	IncludeArchived bool   `form:"includeArchived"`
}

type UpdateApplicationStatusRequest struct {
	JobID    string  `json:"jobId" binding:"required"`
	UserID   string  `json:"userId" binding:"required"`
	Status   string  `json:"status" binding:"required"`
	Feedback *string `json:"feedback"`
}

// ApplicantQuery carries the query string of GET /jobs/applicants/:jobId.
type ApplicantQuery struct {
	Search string `form:"search"`
	Skills string `form:"skills"`
	Status string `form:"status"`
	Sort   string `form:"sort"`
}
