package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/sirupsen/logrus"
)

type JobHandler struct {
	LLMService  *services.LLMService
	JobService  *services.JobService
	Application *services.ApplicationService
	Log         *logrus.Logger
}

func NewJobHandler(llm *services.LLMService, j *services.JobService, a *services.ApplicationService, log *logrus.Logger) *JobHandler {
	return &JobHandler{
		LLMService:  llm,
		JobService:  j,
		Application: a,
		Log:         log,
	}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	draft, err := h.LLMService.ExtractJobDraft(c.Request.Context(), req.RawText)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft})
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), companyID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Job Posted Successfully", "job": job})
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	jobID, err := parseID(c.Param("jobId"), "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), jobID, companyID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job Post Updated Successfully", "job": job})
}

// FindJobs serves GET /jobs and /jobs/find-jobs.
func (h *JobHandler) FindJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.Log, apperr.Validation("Invalid query: %v", err))
		return
	}
	filter, err := jobFilterFrom(q)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	page, err := h.JobService.FindJobs(c.Request.Context(), filter, caller(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*services.JobPage
	}{true, page})
}

func jobFilterFrom(q dtos.JobListQuery) (services.JobFilter, error) {
	f := services.JobFilter{
		Search:          q.Search,
		Location:        q.Location,
		JobTypes:        splitCSV(q.JobType),
		Experience:      q.Experience,
		Skills:          splitCSV(q.Skills),
		Sort:            q.Sort,
		Page:            q.Page,
		Limit:           q.Limit,
		IncludeArchived: q.IncludeArchived,
	}
	if f.Search == "" {
		f.Search = q.Query
	}
	if f.Location == "" {
		f.Location = q.CmpLoc
	}
	if raw := strings.TrimSpace(q.IsActive); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.Validation("isActive must be true or false")
		}
		f.IsActive = &active
	}
	if raw := strings.TrimSpace(q.Deadline); raw != "" {
		open, err := strconv.ParseBool(raw)
		f.OpenOnly = err != nil || open
	}
	return f, nil
}

func (h *JobHandler) GetJobDetail(c *gin.Context) {
	jobID, err := parseID(c.Param("id"), "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	detail, err := h.JobService.GetJobDetail(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*services.JobDetail
	}{true, detail})
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	jobID, err := parseID(c.Param("id"), "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), jobID, companyID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job Post Deleted Successfully"})
}

// SetArchived returns the handler for archive-job (true) or unarchive-job (false).
func (h *JobHandler) SetArchived(archived bool) gin.HandlerFunc {
	message := "Job unarchived successfully"
	if archived {
		message = "Job archived successfully"
	}
	return func(c *gin.Context) {
		companyID, err := callerID(c)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		jobID, err := parseID(c.Param("id"), "job")
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		job, err := h.JobService.ArchiveJob(c.Request.Context(), jobID, companyID, archived)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "job": job})
	}
}

func (h *JobHandler) ApplyJob(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	jobID, err := parseID(c.Param("id"), "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	app, err := h.Application.Apply(c.Request.Context(), jobID, userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application submitted successfully", "data": app})
}

func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	jobID, err := parseID(req.JobID, "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	userID, err := parseID(req.UserID, "user")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	app, err := h.Application.UpdateStatus(c.Request.Context(), services.StatusUpdate{
		JobID:    jobID,
		UserID:   userID,
		Status:   models.ApplicationStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Feedback: req.Feedback,
	}, companyID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application status updated", "data": app})
}

func (h *JobHandler) ListApplicants(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	jobID, err := parseID(c.Param("jobId"), "job")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var q dtos.ApplicantQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.Log, apperr.Validation("Invalid query: %v", err))
		return
	}

	applicants, err := h.Application.ListApplicants(c.Request.Context(), jobID, companyID, services.ApplicantFilter{
		Search: q.Search,
		Skills: splitCSV(q.Skills),
		Status: q.Status,
		Sort:   q.Sort,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(applicants), "data": applicants})
}
