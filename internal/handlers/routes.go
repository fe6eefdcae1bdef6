package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/models"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Company *CompanyHandler
	Job     *JobHandler
}

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(r gin.IRouter, h Handlers, tokens middleware.TokenVerifier) {
	authed := middleware.RequireAuth(tokens)
	seeker := middleware.RequireRole(models.RoleSeeker)
	company := middleware.RequireRole(models.RoleCompany)

	api := r.Group("/api/v1")
	api.GET("/health", HealthCheck)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.RegisterUser)
		authRoutes.POST("/login", h.Auth.LoginUser)
	}

	companies := api.Group("/companies")
	{
		companies.POST("/register", h.Auth.RegisterCompany)
		companies.POST("/login", h.Auth.LoginCompany)
		companies.GET("", h.Company.ListCompanies)
		companies.GET("/get-company/:id", h.Company.GetCompany)
		companies.POST("/get-company-profile", authed, company, h.Company.GetProfile)
		companies.POST("/get-company-joblisting", authed, company, h.Company.JobListing)
		companies.PUT("/update-company", authed, company, h.Company.UpdateProfile)
	}

	users := api.Group("/users", authed, seeker)
	{
		users.POST("/get-user", h.User.GetUser)
		users.PUT("/update-user", h.User.UpdateUser)
		users.GET("/applied-jobs", h.User.AppliedJobs)
	}

	jobs := api.Group("/jobs")
	{
		optional := middleware.OptionalAuth(tokens)
		jobs.GET("", optional, h.Job.FindJobs)
		jobs.GET("/find-jobs", optional, h.Job.FindJobs)
		jobs.GET("/get-job-detail/:id", h.Job.GetJobDetail)

		jobs.POST("/upload-job", authed, company, h.Job.CreateJob)
		jobs.PUT("/update-job/:jobId", authed, company, h.Job.UpdateJob)
		jobs.DELETE("/delete-job/:id", authed, company, h.Job.DeleteJob)
		jobs.PUT("/archive-job/:id", authed, company, h.Job.SetArchived(true))
		jobs.PUT("/unarchive-job/:id", authed, company, h.Job.SetArchived(false))
		jobs.PUT("/update-application-status", authed, company, h.Job.UpdateApplicationStatus)
		jobs.GET("/applicants/:jobId", authed, company, h.Job.ListApplicants)
		jobs.POST("/extract", authed, company, h.Job.ParseJob)

		jobs.POST("/apply-jobs/:id", authed, seeker, h.Job.ApplyJob)
	}
}
