package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Auth *services.AuthService
	Log  *logrus.Logger
}

func NewAuthHandler(a *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, Log: log}
}

func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req dtos.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	user, token, err := h.Auth.RegisterUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Account created successfully",
		"user":        user,
		"accountType": models.RoleSeeker,
		"token":       token,
	})
}

func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	user, token, err := h.Auth.LoginUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successful",
		"user":        user,
		"accountType": models.RoleSeeker,
		"token":       token,
	})
}

func (h *AuthHandler) RegisterCompany(c *gin.Context) {
	var req dtos.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	company, token, err := h.Auth.RegisterCompany(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Company Account Created Successfully",
		"user":        company,
		"accountType": models.RoleCompany,
		"token":       token,
	})
}

func (h *AuthHandler) LoginCompany(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	company, token, err := h.Auth.LoginCompany(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successful",
		"user":        company,
		"accountType": models.RoleCompany,
		"token":       token,
	})
}

type UserHandler struct {
	Users        *services.UserService
	Applications *services.ApplicationService
	Log          *logrus.Logger
}

func NewUserHandler(u *services.UserService, a *services.ApplicationService, log *logrus.Logger) *UserHandler {
	return &UserHandler{Users: u, Applications: a, Log: log}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	user, err := h.Users.UpdateUser(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully", "user": user})
}

func (h *UserHandler) AppliedJobs(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	views, err := h.Applications.ListUserApplications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

type CompanyHandler struct {
	Companies *services.CompanyService
	Jobs      *services.JobService
	Log       *logrus.Logger
}

func NewCompanyHandler(cs *services.CompanyService, js *services.JobService, log *logrus.Logger) *CompanyHandler {
	return &CompanyHandler{Companies: cs, Jobs: js, Log: log}
}

func (h *CompanyHandler) GetProfile(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	company, err := h.Companies.GetProfile(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": company})
}

func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	company, err := h.Companies.UpdateProfile(c.Request.Context(), companyID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Company Profile Updated Successfully", "company": company})
}

func (h *CompanyHandler) JobListing(c *gin.Context) {
	companyID, err := callerID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	var req dtos.CompanyJobListingRequest
	// An empty body asks for the active, unexpired listing.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.Log, bindError(err))
			return
		}
	}
	jobs, err := h.Jobs.CompanyJobListing(c.Request.Context(), companyID, req.Archived, req.IncludeExpired)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobs})
}

func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	var q dtos.CompanyListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.Log, bindError(err))
		return
	}
	page, err := h.Companies.ListCompanies(c.Request.Context(), services.CompanyFilter{
		Search:   q.Search,
		Location: q.Location,
		Sort:     q.Sort,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*services.CompanyPage
	}{true, page})
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, err := parseID(c.Param("id"), "company")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	company, err := h.Companies.GetCompanyByID(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": company})
}
