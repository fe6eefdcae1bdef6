package dtos

type RegisterUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type RegisterCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Contact   string   `json:"contact"`
	Location  string   `json:"location"`
	About     string   `json:"about"`
	JobTitle  string   `json:"jobTitle"`
	Skills    []string `json:"skills"`

	// Optional Fields
	ProfileURL *string `json:"profileUrl"`
	CVURL      *string `json:"cvUrl"` // Already-hosted resume link; uploads happen elsewhere
}

type UpdateCompanyRequest struct {
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	Location   string `json:"location"`
	About      string `json:"about"`
	ProfileURL string `json:"profileUrl"`
}

// CompanyListQuery carries the query string of GET /companies.
type CompanyListQuery struct {
	Search   string `form:"search"`
	Location string `form:"location"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type CompanyJobListingRequest struct {
	Archived       bool `json:"archived"`
	IncludeExpired bool `json:"includeExpired"`
}
