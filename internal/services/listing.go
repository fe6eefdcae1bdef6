package services

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
)

const (
	SortNewest           = "Newest"
	SortOldest           = "Oldest"
	SortAZ               = "A-Z"
	SortZA               = "Z-A"
	SortMostApplications = "Most Applications"
	SortSalaryHigh       = "Salary High"
	SortSalaryLow        = "Salary Low"
)

const similarJobsLimit = 6

var jobOrder = map[string]string{
	SortNewest:           "jobs.created_at DESC",
	SortOldest:           "jobs.created_at ASC",
	SortAZ:               "jobs.job_title ASC",
	SortZA:               "jobs.job_title DESC",
	SortMostApplications: "jobs.application_count DESC",
	SortSalaryHigh:       "jobs.salary DESC",
	SortSalaryLow:        "jobs.salary ASC",
}

// orderFor maps a sort key to an ORDER BY clause. Unknown keys sort newest first.
func orderFor(sort string) string {
	order, ok := jobOrder[sort]
	if !ok {
		order = jobOrder[SortNewest]
	}
	// Ties break on id so consecutive pages never overlap.
	return order + ", jobs.id ASC"
}

// Caller is the authenticated account behind a request; the zero value is anonymous.
type Caller struct {
	ID          uuid.UUID
	AccountType string
}

func (c Caller) IsCompany() bool {
	return c.ID != uuid.Nil && c.AccountType == models.RoleCompany
}

type JobFilter struct {
	Search     string
	Location   string
	JobTypes   []string
	Experience string
	Skills     []string
	IsActive   *bool
	Sort       string
	Page       int
	Limit      int

	// Honoured only for company callers looking at their own postings.
	IncludeArchived bool

	// OpenOnly hides expired postings from a company's own listing too.
	OpenOnly bool
}

type JobPage struct {
	Jobs      []models.Job `json:"data"`
	TotalJobs int64        `json:"totalJobs"`
	Page      int          `json:"page"`
	Limit     int          `json:"limit"`
	NumOfPage int          `json:"numOfPage"`
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize clamps page to at least 1 and limit to (0, MaxLimit].
func (p Pagination) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

func numOfPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// pageOffset returns the row offset of page, or false when the page lies past
// the last result.
func pageOffset(page, limit int, total int64) (int, bool) {
	if page < 1 || int64(page-1) >= int64(numOfPages(total, limit)) {
		return 0, false
	}
	return (page - 1) * limit, true
}

// ParseExperience parses an inclusive "min-max" range of years.
func ParseExperience(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("Experience must be a range like 2-5")
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, apperr.Validation("Experience must be a range like 2-5")
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, apperr.Validation("Experience must be a range like 2-5")
	}
	if lo < 0 || hi < lo {
		return 0, 0, apperr.Validation("Experience range %q is empty", raw)
	}
	return lo, hi, nil
}

const likeEscape = "!"

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// NormalizeSkills trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// filterScope applies the user supplied filters; visibility is applied separately.
func (f JobFilter) filterScope() (func(*gorm.DB) *gorm.DB, error) {
	var expLo, expHi int
	hasExp := strings.TrimSpace(f.Experience) != ""
	if hasExp {
		var err error
		if expLo, expHi, err = ParseExperience(f.Experience); err != nil {
			return nil, err
		}
	}
	types := lowerAll(NormalizeSkills(f.JobTypes))
	skills := lowerAll(NormalizeSkills(f.Skills))
	search := strings.TrimSpace(f.Search)
	location := strings.TrimSpace(f.Location)

	return func(db *gorm.DB) *gorm.DB {
		if location != "" {
			db = db.Where("LOWER(jobs.location) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(location))
		}
		if len(types) > 0 {
			db = db.Where("jobs.job_type IN ?", types)
		}
		if hasExp {
			db = db.Where("jobs.experience BETWEEN ? AND ?", expLo, expHi)
		}
		if len(skills) > 0 {
			db = db.Where("EXISTS (SELECT 1 FROM job_skills js WHERE js.job_id = jobs.id AND js.skill IN ?)", skills)
		}
		if f.IsActive != nil {
			db = db.Where("jobs.is_active = ?", *f.IsActive)
		}
		if search != "" {
			p := containsPattern(search)
			db = db.Where(
				"(LOWER(jobs.job_title) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR LOWER(jobs.location) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR LOWER(jobs.job_type) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR EXISTS (SELECT 1 FROM job_skills js WHERE js.job_id = jobs.id AND js.skill LIKE @p ESCAPE '"+likeEscape+"'))",
				map[string]any{"p": p},
			)
		}
		return db
	}, nil
}

// omitPassword keeps credential hashes out of preloaded owners.
func omitPassword(db *gorm.DB) *gorm.DB {
	return db.Omit("password")
}
