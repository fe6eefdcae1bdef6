package services

import (
	"time"

	"gorm.io/gorm"
)

// Visibility narrows every read of the jobs table. The zero value hides
// expired and archived jobs; a caller has to opt in to see either.
type Visibility struct {
	IncludeExpired  bool
	IncludeArchived bool
}

// Everything bypasses both rules. Only owner and "my applications" views use it.
var Everything = Visibility{IncludeExpired: true, IncludeArchived: true}

// Scope applies the visibility rules as of now.
func (v Visibility) Scope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !v.IncludeExpired {
			db = db.Where("jobs.deadline > ?", now)
		}
		if !v.IncludeArchived {
			db = db.Where("jobs.is_archived = ?", false)
		}
		return db
	}
}
