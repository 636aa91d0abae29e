package models

import "time"

// Job types
const (
	JobTypeFullTime   = "full_time"
	JobTypePartTime   = "part_time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeRemote     = "remote"
)

type Job struct {
	ID           string
	Title        string
	Company      string
	Location     string
	Salary       string
	Description  string
	Requirements []string
	Benefits     []string // optional
	Type         string
	IsActive     bool // false once the listing is archived
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AcceptsApplications reports whether new applications may be filed against the job.
func (j *Job) AcceptsApplications() bool {
	return j.IsActive && j.Published
}

// JobFilter narrows job listings.
type JobFilter struct {
	Query         string
	IncludeHidden bool // admins only: include archived and unpublished listings
	Limit         int
	Offset        int
}
