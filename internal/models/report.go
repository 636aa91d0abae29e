package models

import "time"

// Report reasons
const (
	ReportReasonGhostListing  = "ghost_listing"
	ReportReasonDuplicate     = "duplicate"
	ReportReasonFraudulent    = "fraudulent"
	ReportReasonMisleading    = "misleading"
	ReportReasonInappropriate = "inappropriate"
	ReportReasonOther         = "other"
)

// Report statuses
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
)

// Report comment bounds, counted in characters after normalisation.
const (
	ReportCommentMinLen = 5
	ReportCommentMaxLen = 500
)

type ReportedJob struct {
	ID         string
	UserID     string
	JobID      string
	Reason     string
	Comments   string
	Status     string
	CreatedAt  time.Time
	ReviewedAt *time.Time
	ReviewedBy *string
	AdminNotes *string
}
