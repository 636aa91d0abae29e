package models

import "time"

// Feedback statuses
const (
	FeedbackStatusReceived = "received"
	FeedbackStatusResolved = "resolved"
)

// Feedback categories
const (
	FeedbackCategoryBug     = "bug"
	FeedbackCategoryFeature = "feature"
	FeedbackCategoryGeneral = "general"
	FeedbackCategoryOther   = "other"
)

type Feedback struct {
	ID            string
	UserID        *string // nil for anonymous feedback
	Rating        int
	Subject       string
	Category      string
	Comment       string
	Status        string
	AdminResponse *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
