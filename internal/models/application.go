package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// ApplicationStatus is the stored lifecycle state of an application.
type ApplicationStatus string

const (
	StatusApplied      ApplicationStatus = "applied"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusAccepted     ApplicationStatus = "accepted"
	StatusRejected     ApplicationStatus = "rejected"
	StatusArchived     ApplicationStatus = "archived"
)

// ApplicationStatuses lists every known status in display order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusInterviewing,
	StatusAccepted,
	StatusRejected,
	StatusArchived,
}

// ParseApplicationStatus compares case-insensitively against the known statuses.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	normalized := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range ApplicationStatuses {
		if status == normalized {
			return status, true
		}
	}
	return normalized, false
}

// applicationTransitions holds the admin-driven moves between statuses.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:      {StatusInterviewing, StatusRejected, StatusArchived},
	StatusInterviewing: {StatusAccepted, StatusRejected, StatusArchived},
	StatusAccepted:     {StatusArchived},
	StatusRejected:     {StatusArchived},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Application struct {
	ID              string
	JobID           string
	UserID          string
	Status          ApplicationStatus
	AppliedAt       time.Time
	CoverLetter     *string
	ApplicationData ApplicationData
	WithdrawnAt     *time.Time
	UpdatedAt       time.Time
}

// IsWithdrawn reports whether the applicant withdrew the application.
func (a *Application) IsWithdrawn() bool {
	return a.WithdrawnAt != nil
}

// ApplicationData is the opaque form snapshot submitted with an application.
type ApplicationData map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (d *ApplicationData) Scan(value interface{}) error {
	if value == nil {
		*d = make(ApplicationData)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*d = ApplicationData(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (d ApplicationData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]interface{}(d))
}
