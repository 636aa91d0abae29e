package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Notification types
const (
	NotificationReferralUsed      = "referral_used"
	NotificationApplicationStatus = "application_status"
	NotificationReportReviewed    = "report_reviewed"
	NotificationFeedbackResponse  = "feedback_response"
	NotificationCreditAdjustment  = "credit_adjustment"
)

type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	Data      NotificationData
	Read      bool
	CreatedAt time.Time
}

// NotificationData carries type-specific references such as a job or application id.
type NotificationData map[string]string

// Scan implements sql.Scanner for JSONB
func (d *NotificationData) Scan(value interface{}) error {
	if value == nil {
		*d = make(NotificationData)
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

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*d = NotificationData(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(d))
}
