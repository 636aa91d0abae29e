package models

import (
	"time"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	Role            string // "user" or "admin"
	Timezone        string // IANA name, empty means fall back to the caller's zone
	LastCreditReset *time.Time
	BankedCredits   int
	ReferralCode    *string // joined from referral_codes
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
