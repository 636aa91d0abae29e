package models

import "time"

// DailyApplicationLimit is the number of applications a user may file per local calendar day.
const DailyApplicationLimit = 10

// Credit transaction reasons
const (
	CreditReasonAdminAdjustment = "admin_adjustment"
	CreditReasonReferralBonus   = "referral_bonus"
)

// CreditTransaction is one entry in the banked-credit ledger.
type CreditTransaction struct {
	ID           string
	UserID       string
	Delta        int
	BalanceAfter int
	Reason       string
	ActorID      *string
	Note         *string
	CreatedAt    time.Time
}
