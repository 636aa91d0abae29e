package models

import "time"

// ReferralBonusCredits is awarded to both referrer and referee when a code is redeemed.
const ReferralBonusCredits = 5

type ReferralCode struct {
	ID         string
	UserID     string
	Code       string
	UsageCount int
	CreatedAt  time.Time
}
