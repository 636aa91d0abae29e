// Package quota computes the per-user daily application allowance.
//
// The allowance is counted over the user's local calendar day: the window
// opens at local midnight in the user's timezone and closes at the next
// local midnight. The same window is used for display and for enforcement.
package quota

import (
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
)

// Status is the derived state of a user's daily allowance at a given instant.
type Status struct {
	Limit       int
	Used        int
	Remaining   int
	WindowStart time.Time
	ResetAt     time.Time
	ResetIn     time.Duration
	Location    *time.Location
}

// ResolveLocation returns the user's zone when it loads, else fallback, else time.Local.
func ResolveLocation(timezone string, fallback *time.Location) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	if fallback != nil {
		return fallback
	}
	return time.Local
}

// Window returns [start, end) of the local calendar day containing now.
func Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	// time.Date normalises d+1, so 23h and 25h DST days come out right.
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

// CountInWindow counts applications whose AppliedAt falls inside [start, end).
func CountInWindow(applications []*models.Application, start, end time.Time) int {
	n := 0
	for _, app := range applications {
		if app == nil {
			continue
		}
		if !app.AppliedAt.Before(start) && app.AppliedAt.Before(end) {
			n++
		}
	}
	return n
}

// Compute derives the remaining allowance for user at now.
// fallback is used when the user has no (valid) timezone configured.
func Compute(user *models.User, applications []*models.Application, now time.Time, fallback *time.Location) Status {
	tz := ""
	if user != nil {
		tz = user.Timezone
	}
	loc := ResolveLocation(tz, fallback)

	start, end := Window(now, loc)
	used := CountInWindow(applications, start, end)

	return Status{
		Limit:       models.DailyApplicationLimit,
		Used:        used,
		Remaining:   Remaining(used),
		WindowStart: start,
		ResetAt:     end,
		ResetIn:     end.Sub(now),
		Location:    loc,
	}
}

// Remaining clamps the allowance at zero.
func Remaining(used int) int {
	remaining := models.DailyApplicationLimit - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
