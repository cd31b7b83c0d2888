package models

import "time"

// DayTestAttempt is one administration of a day's gating test.
// Attempt numbers increase monotonically per day; an unsubmitted attempt is
// never auto-failed, only the explicit test-duration timer ends it client-side.
type DayTestAttempt struct {
	ID               string
	DayID            int64
	AttemptNumber    int
	QuestionIDs      []string
	PassRequirement  int // threshold this attempt must meet, inclusive
	TimeLimitMinutes int
	StartedAt        time.Time
	SubmittedAt      *time.Time
	Percentage       *int
	Passed           bool
	CooldownEndsAt   *time.Time
}

// IsSubmitted reports whether the attempt has been finalized
func (a *DayTestAttempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// CooldownActive reports whether this attempt's cooldown is still running
func (a *DayTestAttempt) CooldownActive(now time.Time) bool {
	return a.CooldownEndsAt != nil && a.CooldownEndsAt.After(now)
}

// DayTestResult is returned to the caller after a submission
type DayTestResult struct {
	Passed             bool
	Percentage         int
	NextDayUnlocked    bool
	CooldownEndsAt     *time.Time
	NewPassRequirement int
}
