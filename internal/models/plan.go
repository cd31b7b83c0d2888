package models

import "time"

// DayStatus is the lifecycle state of a plan day, derived from stored facts
type DayStatus string

const (
	DayLocked          DayStatus = "LOCKED"
	DayInProgress      DayStatus = "IN_PROGRESS"
	DayContentComplete DayStatus = "CONTENT_COMPLETE"
	DayTestInProgress  DayStatus = "TEST_IN_PROGRESS"
	DayPassed          DayStatus = "PASSED"
	DayFailedCooldown  DayStatus = "FAILED_COOLDOWN"
)

// StudyPlan owns the ordered day sequence for a (student, subject, chapter) triple
type StudyPlan struct {
	ID         int64
	StudentID  int64
	SubjectID  string
	ChapterID  string
	StartLevel StartLevel
	CreatedAt  time.Time
	Days       []PlanDay
}

// CurrentDayNumber returns the lowest unlocked day that has not yet passed,
// or the last day when the whole plan is complete.
func (p *StudyPlan) CurrentDayNumber() int {
	for _, d := range p.Days {
		if d.Unlocked && !d.Passed {
			return d.DayNumber
		}
	}
	if n := len(p.Days); n > 0 {
		return p.Days[n-1].DayNumber
	}
	return 0
}

// PlanDay is a single mastery-gated day. Only the gate facts are persisted;
// the status is always recomputed from them so the flags cannot drift.
type PlanDay struct {
	ID               int64
	PlanID           int64
	DayNumber        int
	EstimatedMinutes int

	// Gates
	VideosTotal       int
	VideosWatched     int
	ReadingCompleted  bool
	PracticeCompleted bool

	// Test facts
	PassRequirement int // percent threshold in force for the next attempt
	Unlocked        bool
	Passed          bool

	// Populated from the latest test attempt
	CooldownEndsAt *time.Time
	TestInProgress bool
}

// ContentComplete reports whether all three gates are satisfied
func (d *PlanDay) ContentComplete() bool {
	return d.VideosWatched >= d.VideosTotal &&
		d.ReadingCompleted &&
		d.PracticeCompleted
}

// CooldownRemaining returns the seconds left in an active cooldown, or 0
func (d *PlanDay) CooldownRemaining(now time.Time) int {
	if d.CooldownEndsAt == nil || !d.CooldownEndsAt.After(now) {
		return 0
	}
	return int(d.CooldownEndsAt.Sub(now).Seconds() + 0.5)
}

// Status derives the day's lifecycle state from the stored facts
func (d *PlanDay) Status(now time.Time) DayStatus {
	switch {
	case d.Passed:
		return DayPassed
	case !d.Unlocked:
		return DayLocked
	case d.TestInProgress:
		return DayTestInProgress
	case d.CooldownRemaining(now) > 0:
		return DayFailedCooldown
	case d.ContentComplete():
		return DayContentComplete
	default:
		return DayInProgress
	}
}
