package models

import "time"

// StartLevel is the plan difficulty recommended by the diagnostic
type StartLevel string

const (
	LevelFoundational StartLevel = "foundational"
	LevelStandard     StartLevel = "standard"
	LevelAccelerated  StartLevel = "accelerated"
)

// IsValid checks that the level is one of the known values
func (l StartLevel) IsValid() bool {
	switch l {
	case LevelFoundational, LevelStandard, LevelAccelerated:
		return true
	default:
		return false
	}
}

// DiagnosticAttempt is the one-shot assessment that seeds a learner's plan depth.
// Immutable after submission; at most one open attempt per (student, chapter).
type DiagnosticAttempt struct {
	ID               string
	StudentID        int64
	SubjectID        string
	ChapterID        string
	QuestionIDs      []string
	TimeLimitMinutes int
	StartedAt        time.Time
	SubmittedAt      *time.Time
	ScorePercent     *int
	RecommendedLevel StartLevel
	TimedOut         bool
}

// IsSubmitted reports whether the attempt has been finalized
func (a *DiagnosticAttempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// DiagnosticResult is returned to the caller after submission
type DiagnosticResult struct {
	ScorePercent     int
	RecommendedLevel StartLevel
	WeakTopics       []string
	TimedOut         bool
}
