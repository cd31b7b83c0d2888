package models

import "time"

// Video is a playable lesson video
type Video struct {
	ID              int64
	YoutubeVideoID  string
	Title           string
	DurationSeconds int
	SubjectID       string
	ChapterID       string
}

// completionToleranceSeconds is how close to the end a position must be
// for the session to count as a complete watch.
const completionToleranceSeconds = 5

// WatchSession tracks one viewing of a video; attention challenges and the
// comprehension quiz are scheduled against it. One open session per
// (student, video) at a time.
type WatchSession struct {
	ID                      string
	VideoID                 int64
	StudentID               int64
	TotalWatchSeconds       int
	LastPositionSeconds     int
	LastVerificationSeconds int
	VerificationsCompleted  int
	QuestionsAnswered       int
	QuizTriggered           bool
	IsCompleted             bool
	StartedAt               time.Time
	EndedAt                 *time.Time
}

// IsOpen reports whether the session is still accepting progress updates
func (s *WatchSession) IsOpen() bool {
	return s.EndedAt == nil
}

// ChallengeDue reports whether enough video time has elapsed since the last
// verification. Due-ness is measured in playback position, not wall clock,
// so paused time never triggers a challenge.
func (s *WatchSession) ChallengeDue(intervalSeconds int) bool {
	return s.LastPositionSeconds-s.LastVerificationSeconds >= intervalSeconds
}

// QuizDue reports whether cumulative watch time has crossed the quiz
// threshold for the first time.
func (s *WatchSession) QuizDue(thresholdSeconds int) bool {
	return !s.QuizTriggered && s.TotalWatchSeconds >= thresholdSeconds
}

// ReachedEnd reports whether the position is close enough to the duration
// to count the video as fully watched.
func (s *WatchSession) ReachedEnd(durationSeconds int) bool {
	return s.LastPositionSeconds >= durationSeconds-completionToleranceSeconds
}

// AttentionChallenge is a single-use word prompt proving the viewer is present
type AttentionChallenge struct {
	ID        string
	SessionID string
	Word      string
	AtSeconds int
	Consumed  bool
	IssuedAt  time.Time
}

// ComprehensionQuiz is the once-per-session question set triggered at the
// watch-time threshold. It is diagnostic, not gating.
type ComprehensionQuiz struct {
	SessionID          string
	QuestionIDs        []string
	TriggeredAtSeconds int
	Dismissed          bool
	IssuedAt           time.Time
}
