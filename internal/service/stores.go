package service

import (
	"time"

	"masterypath/internal/models"
)

// DayStore is the slice of the plan repository the day-scoped services
// consume. *repository.PlanRepository satisfies it.
type DayStore interface {
	GetDay(dayID int64) (*models.PlanDay, error)
	GetPlanByID(planID int64) (*models.StudyPlan, error)
	GetDayByNumber(planID int64, dayNumber int) (*models.PlanDay, error)
	HasVideo(dayID, videoID int64) (bool, error)
	GetDayVideos(dayID int64) ([]models.Video, []bool, error)
	GetVideo(videoID int64) (*models.Video, error)
	MarkVideoWatched(dayID, videoID int64) error
	MarkReadingComplete(dayID int64) error
	MarkPracticeComplete(dayID int64) error
	MarkPassed(dayID int64) error
	UnlockDay(dayID int64) error
	SetPassRequirement(dayID int64, percent int) error
}

// TestAttemptStore persists day-test attempts. *repository.TestRepository
// satisfies it.
type TestAttemptStore interface {
	CreateAttempt(attempt *models.DayTestAttempt) error
	GetAttempt(attemptID string) (*models.DayTestAttempt, error)
	GetOpenAttempt(dayID int64) (*models.DayTestAttempt, error)
	GetLatestAttempt(dayID int64) (*models.DayTestAttempt, error)
	CountFailures(dayID int64) (int, error)
	SubmitAttempt(attemptID string, submittedAt time.Time, percentage int, passed bool, cooldownEndsAt *time.Time, responses []models.Response) error
}

// WatchStore persists watch sessions, challenges and quizzes.
// *repository.WatchRepository satisfies it.
type WatchStore interface {
	CreateSession(session *models.WatchSession) error
	GetSession(sessionID string) (*models.WatchSession, error)
	GetOpenSession(studentID, videoID int64) (*models.WatchSession, error)
	UpdateProgress(sessionID string, totalWatchSeconds, lastPositionSeconds int) error
	RecordVerification(sessionID string, atSeconds int) error
	MarkQuizTriggered(sessionID string) error
	MarkQuizDismissed(sessionID string) error
	IncrementQuestionsAnswered(sessionID string) error
	EndSession(sessionID string, endedAt time.Time, completed bool) error
	CreateChallenge(challenge *models.AttentionChallenge) error
	GetOpenChallenge(sessionID string) (*models.AttentionChallenge, error)
	ConsumeChallenge(challengeID string) (bool, error)
	CreateQuiz(quiz *models.ComprehensionQuiz) error
	GetQuiz(sessionID string) (*models.ComprehensionQuiz, error)
	SaveQuizAnswer(sessionID, questionID, answer string, isCorrect *bool) error
}
