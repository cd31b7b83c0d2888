package repository

import (
	"database/sql"
	"fmt"
	"time"

	"masterypath/internal/database"
	"masterypath/internal/models"
)

// WatchRepository handles database operations for watch sessions, attention
// challenges and comprehension quizzes
type WatchRepository struct {
	db *database.DB
}

// NewWatchRepository creates a new watch repository
func NewWatchRepository(db *database.DB) *WatchRepository {
	return &WatchRepository{db: db}
}

// CreateSession inserts a new watch session
func (r *WatchRepository) CreateSession(session *models.WatchSession) error {
	query := `
		INSERT INTO watch_sessions (id, video_id, student_id, started_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, session.ID, session.VideoID, session.StudentID, session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create watch session: %w", err)
	}
	return nil
}

const sessionColumns = `id, video_id, student_id, total_watch_seconds, last_position_seconds,
	last_verification_seconds, verifications_completed, questions_answered,
	quiz_triggered, is_completed, started_at, ended_at`

// GetSession retrieves a watch session by ID
func (r *WatchRepository) GetSession(sessionID string) (*models.WatchSession, error) {
	query := "SELECT " + sessionColumns + " FROM watch_sessions WHERE id = ?"
	return r.scanSession(r.db.QueryRow(query, sessionID))
}

// GetOpenSession retrieves the open session for a student and video, if any
func (r *WatchRepository) GetOpenSession(studentID, videoID int64) (*models.WatchSession, error) {
	query := "SELECT " + sessionColumns + " FROM watch_sessions WHERE student_id = ? AND video_id = ? AND ended_at IS NULL"
	return r.scanSession(r.db.QueryRow(query, studentID, videoID))
}

func (r *WatchRepository) scanSession(row *sql.Row) (*models.WatchSession, error) {
	s := &models.WatchSession{}
	var endedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.VideoID,
		&s.StudentID,
		&s.TotalWatchSeconds,
		&s.LastPositionSeconds,
		&s.LastVerificationSeconds,
		&s.VerificationsCompleted,
		&s.QuestionsAnswered,
		&s.QuizTriggered,
		&s.IsCompleted,
		&s.StartedAt,
		&endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch session: %w", err)
	}

	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, nil
}

// UpdateProgress advances a session's watch counters. Only open sessions are
// updated.
func (r *WatchRepository) UpdateProgress(sessionID string, totalWatchSeconds, lastPositionSeconds int) error {
	query := `
		UPDATE watch_sessions
		SET total_watch_seconds = ?, last_position_seconds = ?
		WHERE id = ? AND ended_at IS NULL
	`
	_, err := r.db.Exec(query, totalWatchSeconds, lastPositionSeconds, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update watch progress: %w", err)
	}
	return nil
}

// RecordVerification moves the verification checkpoint forward after a
// challenge is answered
func (r *WatchRepository) RecordVerification(sessionID string, atSeconds int) error {
	query := `
		UPDATE watch_sessions
		SET last_verification_seconds = ?, verifications_completed = verifications_completed + 1
		WHERE id = ? AND ended_at IS NULL
	`
	_, err := r.db.Exec(query, atSeconds, sessionID)
	if err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}
	return nil
}

// MarkQuizTriggered records that the session's comprehension quiz has fired
func (r *WatchRepository) MarkQuizTriggered(sessionID string) error {
	query := "UPDATE watch_sessions SET quiz_triggered = ? WHERE id = ?"
	_, err := r.db.Exec(query, true, sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark quiz triggered: %w", err)
	}
	return nil
}

// IncrementQuestionsAnswered bumps the session's answered-question counter
func (r *WatchRepository) IncrementQuestionsAnswered(sessionID string) error {
	query := "UPDATE watch_sessions SET questions_answered = questions_answered + 1 WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to increment questions answered: %w", err)
	}
	return nil
}

// EndSession closes a session. Idempotent: an already-ended session is left
// untouched.
func (r *WatchRepository) EndSession(sessionID string, endedAt time.Time, completed bool) error {
	query := `
		UPDATE watch_sessions
		SET ended_at = ?, is_completed = ?
		WHERE id = ? AND ended_at IS NULL
	`
	_, err := r.db.Exec(query, endedAt, completed, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end watch session: %w", err)
	}
	return nil
}

// CreateChallenge inserts a new attention challenge
func (r *WatchRepository) CreateChallenge(challenge *models.AttentionChallenge) error {
	query := `
		INSERT INTO attention_challenges (id, session_id, word, at_seconds, issued_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, challenge.ID, challenge.SessionID, challenge.Word, challenge.AtSeconds, challenge.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetOpenChallenge retrieves the unconsumed challenge for a session, if any
func (r *WatchRepository) GetOpenChallenge(sessionID string) (*models.AttentionChallenge, error) {
	query := `
		SELECT id, session_id, word, at_seconds, consumed, issued_at
		FROM attention_challenges
		WHERE session_id = ? AND consumed = ?
	`
	c := &models.AttentionChallenge{}
	err := r.db.QueryRow(query, sessionID, false).Scan(
		&c.ID, &c.SessionID, &c.Word, &c.AtSeconds, &c.Consumed, &c.IssuedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open challenge: %w", err)
	}
	return c, nil
}

// ConsumeChallenge marks a challenge as used. Single-use: returns false if
// it was already consumed.
func (r *WatchRepository) ConsumeChallenge(challengeID string) (bool, error) {
	query := "UPDATE attention_challenges SET consumed = ? WHERE id = ? AND consumed = ?"
	result, err := r.db.Exec(query, true, challengeID, false)
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check challenge consumption: %w", err)
	}
	return rows > 0, nil
}

// CreateQuiz inserts the session's comprehension quiz
func (r *WatchRepository) CreateQuiz(quiz *models.ComprehensionQuiz) error {
	query := `
		INSERT INTO comprehension_quizzes (session_id, question_ids, triggered_at_seconds, issued_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, quiz.SessionID, joinIDs(quiz.QuestionIDs), quiz.TriggeredAtSeconds, quiz.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetQuiz retrieves a session's comprehension quiz, if one was triggered
func (r *WatchRepository) GetQuiz(sessionID string) (*models.ComprehensionQuiz, error) {
	query := `
		SELECT session_id, question_ids, triggered_at_seconds, dismissed, issued_at
		FROM comprehension_quizzes
		WHERE session_id = ?
	`
	quiz := &models.ComprehensionQuiz{}
	var questionIDs string
	err := r.db.QueryRow(query, sessionID).Scan(
		&quiz.SessionID, &questionIDs, &quiz.TriggeredAtSeconds, &quiz.Dismissed, &quiz.IssuedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	quiz.QuestionIDs = splitIDs(questionIDs)
	return quiz, nil
}

// MarkQuizDismissed records that the student closed the quiz overlay
func (r *WatchRepository) MarkQuizDismissed(sessionID string) error {
	query := "UPDATE comprehension_quizzes SET dismissed = ? WHERE session_id = ?"
	_, err := r.db.Exec(query, true, sessionID)
	if err != nil {
		return fmt.Errorf("failed to dismiss quiz: %w", err)
	}
	return nil
}

// SaveQuizAnswer records one comprehension answer. The primary key rejects
// a second answer to the same question.
func (r *WatchRepository) SaveQuizAnswer(sessionID, questionID, answer string, isCorrect *bool) error {
	query := `
		INSERT INTO comprehension_answers (session_id, question_id, answer, is_correct)
		VALUES (?, ?, ?, ?)
	`
	var correct interface{}
	if isCorrect != nil {
		correct = *isCorrect
	}
	_, err := r.db.Exec(query, sessionID, questionID, answer, correct)
	if err != nil {
		return fmt.Errorf("failed to save quiz answer: %w", err)
	}
	return nil
}
