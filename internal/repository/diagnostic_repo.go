package repository

import (
	"database/sql"
	"fmt"
	"time"

	"masterypath/internal/database"
	"masterypath/internal/models"
)

// DiagnosticRepository handles database operations for diagnostic attempts
type DiagnosticRepository struct {
	db *database.DB
}

// NewDiagnosticRepository creates a new diagnostic repository
func NewDiagnosticRepository(db *database.DB) *DiagnosticRepository {
	return &DiagnosticRepository{db: db}
}

// CreateAttempt inserts a new diagnostic attempt
func (r *DiagnosticRepository) CreateAttempt(attempt *models.DiagnosticAttempt) error {
	query := `
		INSERT INTO diagnostic_attempts (id, student_id, subject_id, chapter_id, question_ids, time_limit_minutes, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		attempt.ID,
		attempt.StudentID,
		attempt.SubjectID,
		attempt.ChapterID,
		joinIDs(attempt.QuestionIDs),
		attempt.TimeLimitMinutes,
		attempt.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnostic attempt: %w", err)
	}
	return nil
}

// GetAttempt retrieves a diagnostic attempt by ID
func (r *DiagnosticRepository) GetAttempt(attemptID string) (*models.DiagnosticAttempt, error) {
	query := `
		SELECT id, student_id, subject_id, chapter_id, question_ids, time_limit_minutes,
		       started_at, submitted_at, score_percent, COALESCE(recommended_start_level, ''), timed_out
		FROM diagnostic_attempts
		WHERE id = ?
	`
	return r.scanAttempt(r.db.QueryRow(query, attemptID))
}

// GetOpenAttempt retrieves the unsubmitted attempt for a student and chapter,
// if one exists
func (r *DiagnosticRepository) GetOpenAttempt(studentID int64, chapterID string) (*models.DiagnosticAttempt, error) {
	query := `
		SELECT id, student_id, subject_id, chapter_id, question_ids, time_limit_minutes,
		       started_at, submitted_at, score_percent, COALESCE(recommended_start_level, ''), timed_out
		FROM diagnostic_attempts
		WHERE student_id = ? AND chapter_id = ? AND submitted_at IS NULL
	`
	return r.scanAttempt(r.db.QueryRow(query, studentID, chapterID))
}

// GetLatestSubmitted retrieves the most recent submitted attempt for a
// student and chapter
func (r *DiagnosticRepository) GetLatestSubmitted(studentID int64, chapterID string) (*models.DiagnosticAttempt, error) {
	query := `
		SELECT id, student_id, subject_id, chapter_id, question_ids, time_limit_minutes,
		       started_at, submitted_at, score_percent, COALESCE(recommended_start_level, ''), timed_out
		FROM diagnostic_attempts
		WHERE student_id = ? AND chapter_id = ? AND submitted_at IS NOT NULL
		ORDER BY submitted_at DESC
		LIMIT 1
	`
	return r.scanAttempt(r.db.QueryRow(query, studentID, chapterID))
}

func (r *DiagnosticRepository) scanAttempt(row *sql.Row) (*models.DiagnosticAttempt, error) {
	attempt := &models.DiagnosticAttempt{}
	var questionIDs string
	var submittedAt sql.NullTime
	var scorePercent sql.NullInt64
	var level string

	err := row.Scan(
		&attempt.ID,
		&attempt.StudentID,
		&attempt.SubjectID,
		&attempt.ChapterID,
		&questionIDs,
		&attempt.TimeLimitMinutes,
		&attempt.StartedAt,
		&submittedAt,
		&scorePercent,
		&level,
		&attempt.TimedOut,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostic attempt: %w", err)
	}

	attempt.QuestionIDs = splitIDs(questionIDs)
	if submittedAt.Valid {
		attempt.SubmittedAt = &submittedAt.Time
	}
	if scorePercent.Valid {
		score := int(scorePercent.Int64)
		attempt.ScorePercent = &score
	}
	attempt.RecommendedLevel = models.StartLevel(level)

	return attempt, nil
}

// SubmitAttempt finalizes an attempt with its score and recommendation.
// Attempts are immutable once submitted; the WHERE clause guards against
// double submission.
func (r *DiagnosticRepository) SubmitAttempt(attemptID string, submittedAt time.Time, scorePercent int, level models.StartLevel, timedOut bool) error {
	query := `
		UPDATE diagnostic_attempts
		SET submitted_at = ?, score_percent = ?, recommended_start_level = ?, timed_out = ?
		WHERE id = ? AND submitted_at IS NULL
	`
	result, err := r.db.Exec(query, submittedAt, scorePercent, string(level), timedOut, attemptID)
	if err != nil {
		return fmt.Errorf("failed to submit diagnostic attempt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check submission: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("diagnostic attempt %s already submitted", attemptID)
	}
	return nil
}

// SaveResponses records the graded responses of a submitted attempt
func (r *DiagnosticRepository) SaveResponses(attemptID string, responses []models.Response) error {
	query := `
		INSERT INTO diagnostic_responses (attempt_id, question_id, answer, is_correct)
		VALUES (?, ?, ?, ?)
	`
	for _, resp := range responses {
		var isCorrect interface{}
		if resp.IsCorrect != nil {
			isCorrect = *resp.IsCorrect
		}
		if _, err := r.db.Exec(query, attemptID, resp.QuestionID, resp.Answer, isCorrect); err != nil {
			return fmt.Errorf("failed to save response for question %s: %w", resp.QuestionID, err)
		}
	}
	return nil
}
