package repository

import (
	"database/sql"
	"fmt"
	"time"

	"masterypath/internal/database"
	"masterypath/internal/models"
)

// TestRepository handles database operations for day test attempts
type TestRepository struct {
	db *database.DB
}

// NewTestRepository creates a new test repository
func NewTestRepository(db *database.DB) *TestRepository {
	return &TestRepository{db: db}
}

// CreateAttempt inserts a new day test attempt
func (r *TestRepository) CreateAttempt(attempt *models.DayTestAttempt) error {
	query := `
		INSERT INTO day_test_attempts (id, day_id, attempt_number, question_ids, pass_requirement, time_limit_minutes, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		attempt.ID,
		attempt.DayID,
		attempt.AttemptNumber,
		joinIDs(attempt.QuestionIDs),
		attempt.PassRequirement,
		attempt.TimeLimitMinutes,
		attempt.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test attempt: %w", err)
	}
	return nil
}

const attemptColumns = `id, day_id, attempt_number, question_ids, pass_requirement, time_limit_minutes,
	started_at, submitted_at, percentage, passed, cooldown_ends_at`

// GetAttempt retrieves a test attempt by ID
func (r *TestRepository) GetAttempt(attemptID string) (*models.DayTestAttempt, error) {
	query := "SELECT " + attemptColumns + " FROM day_test_attempts WHERE id = ?"
	return r.scanAttempt(r.db.QueryRow(query, attemptID))
}

// GetOpenAttempt retrieves the unsubmitted attempt for a day, if any
func (r *TestRepository) GetOpenAttempt(dayID int64) (*models.DayTestAttempt, error) {
	query := "SELECT " + attemptColumns + " FROM day_test_attempts WHERE day_id = ? AND submitted_at IS NULL"
	return r.scanAttempt(r.db.QueryRow(query, dayID))
}

// GetLatestAttempt retrieves the most recent attempt for a day, submitted
// or not
func (r *TestRepository) GetLatestAttempt(dayID int64) (*models.DayTestAttempt, error) {
	query := "SELECT " + attemptColumns + ` FROM day_test_attempts
		WHERE day_id = ?
		ORDER BY attempt_number DESC
		LIMIT 1`
	return r.scanAttempt(r.db.QueryRow(query, dayID))
}

// CountFailures counts submitted, failed attempts for a day
func (r *TestRepository) CountFailures(dayID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM day_test_attempts WHERE day_id = ? AND submitted_at IS NOT NULL AND passed = ?"
	if err := r.db.QueryRow(query, dayID, false).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failures: %w", err)
	}
	return count, nil
}

// GetLatestAttemptsForDays retrieves the most recent attempt per day for a
// plan, keyed by day ID
func (r *TestRepository) GetLatestAttemptsForDays(planID int64) (map[int64]*models.DayTestAttempt, error) {
	query := `
		SELECT a.id, a.day_id, a.attempt_number, a.question_ids, a.pass_requirement, a.time_limit_minutes,
		       a.started_at, a.submitted_at, a.percentage, a.passed, a.cooldown_ends_at
		FROM day_test_attempts a
		JOIN plan_days d ON d.id = a.day_id
		WHERE d.plan_id = ?
		  AND a.attempt_number = (SELECT MAX(b.attempt_number) FROM day_test_attempts b WHERE b.day_id = a.day_id)
	`
	rows, err := r.db.Query(query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attempts: %w", err)
	}
	defer rows.Close()

	attempts := make(map[int64]*models.DayTestAttempt)
	for rows.Next() {
		attempt, err := scanAttemptRow(rows)
		if err != nil {
			return nil, err
		}
		attempts[attempt.DayID] = attempt
	}
	return attempts, rows.Err()
}

// SubmitAttempt finalizes an attempt and records its graded responses in one
// transaction. The WHERE clause guards against double submission.
func (r *TestRepository) SubmitAttempt(attemptID string, submittedAt time.Time, percentage int, passed bool, cooldownEndsAt *time.Time, responses []models.Response) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin submission: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE day_test_attempts
		SET submitted_at = ?, percentage = ?, passed = ?, cooldown_ends_at = ?
		WHERE id = ? AND submitted_at IS NULL
	`
	var cooldown interface{}
	if cooldownEndsAt != nil {
		cooldown = *cooldownEndsAt
	}
	result, err := tx.Exec(query, submittedAt, percentage, passed, cooldown, attemptID)
	if err != nil {
		return fmt.Errorf("failed to submit test attempt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check submission: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("test attempt %s already submitted", attemptID)
	}

	insert := `
		INSERT INTO day_test_responses (attempt_id, question_id, answer, is_correct)
		VALUES (?, ?, ?, ?)
	`
	for _, resp := range responses {
		var isCorrect interface{}
		if resp.IsCorrect != nil {
			isCorrect = *resp.IsCorrect
		}
		if _, err := tx.Exec(insert, attemptID, resp.QuestionID, resp.Answer, isCorrect); err != nil {
			return fmt.Errorf("failed to save response for question %s: %w", resp.QuestionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TestRepository) scanAttempt(row *sql.Row) (*models.DayTestAttempt, error) {
	attempt, err := scanAttemptRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return attempt, err
}

func scanAttemptRow(row rowScanner) (*models.DayTestAttempt, error) {
	attempt := &models.DayTestAttempt{}
	var questionIDs string
	var submittedAt, cooldownEndsAt sql.NullTime
	var percentage sql.NullInt64

	err := row.Scan(
		&attempt.ID,
		&attempt.DayID,
		&attempt.AttemptNumber,
		&questionIDs,
		&attempt.PassRequirement,
		&attempt.TimeLimitMinutes,
		&attempt.StartedAt,
		&submittedAt,
		&percentage,
		&attempt.Passed,
		&cooldownEndsAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan test attempt: %w", err)
	}

	attempt.QuestionIDs = splitIDs(questionIDs)
	if submittedAt.Valid {
		attempt.SubmittedAt = &submittedAt.Time
	}
	if percentage.Valid {
		p := int(percentage.Int64)
		attempt.Percentage = &p
	}
	if cooldownEndsAt.Valid {
		attempt.CooldownEndsAt = &cooldownEndsAt.Time
	}
	return attempt, nil
}
