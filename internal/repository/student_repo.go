package repository

import (
	"database/sql"
	"fmt"
	"time"

	"masterypath/internal/database"
	"masterypath/internal/models"
)

// StudentRepository handles database operations for students and sessions
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateStudent inserts a new student into the database
func (r *StudentRepository) CreateStudent(email, passwordHash, name string) (*models.Student, error) {
	query := `
		INSERT INTO students (email, password_hash, name)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return &models.Student{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// GetStudentByEmail retrieves a student by email address
func (r *StudentRepository) GetStudentByEmail(email string) (*models.Student, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM students
		WHERE email = ?
	`
	student := &models.Student{}
	err := r.db.QueryRow(query, email).Scan(
		&student.ID,
		&student.Email,
		&student.PasswordHash,
		&student.Name,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// GetStudentByID retrieves a student by ID
func (r *StudentRepository) GetStudentByID(id int64) (*models.Student, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM students
		WHERE id = ?
	`
	student := &models.Student{}
	err := r.db.QueryRow(query, id).Scan(
		&student.ID,
		&student.Email,
		&student.PasswordHash,
		&student.Name,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// CreateSession creates a new session for a student
func (r *StudentRepository) CreateSession(sessionID string, studentID int64, expiresAt time.Time) (*models.AuthSession, error) {
	query := `
		INSERT INTO auth_sessions (id, student_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, sessionID, studentID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.AuthSession{
		ID:        sessionID,
		StudentID: studentID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *StudentRepository) GetSession(sessionID string) (*models.AuthSession, error) {
	query := `
		SELECT id, student_id, expires_at, created_at
		FROM auth_sessions
		WHERE id = ?
	`
	session := &models.AuthSession{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.StudentID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session
func (r *StudentRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM auth_sessions WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *StudentRepository) DeleteExpiredSessions() error {
	query := "DELETE FROM auth_sessions WHERE expires_at < ?"
	_, err := r.db.Exec(query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
