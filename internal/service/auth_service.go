package service

import (
	"errors"
	"fmt"
	"time"

	"masterypath/internal/models"
	"masterypath/internal/repository"
	"masterypath/internal/security"
	"masterypath/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles authentication business logic
type AuthService struct {
	studentRepo     *repository.StudentRepository
	sessionDuration time.Duration
	jwtSecret       string
}

// NewAuthService creates a new auth service
func NewAuthService(studentRepo *repository.StudentRepository, sessionDuration time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		studentRepo:     studentRepo,
		sessionDuration: sessionDuration,
		jwtSecret:       jwtSecret,
	}
}

// Register creates a new student account
func (s *AuthService) Register(email, password, name string) (*models.Student, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.studentRepo.GetStudentByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing student: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student, err := s.studentRepo.CreateStudent(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return student, nil
}

// Login verifies credentials and creates a session
func (s *AuthService) Login(email, password string) (*models.Student, *models.AuthSession, error) {
	student, err := s.studentRepo.GetStudentByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil || !security.CheckPassword(student.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(student.ID)
	if err != nil {
		return nil, nil, err
	}
	return student, session, nil
}

func (s *AuthService) createSession(studentID int64) (*models.AuthSession, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.studentRepo.CreateSession(sessionID, studentID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks a session ID and returns the owning student
func (s *AuthService) ValidateSession(sessionID string) (*models.Student, error) {
	session, err := s.studentRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		// Best-effort cleanup of the stale row
		_ = s.studentRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	student, err := s.studentRepo.GetStudentByID(session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrSessionNotFound
	}
	return student, nil
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.studentRepo.DeleteSession(sessionID)
}

// IssueAPIToken creates a bearer token for API clients such as the watch
// monitor
func (s *AuthService) IssueAPIToken(studentID int64) (string, error) {
	token, err := security.GenerateToken(s.jwtSecret, studentID, s.sessionDuration)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// ValidateAPIToken checks a bearer token and returns the owning student
func (s *AuthService) ValidateAPIToken(token string) (*models.Student, error) {
	claims, err := security.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetStudentByID(claims.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrSessionNotFound
	}
	return student, nil
}

// CleanupExpiredSessions removes expired session rows
func (s *AuthService) CleanupExpiredSessions() error {
	return s.studentRepo.DeleteExpiredSessions()
}
