package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"masterypath/internal/grading"
	"masterypath/internal/models"
	"masterypath/internal/policy"
	"masterypath/internal/questionbank"
	"masterypath/internal/repository"
)

var (
	ErrDiagnosticInProgress = errors.New("a diagnostic attempt is already open for this chapter")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAlreadySubmitted     = errors.New("attempt already submitted")
	ErrNotYourAttempt       = errors.New("attempt belongs to another student")
	ErrNoQuestions          = errors.New("no questions available for this chapter")
)

// DiagnosticService runs the one-shot chapter assessment that places a
// student at a start level
type DiagnosticService struct {
	diagRepo *repository.DiagnosticRepository
	bank     questionbank.Bank
}

// NewDiagnosticService creates a new diagnostic service
func NewDiagnosticService(diagRepo *repository.DiagnosticRepository, bank questionbank.Bank) *DiagnosticService {
	return &DiagnosticService{
		diagRepo: diagRepo,
		bank:     bank,
	}
}

// StartDiagnostic opens a new diagnostic attempt for a chapter. At most one
// open attempt per (student, chapter); a second start fails.
// Returns the attempt and its questions with answer keys stripped.
func (s *DiagnosticService) StartDiagnostic(ctx context.Context, studentID int64, subjectID, chapterID string) (*models.DiagnosticAttempt, []models.Question, error) {
	open, err := s.diagRepo.GetOpenAttempt(studentID, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if open != nil {
		return nil, nil, ErrDiagnosticInProgress
	}

	questions, err := s.bank.FetchSet(ctx, questionbank.SetDiagnostic, subjectID, chapterID, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}

	attempt := &models.DiagnosticAttempt{
		ID:               uuid.New().String(),
		StudentID:        studentID,
		SubjectID:        subjectID,
		ChapterID:        chapterID,
		QuestionIDs:      questionIDs(questions),
		TimeLimitMinutes: policy.DiagnosticTimeLimitMinutes,
		StartedAt:        time.Now(),
	}

	if err := s.diagRepo.CreateAttempt(attempt); err != nil {
		// A concurrent start may have won the unique-index race
		if open, checkErr := s.diagRepo.GetOpenAttempt(studentID, chapterID); checkErr == nil && open != nil {
			return nil, nil, ErrDiagnosticInProgress
		}
		return nil, nil, err
	}

	return attempt, sanitize(questions), nil
}

// GetAttempt returns a student's diagnostic attempt
func (s *DiagnosticService) GetAttempt(attemptID string, studentID int64) (*models.DiagnosticAttempt, error) {
	attempt, err := s.diagRepo.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotYourAttempt
	}
	return attempt, nil
}

// SubmitDiagnostic grades an attempt and finalizes it. Submissions after the
// time limit are still accepted but flagged timed out. A submitted attempt is
// immutable; a second submission fails with no side effects.
func (s *DiagnosticService) SubmitDiagnostic(ctx context.Context, attemptID string, studentID int64, answers map[string]string) (*models.DiagnosticResult, error) {
	attempt, err := s.GetAttempt(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.IsSubmitted() {
		return nil, ErrAlreadySubmitted
	}

	questions, err := s.bank.FetchQuestions(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, err
	}

	result, err := grading.Score(questions, answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	timedOut := now.Sub(attempt.StartedAt) > time.Duration(attempt.TimeLimitMinutes)*time.Minute
	level := policy.RecommendLevel(result.Percent)

	if err := s.diagRepo.SubmitAttempt(attemptID, now, result.Percent, level, timedOut); err != nil {
		return nil, err
	}
	if err := s.diagRepo.SaveResponses(attemptID, buildResponses(questions, answers, result)); err != nil {
		return nil, fmt.Errorf("failed to record responses: %w", err)
	}

	return &models.DiagnosticResult{
		ScorePercent:     result.Percent,
		RecommendedLevel: level,
		WeakTopics:       weakTopics(questions, result),
		TimedOut:         timedOut,
	}, nil
}

// weakTopics collects the topics of auto-gradeable questions answered wrong,
// deduplicated in question order
func weakTopics(questions []models.Question, result grading.Result) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, q := range questions {
		if q.Topic == "" {
			continue
		}
		correct := result.PerQuestion[q.ID]
		if correct == nil || *correct {
			continue
		}
		if !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	return topics
}

// buildResponses pairs submitted answers with their grading outcome for
// persistence. Unanswered questions are stored with an empty answer.
func buildResponses(questions []models.Question, answers map[string]string, result grading.Result) []models.Response {
	responses := make([]models.Response, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, models.Response{
			QuestionID: q.ID,
			Answer:     answers[q.ID],
			IsCorrect:  result.PerQuestion[q.ID],
		})
	}
	return responses
}

func questionIDs(questions []models.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func sanitize(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		out[i] = q.Sanitized()
	}
	return out
}
