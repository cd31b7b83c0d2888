package service

import (
	"context"
	"errors"
	"fmt"

	"masterypath/internal/grading"
	"masterypath/internal/models"
	"masterypath/internal/questionbank"
)

var (
	ErrDayNotFound   = errors.New("plan day not found")
	ErrDayLocked     = errors.New("day is locked")
	ErrVideoNotInDay = errors.New("video is not part of this day")
)

// PracticeResult reports the outcome of a practice submission
type PracticeResult struct {
	AllCorrect        bool
	Correct           int
	Total             int
	PracticeCompleted bool
}

// ContentService tracks the three completion gates of a plan day
type ContentService struct {
	planRepo DayStore
	bank     questionbank.Bank
}

// NewContentService creates a new content service
func NewContentService(planRepo DayStore, bank questionbank.Bank) *ContentService {
	return &ContentService{
		planRepo: planRepo,
		bank:     bank,
	}
}

// getOwnedDay loads a day and checks it belongs to the student and is
// unlocked
func (s *ContentService) getOwnedDay(dayID, studentID int64) (*models.PlanDay, *models.StudyPlan, error) {
	day, err := s.planRepo.GetDay(dayID)
	if err != nil {
		return nil, nil, err
	}
	if day == nil {
		return nil, nil, ErrDayNotFound
	}

	plan, err := s.planRepo.GetPlanByID(day.PlanID)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil || plan.StudentID != studentID {
		return nil, nil, ErrDayNotFound
	}

	if !day.Unlocked {
		return nil, nil, ErrDayLocked
	}
	return day, plan, nil
}

// MarkVideoWatched records a day video as watched. Idempotent: repeating
// is a no-op success.
func (s *ContentService) MarkVideoWatched(dayID, videoID, studentID int64) error {
	if _, _, err := s.getOwnedDay(dayID, studentID); err != nil {
		return err
	}

	attached, err := s.planRepo.HasVideo(dayID, videoID)
	if err != nil {
		return err
	}
	if !attached {
		return ErrVideoNotInDay
	}

	return s.planRepo.MarkVideoWatched(dayID, videoID)
}

// GetDayVideos returns a day's videos in order alongside their watched flags
func (s *ContentService) GetDayVideos(dayID, studentID int64) ([]models.Video, []bool, error) {
	if _, _, err := s.getOwnedDay(dayID, studentID); err != nil {
		return nil, nil, err
	}
	return s.planRepo.GetDayVideos(dayID)
}

// MarkReadingComplete records the reading gate as satisfied. Idempotent.
func (s *ContentService) MarkReadingComplete(dayID, studentID int64) error {
	if _, _, err := s.getOwnedDay(dayID, studentID); err != nil {
		return err
	}
	return s.planRepo.MarkReadingComplete(dayID)
}

// GetPracticeSet returns the day's practice questions with answer keys
// stripped
func (s *ContentService) GetPracticeSet(ctx context.Context, dayID, studentID int64) ([]models.Question, error) {
	day, plan, err := s.getOwnedDay(dayID, studentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.bank.FetchSet(ctx, questionbank.SetPractice, plan.SubjectID, plan.ChapterID, day.DayNumber)
	if err != nil {
		return nil, err
	}
	return sanitize(questions), nil
}

// SubmitPractice grades a practice submission. The gate closes only when
// every auto-gradeable question is correct; a partial result changes
// nothing and the student may retry.
func (s *ContentService) SubmitPractice(ctx context.Context, dayID, studentID int64, answers map[string]string) (*PracticeResult, error) {
	day, plan, err := s.getOwnedDay(dayID, studentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.bank.FetchSet(ctx, questionbank.SetPractice, plan.SubjectID, plan.ChapterID, day.DayNumber)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	result, err := grading.Score(questions, answers)
	if err != nil {
		return nil, err
	}

	allCorrect := result.Correct == result.Gradeable
	if allCorrect && !day.PracticeCompleted {
		if err := s.planRepo.MarkPracticeComplete(dayID); err != nil {
			return nil, fmt.Errorf("failed to close practice gate: %w", err)
		}
	}

	return &PracticeResult{
		AllCorrect:        allCorrect,
		Correct:           result.Correct,
		Total:             result.Gradeable,
		PracticeCompleted: allCorrect || day.PracticeCompleted,
	}, nil
}
