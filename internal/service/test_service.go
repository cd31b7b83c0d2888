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
)

var (
	ErrContentIncomplete = errors.New("finish the day's videos, reading and practice before the test")
	ErrDayPassed         = errors.New("day already passed")
)

// CooldownActiveError reports how long until the next test attempt is
// allowed
type CooldownActiveError struct {
	RemainingSeconds int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %d seconds remaining", e.RemainingSeconds)
}

// TestService runs the gating test at the end of each plan day
type TestService struct {
	testRepo    TestAttemptStore
	planRepo    DayStore
	bank        questionbank.Bank
	passCeiling int
}

// NewTestService creates a new test service. passCeiling caps the raised
// pass requirement after failures; zero means the built-in ceiling.
func NewTestService(testRepo TestAttemptStore, planRepo DayStore, bank questionbank.Bank, passCeiling int) *TestService {
	return &TestService{
		testRepo:    testRepo,
		planRepo:    planRepo,
		bank:        bank,
		passCeiling: passCeiling,
	}
}

func (s *TestService) getOwnedDay(dayID, studentID int64) (*models.PlanDay, *models.StudyPlan, error) {
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
	return day, plan, nil
}

// StartDayTest opens a test attempt for a day, or returns the still-open
// attempt if one exists. The content gates are re-checked server-side; a
// live cooldown blocks the start.
func (s *TestService) StartDayTest(ctx context.Context, dayID, studentID int64) (*models.DayTestAttempt, []models.Question, error) {
	day, plan, err := s.getOwnedDay(dayID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if !day.Unlocked {
		return nil, nil, ErrDayLocked
	}
	if day.Passed {
		return nil, nil, ErrDayPassed
	}

	// Resume an in-flight attempt rather than opening a second one
	if open, err := s.testRepo.GetOpenAttempt(dayID); err != nil {
		return nil, nil, err
	} else if open != nil {
		questions, err := s.bank.FetchQuestions(ctx, open.QuestionIDs)
		if err != nil {
			return nil, nil, err
		}
		return open, sanitize(questions), nil
	}

	now := time.Now()
	latest, err := s.testRepo.GetLatestAttempt(dayID)
	if err != nil {
		return nil, nil, err
	}
	if latest != nil && latest.CooldownActive(now) {
		remaining := int(latest.CooldownEndsAt.Sub(now).Seconds() + 0.5)
		return nil, nil, &CooldownActiveError{RemainingSeconds: remaining}
	}

	if !day.ContentComplete() {
		return nil, nil, ErrContentIncomplete
	}

	questions, err := s.bank.FetchSet(ctx, questionbank.SetDayTest, plan.SubjectID, plan.ChapterID, day.DayNumber)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}

	attemptNumber := 1
	if latest != nil {
		attemptNumber = latest.AttemptNumber + 1
	}

	attempt := &models.DayTestAttempt{
		ID:               uuid.New().String(),
		DayID:            dayID,
		AttemptNumber:    attemptNumber,
		QuestionIDs:      questionIDs(questions),
		PassRequirement:  day.PassRequirement,
		TimeLimitMinutes: policy.DayTestTimeLimitMinutes,
		StartedAt:        now,
	}

	if err := s.testRepo.CreateAttempt(attempt); err != nil {
		// A concurrent start may have won the unique-index race
		if open, checkErr := s.testRepo.GetOpenAttempt(dayID); checkErr == nil && open != nil {
			questions, qErr := s.bank.FetchQuestions(ctx, open.QuestionIDs)
			if qErr != nil {
				return nil, nil, qErr
			}
			return open, sanitize(questions), nil
		}
		return nil, nil, err
	}

	return attempt, sanitize(questions), nil
}

// SubmitDayTest grades an attempt against the threshold that was in force
// when it started. A pass marks the day and unlocks the next one; a fail
// raises the day's requirement and starts a cooldown. One submission per
// attempt, no side effects on a repeat.
func (s *TestService) SubmitDayTest(ctx context.Context, attemptID string, studentID int64, answers map[string]string) (*models.DayTestResult, error) {
	attempt, err := s.testRepo.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}

	day, plan, err := s.getOwnedDay(attempt.DayID, studentID)
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

	scored, err := grading.Score(questions, answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	passed := scored.Percent >= attempt.PassRequirement
	responses := buildResponses(questions, answers, scored)

	testResult := &models.DayTestResult{
		Passed:             passed,
		Percentage:         scored.Percent,
		NewPassRequirement: day.PassRequirement,
	}

	if passed {
		// The attempt and its responses land atomically before any day
		// state changes, so a crash cannot unlock a day without a record
		// of the attempt that earned it.
		if err := s.testRepo.SubmitAttempt(attemptID, now, scored.Percent, true, nil, responses); err != nil {
			return nil, err
		}
		if err := s.planRepo.MarkPassed(day.ID); err != nil {
			return nil, err
		}

		next, err := s.planRepo.GetDayByNumber(plan.ID, day.DayNumber+1)
		if err != nil {
			return nil, err
		}
		if next != nil {
			if err := s.planRepo.UnlockDay(next.ID); err != nil {
				return nil, err
			}
			testResult.NextDayUnlocked = true
		}
	} else {
		previousFailures, err := s.testRepo.CountFailures(day.ID)
		if err != nil {
			return nil, err
		}
		cooldownEnds := now.Add(policy.CooldownDuration(previousFailures + 1))

		if err := s.testRepo.SubmitAttempt(attemptID, now, scored.Percent, false, &cooldownEnds, responses); err != nil {
			return nil, err
		}

		newRequirement := policy.NextPassRequirement(day.PassRequirement, s.passCeiling)
		if err := s.planRepo.SetPassRequirement(day.ID, newRequirement); err != nil {
			return nil, err
		}

		testResult.CooldownEndsAt = &cooldownEnds
		testResult.NewPassRequirement = newRequirement
	}

	return testResult, nil
}
