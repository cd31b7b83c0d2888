package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"masterypath/internal/models"
	"masterypath/internal/policy"
	"masterypath/internal/repository"
)

var (
	ErrPlanExists      = errors.New("a plan already exists for this chapter")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrNotYourPlan     = errors.New("plan belongs to another student")
	ErrInvalidLevel    = errors.New("invalid start level")
	ErrDiagnosticFirst = errors.New("take the chapter diagnostic before creating a plan")
)

// PlanService builds and reads mastery-gated study plans
type PlanService struct {
	planRepo           *repository.PlanRepository
	testRepo           *repository.TestRepository
	diagRepo           *repository.DiagnosticRepository
	studentRepo        *repository.StudentRepository
	email              *EmailService
	defaultPassPercent int
}

// NewPlanService creates a new plan service. defaultPassPercent seeds each
// day's pass requirement; zero means the built-in default.
func NewPlanService(planRepo *repository.PlanRepository, testRepo *repository.TestRepository, diagRepo *repository.DiagnosticRepository, studentRepo *repository.StudentRepository, email *EmailService, defaultPassPercent int) *PlanService {
	return &PlanService{
		planRepo:           planRepo,
		testRepo:           testRepo,
		diagRepo:           diagRepo,
		studentRepo:        studentRepo,
		email:              email,
		defaultPassPercent: defaultPassPercent,
	}
}

// CreatePlan builds the ordered day sequence for a chapter at the given
// level. Day 1 starts unlocked; every later day is locked until its
// predecessor's test is passed. One plan per (student, chapter).
// An empty level falls back to the student's diagnostic recommendation.
func (s *PlanService) CreatePlan(ctx context.Context, studentID int64, subjectID, chapterID string, level models.StartLevel) (*models.StudyPlan, error) {
	if level == "" {
		diag, err := s.diagRepo.GetLatestSubmitted(studentID, chapterID)
		if err != nil {
			return nil, err
		}
		if diag == nil {
			return nil, ErrDiagnosticFirst
		}
		level = diag.RecommendedLevel
	}
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	existing, err := s.planRepo.GetPlanForChapter(studentID, chapterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPlanExists
	}

	shape := policy.ShapeFor(level)
	plan := &models.StudyPlan{
		StudentID:  studentID,
		SubjectID:  subjectID,
		ChapterID:  chapterID,
		StartLevel: level,
		CreatedAt:  time.Now(),
		Days:       buildDays(shape, s.defaultPassPercent),
	}

	videos, err := s.planRepo.GetVideosForChapter(subjectID, chapterID)
	if err != nil {
		return nil, err
	}

	plan, err = s.planRepo.CreatePlan(plan, spreadVideos(videos, shape.Days))
	if err != nil {
		// A concurrent create may have won the unique-constraint race
		if existing, checkErr := s.planRepo.GetPlanForChapter(studentID, chapterID); checkErr == nil && existing != nil {
			return nil, ErrPlanExists
		}
		return nil, err
	}

	s.notifyPlanReady(ctx, studentID, chapterID, level, shape.Days)

	return plan, nil
}

// notifyPlanReady sends the plan-ready email. Failures are logged, never
// surfaced: notification is best-effort.
func (s *PlanService) notifyPlanReady(ctx context.Context, studentID int64, chapterID string, level models.StartLevel, days int) {
	student, err := s.studentRepo.GetStudentByID(studentID)
	if err != nil || student == nil {
		log.Printf("plan-ready email skipped: could not load student %d: %v", studentID, err)
		return
	}
	if err := s.email.SendPlanReadyEmail(ctx, student.Email, student.Name, chapterID, level, days); err != nil {
		log.Printf("plan-ready email failed for %s: %v", student.Email, err)
	}
}

// GetPlanState returns a plan with each day's gate counts and latest test
// facts populated, ready for status derivation
func (s *PlanService) GetPlanState(planID, studentID int64) (*models.StudyPlan, error) {
	plan, err := s.planRepo.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if plan.StudentID != studentID {
		return nil, ErrNotYourPlan
	}

	if err := s.attachTestFacts(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetPlanForChapter returns a student's plan for a chapter with test facts
// populated, or ErrPlanNotFound
func (s *PlanService) GetPlanForChapter(studentID int64, chapterID string) (*models.StudyPlan, error) {
	plan, err := s.planRepo.GetPlanForChapter(studentID, chapterID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	if err := s.attachTestFacts(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// attachTestFacts merges each day's latest test attempt into the day record
// so that cooldowns and in-flight tests show up in the derived status
func (s *PlanService) attachTestFacts(plan *models.StudyPlan) error {
	attempts, err := s.testRepo.GetLatestAttemptsForDays(plan.ID)
	if err != nil {
		return fmt.Errorf("failed to load test facts: %w", err)
	}

	for i := range plan.Days {
		day := &plan.Days[i]
		attempt, ok := attempts[day.ID]
		if !ok {
			continue
		}
		if !attempt.IsSubmitted() {
			day.TestInProgress = true
			continue
		}
		if !attempt.Passed {
			day.CooldownEndsAt = attempt.CooldownEndsAt
		}
	}
	return nil
}

// buildDays lays out the day records for a new plan. Day 1 starts unlocked;
// a non-positive passPercent falls back to the built-in default.
func buildDays(shape policy.PlanShape, passPercent int) []models.PlanDay {
	if passPercent <= 0 {
		passPercent = policy.DefaultPassPercent
	}
	days := make([]models.PlanDay, shape.Days)
	for i := range days {
		days[i] = models.PlanDay{
			DayNumber:        i + 1,
			EstimatedMinutes: shape.TargetMinutesPerDay,
			PassRequirement:  passPercent,
			Unlocked:         i == 0,
		}
	}
	return days
}

// spreadVideos distributes chapter videos across plan days round-robin so
// every day carries a similar load
func spreadVideos(videos []models.Video, days int) map[int][]int64 {
	dayVideos := make(map[int][]int64)
	if days <= 0 {
		return dayVideos
	}
	for i, v := range videos {
		dayNumber := i%days + 1
		dayVideos[dayNumber] = append(dayVideos[dayNumber], v.ID)
	}
	return dayVideos
}
