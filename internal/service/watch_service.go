package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"masterypath/internal/grading"
	"masterypath/internal/models"
	"masterypath/internal/questionbank"
	"masterypath/internal/validation"
)

var (
	ErrWatchInProgress      = errors.New("a watch session is already open for this video")
	ErrWatchSessionNotFound = errors.New("watch session not found")
	ErrWatchSessionClosed   = errors.New("watch session has ended")
	ErrVideoNotFound        = errors.New("video not found")
	ErrChallengeNotFound    = errors.New("no open attention challenge")
	ErrQuizNotTriggered     = errors.New("comprehension quiz has not triggered")
	ErrQuestionNotInQuiz    = errors.New("question is not part of this quiz")
)

// ProgressState tells the player what is due after a progress update.
// When both are due the challenge goes first.
type ProgressState struct {
	ChallengeDue bool
	QuizDue      bool
}

// WatchService owns watch sessions, attention challenges and the
// comprehension quiz
type WatchService struct {
	watchRepo            WatchStore
	planRepo             DayStore
	bank                 questionbank.Bank
	verificationInterval int // seconds of video time between challenges
	comprehensionTrigger int // cumulative watch seconds before the quiz
}

// NewWatchService creates a new watch service
func NewWatchService(watchRepo WatchStore, planRepo DayStore, bank questionbank.Bank, verificationIntervalSeconds, comprehensionTriggerSeconds int) *WatchService {
	return &WatchService{
		watchRepo:            watchRepo,
		planRepo:             planRepo,
		bank:                 bank,
		verificationInterval: verificationIntervalSeconds,
		comprehensionTrigger: comprehensionTriggerSeconds,
	}
}

// StartWatch opens a watch session for a video. One open session per
// (student, video); a concurrent duplicate start loses.
func (s *WatchService) StartWatch(studentID, videoID int64) (*models.WatchSession, error) {
	video, err := s.planRepo.GetVideo(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}

	open, err := s.watchRepo.GetOpenSession(studentID, videoID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrWatchInProgress
	}

	session := &models.WatchSession{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		StudentID: studentID,
		StartedAt: time.Now(),
	}
	if err := s.watchRepo.CreateSession(session); err != nil {
		// A concurrent start may have won the unique-index race
		if open, checkErr := s.watchRepo.GetOpenSession(studentID, videoID); checkErr == nil && open != nil {
			return nil, ErrWatchInProgress
		}
		return nil, err
	}
	return session, nil
}

func (s *WatchService) getOpenSession(sessionID string, studentID int64) (*models.WatchSession, error) {
	session, err := s.watchRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.StudentID != studentID {
		return nil, ErrWatchSessionNotFound
	}
	if !session.IsOpen() {
		return nil, ErrWatchSessionClosed
	}
	return session, nil
}

// UpdateProgress records the player's position. Cumulative watch time only
// ever grows: rewinds move the position back but never subtract time.
func (s *WatchService) UpdateProgress(sessionID string, studentID int64, positionSeconds int) (*ProgressState, error) {
	session, err := s.getOpenSession(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	video, err := s.planRepo.GetVideo(session.VideoID)
	if err != nil {
		return nil, err
	}
	duration := 0
	if video != nil {
		duration = video.DurationSeconds
	}
	if err := validation.ValidatePosition(positionSeconds, duration); err != nil {
		return nil, err
	}

	total := session.TotalWatchSeconds
	if delta := positionSeconds - session.LastPositionSeconds; delta > 0 {
		total += delta
	}

	if err := s.watchRepo.UpdateProgress(sessionID, total, positionSeconds); err != nil {
		return nil, err
	}
	session.TotalWatchSeconds = total
	session.LastPositionSeconds = positionSeconds

	return &ProgressState{
		ChallengeDue: session.ChallengeDue(s.verificationInterval),
		QuizDue:      session.QuizDue(s.comprehensionTrigger),
	}, nil
}

// GetAttentionChallenge issues the session's current challenge, creating
// one if none is outstanding. Challenges are single-use words.
func (s *WatchService) GetAttentionChallenge(sessionID string, studentID int64) (*models.AttentionChallenge, error) {
	session, err := s.getOpenSession(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	open, err := s.watchRepo.GetOpenChallenge(sessionID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	word, err := randomChallengeWord()
	if err != nil {
		return nil, fmt.Errorf("failed to pick challenge word: %w", err)
	}

	challenge := &models.AttentionChallenge{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Word:      word,
		AtSeconds: session.LastPositionSeconds,
		IssuedAt:  time.Now(),
	}
	if err := s.watchRepo.CreateChallenge(challenge); err != nil {
		if open, checkErr := s.watchRepo.GetOpenChallenge(sessionID); checkErr == nil && open != nil {
			return open, nil
		}
		return nil, err
	}
	return challenge, nil
}

// SubmitAttentionChallenge checks the typed word. A correct word consumes
// the challenge and moves the verification checkpoint forward; a wrong word
// changes nothing and the student may retry without limit.
func (s *WatchService) SubmitAttentionChallenge(sessionID string, studentID int64, word string) (bool, error) {
	session, err := s.getOpenSession(sessionID, studentID)
	if err != nil {
		return false, err
	}

	challenge, err := s.watchRepo.GetOpenChallenge(sessionID)
	if err != nil {
		return false, err
	}
	if challenge == nil {
		return false, ErrChallengeNotFound
	}

	if !strings.EqualFold(strings.TrimSpace(word), challenge.Word) {
		return false, nil
	}

	consumed, err := s.watchRepo.ConsumeChallenge(challenge.ID)
	if err != nil {
		return false, err
	}
	if !consumed {
		// Lost a race with another submit of the same challenge
		return false, ErrChallengeNotFound
	}

	if err := s.watchRepo.RecordVerification(sessionID, session.LastPositionSeconds); err != nil {
		return false, err
	}
	return true, nil
}

// GetComprehensionQuiz issues the once-per-session quiz. The first call
// after the watch-time threshold creates it; later calls return the same
// questions.
func (s *WatchService) GetComprehensionQuiz(ctx context.Context, sessionID string, studentID int64) (*models.ComprehensionQuiz, []models.Question, error) {
	session, err := s.getOpenSession(sessionID, studentID)
	if err != nil {
		return nil, nil, err
	}

	if quiz, err := s.watchRepo.GetQuiz(sessionID); err != nil {
		return nil, nil, err
	} else if quiz != nil {
		questions, err := s.bank.FetchQuestions(ctx, quiz.QuestionIDs)
		if err != nil {
			return nil, nil, err
		}
		return quiz, sanitize(questions), nil
	}

	if !session.QuizDue(s.comprehensionTrigger) {
		return nil, nil, ErrQuizNotTriggered
	}

	video, err := s.planRepo.GetVideo(session.VideoID)
	if err != nil {
		return nil, nil, err
	}
	if video == nil {
		return nil, nil, ErrVideoNotFound
	}

	questions, err := s.bank.FetchSet(ctx, questionbank.SetComprehension, video.SubjectID, video.ChapterID, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}

	quiz := &models.ComprehensionQuiz{
		SessionID:          sessionID,
		QuestionIDs:        questionIDs(questions),
		TriggeredAtSeconds: session.TotalWatchSeconds,
		IssuedAt:           time.Now(),
	}
	if err := s.watchRepo.CreateQuiz(quiz); err != nil {
		return nil, nil, err
	}
	if err := s.watchRepo.MarkQuizTriggered(sessionID); err != nil {
		return nil, nil, err
	}

	return quiz, sanitize(questions), nil
}

// SubmitComprehensionAnswer grades one quiz answer immediately. The quiz is
// diagnostic: a wrong answer records the result and moves on.
func (s *WatchService) SubmitComprehensionAnswer(ctx context.Context, sessionID string, studentID int64, questionID, answer string) (*bool, error) {
	if _, err := s.getOpenSession(sessionID, studentID); err != nil {
		return nil, err
	}

	quiz, err := s.watchRepo.GetQuiz(sessionID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotTriggered
	}

	inQuiz := false
	for _, id := range quiz.QuestionIDs {
		if id == questionID {
			inQuiz = true
			break
		}
	}
	if !inQuiz {
		return nil, ErrQuestionNotInQuiz
	}

	questions, err := s.bank.FetchQuestions(ctx, []string{questionID})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrQuestionNotInQuiz
	}

	var isCorrect *bool
	if questions[0].Type.IsAutoGradeable() {
		correct := grading.Check(questions[0], answer)
		isCorrect = &correct
	}

	if err := s.watchRepo.SaveQuizAnswer(sessionID, questionID, answer, isCorrect); err != nil {
		return nil, err
	}
	if err := s.watchRepo.IncrementQuestionsAnswered(sessionID); err != nil {
		return nil, err
	}
	return isCorrect, nil
}

// DismissQuiz records that the student closed the quiz overlay without
// finishing it. The quiz stays answerable; dismissal is an engagement
// signal, not a gate. Idempotent.
func (s *WatchService) DismissQuiz(sessionID string, studentID int64) error {
	if _, err := s.getOpenSession(sessionID, studentID); err != nil {
		return err
	}

	quiz, err := s.watchRepo.GetQuiz(sessionID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return ErrQuizNotTriggered
	}
	if quiz.Dismissed {
		return nil
	}

	return s.watchRepo.MarkQuizDismissed(sessionID)
}

// EndWatch closes a session. Idempotent: ending an ended session succeeds
// with no effect. The session counts as a complete watch when the last
// position is within tolerance of the video's end.
func (s *WatchService) EndWatch(sessionID string, studentID int64) error {
	session, err := s.watchRepo.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.StudentID != studentID {
		return ErrWatchSessionNotFound
	}
	if !session.IsOpen() {
		return nil
	}

	video, err := s.planRepo.GetVideo(session.VideoID)
	if err != nil {
		return err
	}
	completed := video != nil && session.ReachedEnd(video.DurationSeconds)

	return s.watchRepo.EndSession(sessionID, time.Now(), completed)
}
