package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"masterypath/internal/models"
)

func newWatchServiceFixture(questions []models.Question) (*WatchService, *fakeWatchStore, *fakeDayStore) {
	log := &opLog{}
	watch := newFakeWatchStore(log)
	days := newFakeDayStore(log)

	days.addVideo(models.Video{
		ID: 10, YoutubeVideoID: "yt-10", Title: "Motion in a line",
		DurationSeconds: 600, SubjectID: "phys-11", ChapterID: "kinematics",
	})

	// 300s between challenges, quiz at 1800s of watch time
	svc := NewWatchService(watch, days, &fakeBank{questions: questions}, 300, 1800)
	return svc, watch, days
}

func openSession(watch *fakeWatchStore) models.WatchSession {
	session := models.WatchSession{
		ID:        "sess-1",
		VideoID:   10,
		StudentID: testStudentID,
		StartedAt: time.Now().Add(-10 * time.Minute),
	}
	watch.addSession(session)
	return session
}

func TestUpdateProgressNeverSubtractsWatchTime(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	if _, err := svc.UpdateProgress("sess-1", testStudentID, 100); err != nil {
		t.Fatalf("UpdateProgress(100) error = %v", err)
	}

	// Rewind: the position moves back, the accumulated time does not
	if _, err := svc.UpdateProgress("sess-1", testStudentID, 40); err != nil {
		t.Fatalf("UpdateProgress(40) error = %v", err)
	}
	got := watch.session("sess-1")
	if got.TotalWatchSeconds != 100 {
		t.Errorf("TotalWatchSeconds = %d after rewind, want 100", got.TotalWatchSeconds)
	}
	if got.LastPositionSeconds != 40 {
		t.Errorf("LastPositionSeconds = %d, want 40", got.LastPositionSeconds)
	}

	if _, err := svc.UpdateProgress("sess-1", testStudentID, 70); err != nil {
		t.Fatalf("UpdateProgress(70) error = %v", err)
	}
	if got := watch.session("sess-1").TotalWatchSeconds; got != 130 {
		t.Errorf("TotalWatchSeconds = %d after resuming, want 130", got)
	}
}

func TestUpdateProgressFlagsChallengeAtInterval(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	state, err := svc.UpdateProgress("sess-1", testStudentID, 299)
	if err != nil {
		t.Fatalf("UpdateProgress(299) error = %v", err)
	}
	if state.ChallengeDue {
		t.Error("ChallengeDue = true at 299s, want false below the interval")
	}

	state, err = svc.UpdateProgress("sess-1", testStudentID, 300)
	if err != nil {
		t.Fatalf("UpdateProgress(300) error = %v", err)
	}
	if !state.ChallengeDue {
		t.Error("ChallengeDue = false at 300s, want true")
	}
}

func TestSubmitChallengeConsumesOnCorrectWord(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	if _, err := svc.UpdateProgress("sess-1", testStudentID, 300); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	challenge, err := svc.GetAttentionChallenge("sess-1", testStudentID)
	if err != nil {
		t.Fatalf("GetAttentionChallenge() error = %v", err)
	}

	correct, err := svc.SubmitAttentionChallenge("sess-1", testStudentID, "wrong-word")
	if err != nil {
		t.Fatalf("SubmitAttentionChallenge(wrong) error = %v", err)
	}
	if correct {
		t.Error("a wrong word must not pass the challenge")
	}

	correct, err = svc.SubmitAttentionChallenge("sess-1", testStudentID, " "+challenge.Word+" ")
	if err != nil {
		t.Fatalf("SubmitAttentionChallenge(correct) error = %v", err)
	}
	if !correct {
		t.Error("the issued word, modulo whitespace, must pass")
	}

	got := watch.session("sess-1")
	if got.LastVerificationSeconds != 300 {
		t.Errorf("LastVerificationSeconds = %d, want 300", got.LastVerificationSeconds)
	}
	if got.VerificationsCompleted != 1 {
		t.Errorf("VerificationsCompleted = %d, want 1", got.VerificationsCompleted)
	}
}

func TestDismissQuiz(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	// No quiz yet: nothing to dismiss
	if err := svc.DismissQuiz("sess-1", testStudentID); !errors.Is(err, ErrQuizNotTriggered) {
		t.Fatalf("DismissQuiz() error = %v, want ErrQuizNotTriggered", err)
	}

	watch.addQuiz(models.ComprehensionQuiz{
		SessionID:          "sess-1",
		QuestionIDs:        []string{"q1", "q2"},
		TriggeredAtSeconds: 1800,
		IssuedAt:           time.Now(),
	})

	for i := 0; i < 2; i++ {
		if err := svc.DismissQuiz("sess-1", testStudentID); err != nil {
			t.Fatalf("DismissQuiz() error = %v", err)
		}
	}
	quiz, err := watch.GetQuiz("sess-1")
	if err != nil {
		t.Fatalf("GetQuiz() error = %v", err)
	}
	if !quiz.Dismissed {
		t.Error("quiz should be recorded as dismissed")
	}
}

func TestGetComprehensionQuizBeforeThreshold(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(mcqSet(3))
	openSession(watch)

	if _, _, err := svc.GetComprehensionQuiz(context.Background(), "sess-1", testStudentID); !errors.Is(err, ErrQuizNotTriggered) {
		t.Errorf("GetComprehensionQuiz() error = %v, want ErrQuizNotTriggered", err)
	}
}

func TestEndWatchIdempotent(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	// Close enough to the end to count as a complete watch
	if _, err := svc.UpdateProgress("sess-1", testStudentID, 598); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	if err := svc.EndWatch("sess-1", testStudentID); err != nil {
		t.Fatalf("first EndWatch() error = %v", err)
	}
	if err := svc.EndWatch("sess-1", testStudentID); err != nil {
		t.Fatalf("second EndWatch() error = %v", err)
	}

	if watch.endCalls != 1 {
		t.Errorf("EndSession called %d times, want 1", watch.endCalls)
	}
	got := watch.session("sess-1")
	if got.EndedAt == nil {
		t.Fatal("session should be ended")
	}
	if !got.IsCompleted {
		t.Error("IsCompleted = false, want true within the end tolerance")
	}
}

func TestStartWatchRejectsSecondOpenSession(t *testing.T) {
	svc, watch, _ := newWatchServiceFixture(nil)
	openSession(watch)

	if _, err := svc.StartWatch(testStudentID, 10); !errors.Is(err, ErrWatchInProgress) {
		t.Errorf("StartWatch() error = %v, want ErrWatchInProgress", err)
	}

	if err := svc.EndWatch("sess-1", testStudentID); err != nil {
		t.Fatalf("EndWatch() error = %v", err)
	}
	session, err := svc.StartWatch(testStudentID, 10)
	if err != nil {
		t.Fatalf("StartWatch() after end error = %v", err)
	}
	if session.ID == "" {
		t.Error("new session should have an ID")
	}
}
