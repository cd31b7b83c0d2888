package service

import (
	"context"
	"errors"
	"testing"

	"masterypath/internal/models"
	"masterypath/internal/policy"
)

func newContentServiceFixture(questions []models.Question) (*ContentService, *fakeDayStore) {
	log := &opLog{}
	days := newFakeDayStore(log)

	days.addPlan(models.StudyPlan{ID: 1, StudentID: testStudentID, SubjectID: "phys-11", ChapterID: "kinematics"})
	days.addDay(models.PlanDay{
		ID: 1, PlanID: 1, DayNumber: 1,
		VideosTotal:     2,
		PassRequirement: policy.DefaultPassPercent,
		Unlocked:        true,
	})
	days.addDay(models.PlanDay{ID: 2, PlanID: 1, DayNumber: 2, PassRequirement: policy.DefaultPassPercent})

	days.addVideo(models.Video{ID: 10, YoutubeVideoID: "yt-10", Title: "Motion in a line", DurationSeconds: 600})
	days.addVideo(models.Video{ID: 11, YoutubeVideoID: "yt-11", Title: "Graphs of motion", DurationSeconds: 480})
	days.dayVideos[1] = []int64{10, 11}

	return NewContentService(days, &fakeBank{questions: questions}), days
}

func TestSubmitPracticePartialKeepsGateOpen(t *testing.T) {
	questions := mcqSet(5)
	svc, days := newContentServiceFixture(questions)

	result, err := svc.SubmitPractice(context.Background(), 1, testStudentID, answersFor(questions, 4))
	if err != nil {
		t.Fatalf("SubmitPractice() error = %v", err)
	}

	if result.AllCorrect {
		t.Error("AllCorrect = true, want false at 4/5")
	}
	if result.Correct != 4 || result.Total != 5 {
		t.Errorf("score = %d/%d, want 4/5", result.Correct, result.Total)
	}
	if result.PracticeCompleted {
		t.Error("PracticeCompleted = true, want false: a partial result changes nothing")
	}
	if days.day(1).PracticeCompleted {
		t.Error("practice gate must stay open after a partial result")
	}
}

func TestSubmitPracticeAllCorrectClosesGate(t *testing.T) {
	questions := mcqSet(5)
	svc, days := newContentServiceFixture(questions)

	// A miss first, then a clean retry: only the retry closes the gate
	if _, err := svc.SubmitPractice(context.Background(), 1, testStudentID, answersFor(questions, 4)); err != nil {
		t.Fatalf("first SubmitPractice() error = %v", err)
	}

	result, err := svc.SubmitPractice(context.Background(), 1, testStudentID, answersFor(questions, 5))
	if err != nil {
		t.Fatalf("second SubmitPractice() error = %v", err)
	}
	if !result.AllCorrect || !result.PracticeCompleted {
		t.Errorf("result = %+v, want all correct and completed", result)
	}
	if !days.day(1).PracticeCompleted {
		t.Error("practice gate should close after a perfect retry")
	}
}

func TestMarkVideoWatchedRejectsForeignVideo(t *testing.T) {
	svc, days := newContentServiceFixture(nil)
	days.addVideo(models.Video{ID: 99, YoutubeVideoID: "yt-99", Title: "Another chapter"})

	if err := svc.MarkVideoWatched(1, 99, testStudentID); !errors.Is(err, ErrVideoNotInDay) {
		t.Errorf("MarkVideoWatched() error = %v, want ErrVideoNotInDay", err)
	}
}

func TestMarkVideoWatchedCountsOnce(t *testing.T) {
	svc, days := newContentServiceFixture(nil)

	for i := 0; i < 2; i++ {
		if err := svc.MarkVideoWatched(1, 10, testStudentID); err != nil {
			t.Fatalf("MarkVideoWatched() error = %v", err)
		}
	}
	if got := days.day(1).VideosWatched; got != 1 {
		t.Errorf("VideosWatched = %d, want 1 after repeated marks", got)
	}
}

func TestGetDayVideosOnLockedDay(t *testing.T) {
	svc, _ := newContentServiceFixture(nil)

	if _, _, err := svc.GetDayVideos(2, testStudentID); !errors.Is(err, ErrDayLocked) {
		t.Errorf("GetDayVideos() error = %v, want ErrDayLocked", err)
	}
}

func TestGetDayVideosReturnsWatchedFlags(t *testing.T) {
	svc, _ := newContentServiceFixture(nil)

	if err := svc.MarkVideoWatched(1, 10, testStudentID); err != nil {
		t.Fatalf("MarkVideoWatched() error = %v", err)
	}

	videos, watched, err := svc.GetDayVideos(1, testStudentID)
	if err != nil {
		t.Fatalf("GetDayVideos() error = %v", err)
	}
	if len(videos) != 2 || len(watched) != 2 {
		t.Fatalf("got %d videos and %d flags, want 2 and 2", len(videos), len(watched))
	}
	if !watched[0] || watched[1] {
		t.Errorf("watched = %v, want [true false]", watched)
	}
}
