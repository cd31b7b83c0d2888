package models

import (
	"testing"
	"time"
)

func TestPlanDayContentComplete(t *testing.T) {
	tests := []struct {
		name string
		day  PlanDay
		want bool
	}{
		{
			name: "all gates satisfied",
			day:  PlanDay{VideosTotal: 3, VideosWatched: 3, ReadingCompleted: true, PracticeCompleted: true},
			want: true,
		},
		{
			name: "videos missing",
			day:  PlanDay{VideosTotal: 3, VideosWatched: 2, ReadingCompleted: true, PracticeCompleted: true},
			want: false,
		},
		{
			name: "reading missing",
			day:  PlanDay{VideosTotal: 3, VideosWatched: 3, ReadingCompleted: false, PracticeCompleted: true},
			want: false,
		},
		{
			name: "practice missing",
			day:  PlanDay{VideosTotal: 3, VideosWatched: 3, ReadingCompleted: true, PracticeCompleted: false},
			want: false,
		},
		{
			name: "no videos assigned counts as watched",
			day:  PlanDay{VideosTotal: 0, VideosWatched: 0, ReadingCompleted: true, PracticeCompleted: true},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.ContentComplete(); got != tt.want {
				t.Errorf("ContentComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanDayStatus(t *testing.T) {
	now := time.Now()
	future := now.Add(30 * time.Minute)
	past := now.Add(-30 * time.Minute)

	tests := []struct {
		name string
		day  PlanDay
		want DayStatus
	}{
		{
			name: "locked day",
			day:  PlanDay{Unlocked: false},
			want: DayLocked,
		},
		{
			name: "passed wins over everything",
			day:  PlanDay{Unlocked: true, Passed: true, CooldownEndsAt: &future},
			want: DayPassed,
		},
		{
			name: "in progress with open gates",
			day:  PlanDay{Unlocked: true, VideosTotal: 2, VideosWatched: 1},
			want: DayInProgress,
		},
		{
			name: "content complete when gates close",
			day:  PlanDay{Unlocked: true, VideosTotal: 2, VideosWatched: 2, ReadingCompleted: true, PracticeCompleted: true},
			want: DayContentComplete,
		},
		{
			name: "active cooldown",
			day: PlanDay{
				Unlocked: true, VideosTotal: 1, VideosWatched: 1,
				ReadingCompleted: true, PracticeCompleted: true,
				CooldownEndsAt: &future,
			},
			want: DayFailedCooldown,
		},
		{
			name: "expired cooldown allows retest",
			day: PlanDay{
				Unlocked: true, VideosTotal: 1, VideosWatched: 1,
				ReadingCompleted: true, PracticeCompleted: true,
				CooldownEndsAt: &past,
			},
			want: DayContentComplete,
		},
		{
			name: "open test attempt",
			day: PlanDay{
				Unlocked: true, VideosTotal: 1, VideosWatched: 1,
				ReadingCompleted: true, PracticeCompleted: true,
				TestInProgress: true,
			},
			want: DayTestInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.Status(now); got != tt.want {
				t.Errorf("Status() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanDayCooldownRemaining(t *testing.T) {
	now := time.Now()

	ends := now.Add(90 * time.Second)
	day := PlanDay{CooldownEndsAt: &ends}
	if got := day.CooldownRemaining(now); got != 90 {
		t.Errorf("CooldownRemaining() = %d, want 90", got)
	}

	expired := now.Add(-time.Second)
	day = PlanDay{CooldownEndsAt: &expired}
	if got := day.CooldownRemaining(now); got != 0 {
		t.Errorf("CooldownRemaining() after expiry = %d, want 0", got)
	}

	day = PlanDay{}
	if got := day.CooldownRemaining(now); got != 0 {
		t.Errorf("CooldownRemaining() without cooldown = %d, want 0", got)
	}
}

func TestStudyPlanCurrentDayNumber(t *testing.T) {
	plan := StudyPlan{
		Days: []PlanDay{
			{DayNumber: 1, Unlocked: true, Passed: true},
			{DayNumber: 2, Unlocked: true, Passed: false},
			{DayNumber: 3, Unlocked: false},
		},
	}
	if got := plan.CurrentDayNumber(); got != 2 {
		t.Errorf("CurrentDayNumber() = %d, want 2", got)
	}

	// All days passed: report the final day
	plan.Days[1].Passed = true
	plan.Days[2].Unlocked = true
	plan.Days[2].Passed = true
	if got := plan.CurrentDayNumber(); got != 3 {
		t.Errorf("CurrentDayNumber() on finished plan = %d, want 3", got)
	}
}

func TestWatchSessionChallengeDue(t *testing.T) {
	tests := []struct {
		name     string
		session  WatchSession
		interval int
		want     bool
	}{
		{
			name:     "due at exactly the interval",
			session:  WatchSession{LastPositionSeconds: 300, LastVerificationSeconds: 0},
			interval: 300,
			want:     true,
		},
		{
			name:     "not due before the interval",
			session:  WatchSession{LastPositionSeconds: 299, LastVerificationSeconds: 0},
			interval: 300,
			want:     false,
		},
		{
			name:     "measured from last verification",
			session:  WatchSession{LastPositionSeconds: 550, LastVerificationSeconds: 300},
			interval: 300,
			want:     false,
		},
		{
			name:     "due again after another interval of video time",
			session:  WatchSession{LastPositionSeconds: 600, LastVerificationSeconds: 300},
			interval: 300,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.ChallengeDue(tt.interval); got != tt.want {
				t.Errorf("ChallengeDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatchSessionQuizDue(t *testing.T) {
	s := WatchSession{TotalWatchSeconds: 1799}
	if s.QuizDue(1800) {
		t.Error("QuizDue() should be false below the threshold")
	}

	s.TotalWatchSeconds = 1800
	if !s.QuizDue(1800) {
		t.Error("QuizDue() should be true at the threshold")
	}

	// Once triggered it never fires again
	s.QuizTriggered = true
	s.TotalWatchSeconds = 3600
	if s.QuizDue(1800) {
		t.Error("QuizDue() should be false after the quiz has been triggered")
	}
}

func TestWatchSessionReachedEnd(t *testing.T) {
	s := WatchSession{LastPositionSeconds: 1996}
	if !s.ReachedEnd(2000) {
		t.Error("ReachedEnd() should allow a small tolerance before the end")
	}

	s.LastPositionSeconds = 1990
	if s.ReachedEnd(2000) {
		t.Error("ReachedEnd() should be false well before the end")
	}
}
