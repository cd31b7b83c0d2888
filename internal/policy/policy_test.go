package policy

import (
	"testing"
	"time"

	"masterypath/internal/models"
)

func TestRecommendLevel(t *testing.T) {
	tests := []struct {
		score int
		want  models.StartLevel
	}{
		{0, models.LevelFoundational},
		{30, models.LevelFoundational},
		{39, models.LevelFoundational},
		{40, models.LevelStandard},
		{55, models.LevelStandard},
		{74, models.LevelStandard},
		{75, models.LevelAccelerated},
		{100, models.LevelAccelerated},
	}

	for _, tt := range tests {
		if got := RecommendLevel(tt.score); got != tt.want {
			t.Errorf("RecommendLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestShapeFor(t *testing.T) {
	tests := []struct {
		level       models.StartLevel
		wantDays    int
		wantMinutes int
	}{
		{models.LevelFoundational, 14, 40},
		{models.LevelStandard, 10, 55},
		{models.LevelAccelerated, 7, 75},
		{models.StartLevel("bogus"), 10, 55},
	}

	for _, tt := range tests {
		shape := ShapeFor(tt.level)
		if shape.Days != tt.wantDays {
			t.Errorf("ShapeFor(%s).Days = %d, want %d", tt.level, shape.Days, tt.wantDays)
		}
		if shape.TargetMinutesPerDay != tt.wantMinutes {
			t.Errorf("ShapeFor(%s).TargetMinutesPerDay = %d, want %d", tt.level, shape.TargetMinutesPerDay, tt.wantMinutes)
		}
	}
}

func TestNextPassRequirement(t *testing.T) {
	tests := []struct {
		current int
		ceiling int
		want    int
	}{
		{80, PassPercentCeiling, 82},
		{82, PassPercentCeiling, 84},
		{98, PassPercentCeiling, 100},
		{99, PassPercentCeiling, 100},
		{100, PassPercentCeiling, 100},
		// Operator-lowered ceiling caps the climb
		{88, 90, 90},
		{90, 90, 90},
		// A ceiling below the current requirement never lowers it
		{92, 90, 92},
		// Non-positive ceiling falls back to the default
		{99, 0, 100},
	}

	for _, tt := range tests {
		if got := NextPassRequirement(tt.current, tt.ceiling); got != tt.want {
			t.Errorf("NextPassRequirement(%d, %d) = %d, want %d", tt.current, tt.ceiling, got, tt.want)
		}
	}
}

func TestNextPassRequirementMonotonic(t *testing.T) {
	req := DefaultPassPercent
	for i := 0; i < 20; i++ {
		next := NextPassRequirement(req, PassPercentCeiling)
		if next < req {
			t.Fatalf("requirement decreased: %d -> %d", req, next)
		}
		if next > PassPercentCeiling {
			t.Fatalf("requirement exceeded ceiling: %d", next)
		}
		req = next
	}
	if req != PassPercentCeiling {
		t.Errorf("requirement after repeated failures = %d, want %d", req, PassPercentCeiling)
	}
}

func TestCooldownDuration(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{1, 30 * time.Minute},
		{2, time.Hour},
		{3, 2 * time.Hour},
		{4, 4 * time.Hour},
		{5, 4 * time.Hour},
		{10, 4 * time.Hour},
		{0, 30 * time.Minute},
	}

	for _, tt := range tests {
		if got := CooldownDuration(tt.failures); got != tt.want {
			t.Errorf("CooldownDuration(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}
