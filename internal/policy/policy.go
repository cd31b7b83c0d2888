// Package policy holds the progression rules: diagnostic level placement,
// plan shaping, adaptive pass requirements and failure cooldowns.
package policy

import (
	"time"

	"masterypath/internal/models"
)

// Diagnostic score bands for level placement
const (
	foundationalBelow = 40
	acceleratedFrom   = 75
)

// Pass requirement progression
const (
	DefaultPassPercent   = 80
	PassPercentIncrement = 2
	PassPercentCeiling   = 100
)

// Cooldown progression after a failed day test
const (
	baseCooldown = 30 * time.Minute
	maxCooldown  = 4 * time.Hour
)

// Attempt time limits in minutes
const (
	DiagnosticTimeLimitMinutes = 30
	DayTestTimeLimitMinutes    = 20
)

// PlanShape describes how a study plan is laid out for a start level
type PlanShape struct {
	Days                int
	TargetMinutesPerDay int
}

var planShapes = map[models.StartLevel]PlanShape{
	models.LevelFoundational: {Days: 14, TargetMinutesPerDay: 40},
	models.LevelStandard:     {Days: 10, TargetMinutesPerDay: 55},
	models.LevelAccelerated:  {Days: 7, TargetMinutesPerDay: 75},
}

// RecommendLevel maps a diagnostic score to a start level
func RecommendLevel(scorePercent int) models.StartLevel {
	switch {
	case scorePercent < foundationalBelow:
		return models.LevelFoundational
	case scorePercent < acceleratedFrom:
		return models.LevelStandard
	default:
		return models.LevelAccelerated
	}
}

// ShapeFor returns the plan layout for a start level. Unknown levels fall
// back to the standard shape.
func ShapeFor(level models.StartLevel) PlanShape {
	if shape, ok := planShapes[level]; ok {
		return shape
	}
	return planShapes[models.LevelStandard]
}

// NextPassRequirement raises the threshold after a failed attempt. The
// requirement only ever goes up for a given day, capped at the ceiling.
// A non-positive ceiling falls back to PassPercentCeiling.
func NextPassRequirement(current, ceiling int) int {
	if ceiling <= 0 {
		ceiling = PassPercentCeiling
	}
	next := current + PassPercentIncrement
	if next > ceiling {
		next = ceiling
	}
	if next < current {
		return current
	}
	return next
}

// CooldownDuration returns the lockout after the Nth failure of a day test.
// The duration doubles per failure and is capped at four hours.
func CooldownDuration(failureCount int) time.Duration {
	if failureCount < 1 {
		failureCount = 1
	}

	d := baseCooldown
	for i := 1; i < failureCount; i++ {
		d *= 2
		if d >= maxCooldown {
			return maxCooldown
		}
	}
	return d
}
