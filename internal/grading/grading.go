// Package grading implements deterministic answer checking for every
// auto-gradeable question type. Free-text types (SHORT_ANSWER, LONG_ANSWER)
// have no deterministic key and are excluded from score denominators.
package grading

import (
	"fmt"
	"strings"

	"masterypath/internal/models"
	"masterypath/internal/validation"
)

// Result summarizes the auto-gradeable portion of an attempt
type Result struct {
	Correct   int
	Gradeable int
	Percent   int
	// PerQuestion maps question ID to correctness; nil for non-auto-gradeable types
	PerQuestion map[string]*bool
}

// Score grades a set of responses against their questions. A response for a
// question not in the set is rejected rather than ignored. Unanswered
// questions count as wrong; the percentage denominator is the number of
// auto-gradeable questions, never the full set.
func Score(questions []models.Question, answers map[string]string) (Result, error) {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for id := range answers {
		if _, ok := byID[id]; !ok {
			return Result{}, validation.ValidationError{
				Field:   "answers",
				Message: fmt.Sprintf("answer for unknown question %q", id),
			}
		}
	}

	result := Result{PerQuestion: make(map[string]*bool, len(questions))}
	for _, q := range questions {
		if !q.Type.IsAutoGradeable() {
			result.PerQuestion[q.ID] = nil
			continue
		}

		result.Gradeable++
		correct := Check(q, answers[q.ID])
		if correct {
			result.Correct++
		}
		c := correct
		result.PerQuestion[q.ID] = &c
	}

	if result.Gradeable > 0 {
		result.Percent = result.Correct * 100 / result.Gradeable
	}

	return result, nil
}

// Check compares one answer against a question's canonical key.
// Non-auto-gradeable types always return false.
func Check(q models.Question, answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}

	switch q.Type {
	case models.QuestionMCQ, models.QuestionTrueFalse, models.QuestionAssertionReason:
		return normalizeText(answer) == normalizeText(q.CorrectAnswer)

	case models.QuestionMultipleCorrect:
		// Set equality: order of the selected options never matters
		return setsEqual(splitSelections(answer), q.CorrectAnswers)

	case models.QuestionInteger:
		return normalizeNumeric(answer) == normalizeNumeric(q.CorrectAnswer)

	case models.QuestionFillBlank:
		return normalizeText(answer) == normalizeText(q.CorrectAnswer)

	default:
		return false
	}
}

// splitSelections parses a comma-separated multi-select answer
func splitSelections(answer string) []string {
	parts := strings.Split(answer, ",")
	selections := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			selections = append(selections, s)
		}
	}
	return selections
}

// setsEqual compares two option lists as sets, ignoring case and duplicates
func setsEqual(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[normalizeText(s)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[normalizeText(s)] = struct{}{}
	}

	if len(setA) != len(setB) {
		return false
	}
	for s := range setA {
		if _, ok := setB[s]; !ok {
			return false
		}
	}
	return true
}

// normalizeText lowercases, trims and collapses internal whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeNumeric canonicalizes a numeric string so that "007", "7" and
// "7.0" compare equal, and "-0" equals "0"
func normalizeNumeric(s string) string {
	s = strings.TrimSpace(s)

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}

	intPart = strings.TrimLeft(intPart, "0")
	fracPart = strings.TrimRight(fracPart, "0")

	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" {
		// Zero has no sign
		negative = false
	}

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if negative {
		out = "-" + out
	}
	return out
}
