package models

// QuestionType identifies how a question is answered and graded
type QuestionType string

const (
	QuestionMCQ             QuestionType = "MCQ"
	QuestionMultipleCorrect QuestionType = "MULTIPLE_CORRECT"
	QuestionInteger         QuestionType = "INTEGER_TYPE"
	QuestionTrueFalse       QuestionType = "TRUE_FALSE"
	QuestionFillBlank       QuestionType = "FILL_BLANK"
	QuestionAssertionReason QuestionType = "ASSERTION_REASON"
	QuestionShortAnswer     QuestionType = "SHORT_ANSWER"
	QuestionLongAnswer      QuestionType = "LONG_ANSWER"
)

// IsAutoGradeable reports whether the type has a deterministic grading path.
// Free-text types need a human grader and are excluded from score denominators.
func (t QuestionType) IsAutoGradeable() bool {
	switch t {
	case QuestionShortAnswer, QuestionLongAnswer:
		return false
	default:
		return true
	}
}

// Question is a typed question record from the question bank with its canonical key
type Question struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	Topic          string       `json:"topic,omitempty"`
	Prompt         string       `json:"prompt"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correctAnswer,omitempty"`  // canonical key for single-answer types
	CorrectAnswers []string     `json:"correctAnswers,omitempty"` // canonical key for MULTIPLE_CORRECT
}

// Sanitized returns a copy with the answer keys stripped, safe to send to
// a student client.
func (q Question) Sanitized() Question {
	q.CorrectAnswer = ""
	q.CorrectAnswers = nil
	return q
}

// Response is a learner's answer to one question in an attempt.
// MULTIPLE_CORRECT selections are comma-separated option values.
type Response struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	// IsCorrect is nil for non-auto-gradeable types
	IsCorrect *bool `json:"isCorrect,omitempty"`
}
