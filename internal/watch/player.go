// Package watch runs the client-side integrity loop for a video session:
// a once-a-second tick that reports playback progress and interrupts the
// player when an attention challenge or comprehension quiz comes due.
package watch

// PlayerController is the embedded player surface the monitor drives
type PlayerController interface {
	Play()
	Pause()
	// CurrentTime returns the playback position in whole seconds
	CurrentTime() int
}

// Action is what the monitor should do after a progress report
type Action int

const (
	ActionNone Action = iota
	ActionChallenge
	ActionQuiz
)

// TickState is the due-ness reported by the server after a progress update
type TickState struct {
	ChallengeDue bool
	QuizDue      bool
}

// Evaluate decides the next action for a tick. A due challenge always goes
// before a due quiz.
func Evaluate(s TickState) Action {
	switch {
	case s.ChallengeDue:
		return ActionChallenge
	case s.QuizDue:
		return ActionQuiz
	default:
		return ActionNone
	}
}
