package watch

import (
	"context"
	"log"
	"time"
)

// SessionClient is the server-side session surface the monitor reports to.
// ResolveChallenge and RunQuiz block until the student has dealt with the
// interruption (challenge solved, quiz dismissed).
type SessionClient interface {
	UpdateProgress(ctx context.Context, positionSeconds int) (TickState, error)
	ResolveChallenge(ctx context.Context) error
	RunQuiz(ctx context.Context) error
	End(ctx context.Context) error
}

const tickInterval = time.Second

// Monitor drives one watch session: it samples the player every second,
// reports progress, and pauses playback whenever the server says a
// challenge or quiz is due.
type Monitor struct {
	player  PlayerController
	session SessionClient
}

// NewMonitor creates a monitor for one player and session
func NewMonitor(player PlayerController, session SessionClient) *Monitor {
	return &Monitor{
		player:  player,
		session: session,
	}
}

// Run loops until the context is cancelled, then ends the session
// best-effort. Transient reporting failures fail open: playback continues
// and the tick is retried on the next beat.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.endSession()
			return ctx.Err()
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				if ctx.Err() != nil {
					m.endSession()
					return ctx.Err()
				}
				// Fail open: keep playing, try again next tick
				log.Printf("watch monitor: progress report failed: %v", err)
				m.player.Play()
			}
		}
	}
}

func (m *Monitor) tick(ctx context.Context) error {
	state, err := m.session.UpdateProgress(ctx, m.player.CurrentTime())
	if err != nil {
		return err
	}

	switch Evaluate(state) {
	case ActionChallenge:
		m.player.Pause()
		if err := m.session.ResolveChallenge(ctx); err != nil {
			return err
		}
		m.player.Play()
	case ActionQuiz:
		m.player.Pause()
		if err := m.session.RunQuiz(ctx); err != nil {
			return err
		}
		// Playback resumes only after the quiz is dismissed
		m.player.Play()
	}
	return nil
}

// endSession closes the server session with a fresh short-lived context so
// cancellation of the run context cannot strand an open session
func (m *Monitor) endSession() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.session.End(ctx); err != nil {
		log.Printf("watch monitor: failed to end session: %v", err)
	}
}
