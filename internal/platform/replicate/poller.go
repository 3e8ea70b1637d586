package replicate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devdeck/devdeck-api/internal/generation"
)

// State is a node of the polling state machine.
type State string

const (
	// StateSubmitted is the initial state, before the submission response
	// has been examined.
	StateSubmitted State = "submitted"
	// StatePolling means the job is still running and budget remains.
	StatePolling State = "polling"
	// StateSucceeded is terminal: the job finished with at least one output.
	StateSucceeded State = "succeeded"
	// StateFailed is terminal: the job failed, was canceled, reported an
	// unknown status, or succeeded without output.
	StateFailed State = "failed"
	// StateExhausted is terminal: the job was still running after the last
	// permitted status check.
	StateExhausted State = "exhausted"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateExhausted
}

// Next computes the state reached after observing status, given how many
// status checks have been made so far and how many are allowed.
func Next(status string, hasOutput bool, attempts, maxAttempts int) State {
	switch status {
	case StatusStarting, StatusProcessing, StatusQueued:
		if attempts >= maxAttempts {
			return StateExhausted
		}
		return StatePolling
	case StatusSucceeded:
		if hasOutput {
			return StateSucceeded
		}
		return StateFailed
	default:
		return StateFailed
	}
}

// statusFunc fetches the current job document.
type statusFunc func(ctx context.Context) (*prediction, error)

// poller drives a job from its submission response to a terminal state.
type poller struct {
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// run seeds the state machine with the submission response and polls until
// a terminal state. It returns the final job document on success.
func (p *poller) run(ctx context.Context, initial *prediction, fetch statusFunc) (*prediction, error) {
	current := initial
	state := StateSubmitted
	attempts := 0

	for {
		next := Next(current.Status, len(current.outputs()) > 0, attempts, p.maxAttempts)
		if next != state {
			p.logger.DebugContext(ctx, "prediction state transition",
				slog.String("prediction_id", current.ID),
				slog.String("from", string(state)),
				slog.String("to", string(next)),
				slog.String("status", current.Status),
				slog.Int("attempt", attempts))
		}
		state = next

		switch state {
		case StateSucceeded:
			return current, nil
		case StateFailed:
			return nil, fmt.Errorf("%w: status %q: %s", generation.ErrJobFailed, current.Status, current.errorMessage())
		case StateExhausted:
			return nil, fmt.Errorf("%w: still %q after %d checks", generation.ErrPollExhausted, current.Status, attempts)
		}

		if err := sleep(ctx, p.interval); err != nil {
			return nil, err
		}

		updated, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		attempts++
		current = updated
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
