package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      string
		hasOutput   bool
		attempts    int
		maxAttempts int
		want        State
	}{
		{"starting keeps polling", StatusStarting, false, 0, 30, StatePolling},
		{"processing keeps polling", StatusProcessing, false, 5, 30, StatePolling},
		{"queued keeps polling", StatusQueued, false, 29, 30, StatePolling},
		{"running at budget is exhausted", StatusProcessing, false, 30, 30, StateExhausted},
		{"succeeded with output", StatusSucceeded, true, 3, 30, StateSucceeded},
		{"succeeded without output fails", StatusSucceeded, false, 3, 30, StateFailed},
		{"failed", StatusFailed, false, 1, 30, StateFailed},
		{"canceled", StatusCanceled, false, 1, 30, StateFailed},
		{"unknown status", "exploded", true, 1, 30, StateFailed},
		{"succeeded on submission", StatusSucceeded, true, 0, 30, StateSucceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Next(tc.status, tc.hasOutput, tc.attempts, tc.maxAttempts)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStateTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StateSubmitted.Terminal())
	assert.False(t, StatePolling.Terminal())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateExhausted.Terminal())
}

func testPoller(maxAttempts int) *poller {
	return &poller{
		interval:    time.Millisecond,
		maxAttempts: maxAttempts,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func withOutput(status string, urls ...string) *prediction {
	p := &prediction{ID: "p1", Status: status}
	if len(urls) > 0 {
		p.Output, _ = json.Marshal(urls)
	}
	return p
}

// sequence returns a statusFunc that replays docs in order and counts calls.
func sequence(docs ...*prediction) (statusFunc, *int) {
	calls := 0
	return func(context.Context) (*prediction, error) {
		doc := docs[calls]
		calls++
		return doc, nil
	}, &calls
}

func TestPollerRun(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after polling", func(t *testing.T) {
		fetch, calls := sequence(
			withOutput(StatusProcessing),
			withOutput(StatusSucceeded, "https://cdn.example/out.webp"),
		)

		got, err := testPoller(30).run(context.Background(), withOutput(StatusStarting), fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.example/out.webp"}, got.outputs())
		assert.Equal(t, 2, *calls)
	})

	t.Run("submission already succeeded skips polling", func(t *testing.T) {
		fetch, calls := sequence()

		got, err := testPoller(30).run(context.Background(), withOutput(StatusSucceeded, "https://cdn.example/a.png"), fetch)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/a.png", got.outputs()[0])
		assert.Equal(t, 0, *calls)
	})

	t.Run("failed job", func(t *testing.T) {
		failed := withOutput(StatusFailed)
		failed.Error = json.RawMessage(`"NSFW content detected"`)
		fetch, _ := sequence(failed)

		_, err := testPoller(30).run(context.Background(), withOutput(StatusStarting), fetch)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrJobFailed)
		assert.Contains(t, err.Error(), "NSFW content detected")
	})

	t.Run("succeeded without output is a failure", func(t *testing.T) {
		fetch, _ := sequence(withOutput(StatusSucceeded))

		_, err := testPoller(30).run(context.Background(), withOutput(StatusStarting), fetch)
		assert.ErrorIs(t, err, generation.ErrJobFailed)
	})

	t.Run("exhausts the attempt budget", func(t *testing.T) {
		fetch, calls := sequence(
			withOutput(StatusProcessing),
			withOutput(StatusProcessing),
			withOutput(StatusProcessing),
		)

		_, err := testPoller(3).run(context.Background(), withOutput(StatusStarting), fetch)
		assert.ErrorIs(t, err, generation.ErrPollExhausted)
		assert.Equal(t, 3, *calls)
	})

	t.Run("fetch error aborts", func(t *testing.T) {
		boom := errors.New("connection reset")
		fetch := func(context.Context) (*prediction, error) { return nil, boom }

		_, err := testPoller(30).run(context.Background(), withOutput(StatusStarting), fetch)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetch, calls := sequence()

		p := testPoller(30)
		p.interval = time.Hour
		_, err := p.run(ctx, withOutput(StatusStarting), fetch)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, *calls)
	})
}

func TestPredictionOutputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{"list", `["https://a/1.png","https://a/2.png"]`, []string{"https://a/1.png", "https://a/2.png"}},
		{"single string", `"https://a/1.png"`, []string{"https://a/1.png"}},
		{"empty list", `[]`, []string{}},
		{"null", `null`, nil},
		{"blank entries dropped", `["", "https://a/1.png"]`, []string{"https://a/1.png"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &prediction{Output: json.RawMessage(tc.output)}
			assert.Equal(t, tc.want, p.outputs())
		})
	}
}

func TestPredictionErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", (&prediction{}).errorMessage())
	assert.Equal(t, "", (&prediction{Error: json.RawMessage(`null`)}).errorMessage())
	assert.Equal(t, "bad input", (&prediction{Error: json.RawMessage(`"bad input"`)}).errorMessage())
	assert.Equal(t, `{"detail":"x"}`, (&prediction{Error: json.RawMessage(`{"detail":"x"}`)}).errorMessage())
}
