// Package retry provides bounded retry with backoff for external calls.
//
// Each call runs through an explicit attempt state machine
// (attempting -> retrying(n) -> succeeded | failed) instead of nested
// error handling, so tests can assert on the exact attempt sequence.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State describes where a retried call currently is.
type State int

const (
	// StateAttempting means the first attempt is in flight.
	StateAttempting State = iota
	// StateRetrying means a previous attempt failed and a backoff sleep
	// preceded the current attempt.
	StateRetrying
	// StateSucceeded means the call completed.
	StateSucceeded
	// StateFailed means retries were exhausted or the error was permanent.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the number of retry attempts after the first try.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Multiplier grows the backoff between attempts.
	Multiplier float64
}

// DefaultConfig returns the bounds used for provider calls: three retries
// with an increasing delay.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// DelayHint is implemented by errors that carry a provider-supplied
// retry delay (e.g. a Retry-After header).
type DelayHint interface {
	RetryDelay() (time.Duration, bool)
}

// Attempt is passed to the OnAttempt hook before each try.
type Attempt struct {
	State  State
	Number int // 1-based attempt number
	Err    error
}

// Do executes fn with retry logic. classifier decides whether an error is
// retryable; a nil classifier retries everything except context errors.
// onAttempt, if non-nil, observes each state transition.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, onAttempt func(Attempt), fn func(context.Context) error) error {
	if classifier == nil {
		classifier = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		state := StateAttempting
		if attempt > 0 {
			state = StateRetrying
		}
		if onAttempt != nil {
			onAttempt(Attempt{State: state, Number: attempt + 1, Err: lastErr})
		}

		err := fn(ctx)
		if err == nil {
			if onAttempt != nil {
				onAttempt(Attempt{State: StateSucceeded, Number: attempt + 1})
			}
			return nil
		}
		lastErr = err

		if !classifier(err) {
			if onAttempt != nil {
				onAttempt(Attempt{State: StateFailed, Number: attempt + 1, Err: err})
			}
			return err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		sleep := backoff
		// honor the provider-supplied delay when the error carries one
		var hint DelayHint
		if errors.As(err, &hint) {
			if d, ok := hint.RetryDelay(); ok && d > 0 {
				sleep = d
			}
		}
		if sleep > cfg.MaxBackoff {
			sleep = cfg.MaxBackoff
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	if onAttempt != nil {
		onAttempt(Attempt{State: StateFailed, Number: cfg.MaxRetries + 1, Err: lastErr})
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
