// file: internal/retry/retry.go
// version: 1.1.0
// guid: 8d3e5f7a-2b4c-4d6e-9f0a-1b2c3d4e5f60

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy controls retry behavior for a single outbound call.
// DisableAll overrides Enabled regardless of its value; it exists so test
// environments can force deterministic single-attempt execution.
type Policy struct {
	Enabled           bool
	MaxAttempts       int
	BackoffMultiplier float64
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	DisableAll        bool
}

// DefaultPolicy mirrors the service defaults: five attempts with
// exponential backoff between one and ten seconds.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:           true,
		MaxAttempts:       5,
		BackoffMultiplier: 2.0,
		BackoffMin:        time.Second,
		BackoffMax:        10 * time.Second,
	}
}

// TransientError marks an error as retry-eligible. Errors not wrapped in
// TransientError are terminal for the attempt and never retried.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retry-eligible.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retry-eligible.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ExhaustedError reports that transient failures persisted past the retry
// budget. It wraps the last observed failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Executor wraps a single outbound call with bounded retries and
// exponential backoff. It carries no provider knowledge; callers classify
// failures by wrapping them with Transient.
type Executor struct {
	policy Policy
}

// NewExecutor creates an executor for the given policy.
func NewExecutor(policy Policy) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{policy: policy}
}

// Policy returns the executor's effective policy.
func (e *Executor) Policy() Policy { return e.policy }

func (e *Executor) enabled() bool {
	return e.policy.Enabled && !e.policy.DisableAll && e.policy.MaxAttempts > 1
}

// Do runs op, retrying transient failures with exponential backoff until
// it succeeds or the attempt budget is spent. The delay before attempt n
// is min(BackoffMax, BackoffMin*BackoffMultiplier^(n-2)), jittered.
// Terminal failures are returned as-is; spent budgets return an
// ExhaustedError wrapping the last failure.
func Do[T any](ctx context.Context, e *Executor, op func() (T, error)) (T, error) {
	if !e.enabled() {
		return op()
	}

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.policy.BackoffMin
	b.MaxInterval = e.policy.BackoffMax
	b.Multiplier = e.policy.BackoffMultiplier

	v, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(e.policy.MaxAttempts)),
	)
	if err != nil && IsTransient(err) {
		return v, &ExhaustedError{Attempts: e.policy.MaxAttempts, Err: err}
	}
	return v, err
}
