package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/aristath/overseer/internal/judge"
)

// Breaker tuning shared by every judge type.
const (
	breakerTripAfter   = 5                // consecutive failures before opening
	breakerOpenFor     = 30 * time.Second // how long an open breaker rests
	breakerProbeBudget = 3                // requests allowed while half-open
)

// RetryConfig shapes the exponential backoff applied to judge calls.
type RetryConfig struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	MaxElapsedTime      time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryConfig returns the retry policy used when Config.Retry is
// left zero.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// CircuitBreakerRegistry manages the long-lived circuit breakers, one per
// judge type. Failure counts accumulate across tasks.
type CircuitBreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewCircuitBreakerRegistry creates an empty registry.
func NewCircuitBreakerRegistry() *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get returns the breaker for a judge type, creating it on first use.
func (r *CircuitBreakerRegistry) Get(judgeType string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[judgeType]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        judgeType,
		MaxRequests: breakerProbeBudget,
		Timeout:     breakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("Judge breaker %q: %s -> %s", name, from, to)
		},
		// Cancellation is the caller's decision, not a judge failure.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
	})
	r.breakers[judgeType] = cb
	return cb
}

// validateWithRetry asks the judge to validate task output, retrying
// transient failures with exponential backoff behind the circuit breaker.
// An open breaker or a cancelled context ends the attempt immediately.
func validateWithRetry(ctx context.Context, j judge.Judge, taskID, output string, cb *gobreaker.CircuitBreaker, retryCfg RetryConfig) (*judge.ValidationResult, error) {
	var verdict *judge.ValidationResult

	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return j.Validate(ctx, taskID, output)
		})
		switch {
		case err == nil:
			verdict = result.(*judge.ValidationResult)
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryCfg.InitialInterval
	policy.MaxInterval = retryCfg.MaxInterval
	policy.MaxElapsedTime = retryCfg.MaxElapsedTime
	policy.Multiplier = retryCfg.Multiplier
	policy.RandomizationFactor = retryCfg.RandomizationFactor

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	return verdict, err
}
