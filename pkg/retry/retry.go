package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mealforge/mealforge-go/pkg/apperror"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
)

// Policy controls retry behavior. MaxRetries counts additional attempts
// after the first, so MaxRetries=3 allows up to four invocations. Delays
// grow as BaseDelay * 2^attempt without jitter.
type Policy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// Do invokes op, retrying transient failures with exponential backoff.
// Validation and authentication failures are never retried: they propagate
// on first occurrence. The returned error is always classified, so callers
// never see a raw transport error even when attempts are exhausted.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.BaseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = policy.BaseDelay << policy.MaxRetries
	eb.MaxElapsedTime = 0

	result, err := backoff.RetryWithData(
		func() (T, error) {
			result, err := op(ctx)
			if err == nil {
				return result, nil
			}

			typed := apperror.Classify(err)
			if !apperror.Retryable(typed) {
				return result, backoff.Permanent(typed)
			}

			return result, typed
		},
		backoff.WithMaxRetries(backoff.WithContext(eb, ctx), policy.MaxRetries),
	)
	if err != nil {
		return result, apperror.Classify(err)
	}

	return result, nil
}
