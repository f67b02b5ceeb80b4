package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/marvel-extractor/pkg/client"
)

// RetryPolicy controls the in-place retry of failed page requests. The wait
// between attempts is a fixed interval; no backoff is applied.
type RetryPolicy struct {
	// Interval is the fixed wait before the next attempt.
	Interval time.Duration

	// MaxAttempts caps the attempts per page, counting the first request.
	// Zero retries forever.
	MaxAttempts int
}

// DefaultRetryPolicy returns the retry policy used by DefaultConfig.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Interval:    2 * time.Second,
		MaxAttempts: 5,
	}
}

// retryInPlace runs fn until it succeeds, fails with a non-retryable error,
// spends the attempt budget, or ctx ends. fn includes the pre-request
// throttle, so a failed attempt waits for the retry interval and then again
// for the throttle before the wire is touched.
func (f *Fetcher) retryInPlace(ctx context.Context, endpoint string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				f.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		if !client.IsRetryable(err) {
			return err
		}

		class := client.Classify(err)
		marvelPageRetriesTotal.WithLabelValues(endpoint, string(class)).Inc()

		if f.policy.MaxAttempts > 0 && attempt >= f.policy.MaxAttempts {
			marvelRetryExhaustedTotal.WithLabelValues(endpoint).Inc()
			f.logger.Error().
				Err(err).
				Str("endpoint", endpoint).
				Int("max_attempts", f.policy.MaxAttempts).
				Msg("Retry budget exhausted")
			return fmt.Errorf("%w after %d attempts: %v", client.ErrRetryExhausted, attempt, err)
		}

		f.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("error_class", string(class)).
			Int("attempt", attempt).
			Dur("wait", f.policy.Interval).
			Msg("Retrying request")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", client.ErrCancelled, ctx.Err())
		case <-time.After(f.policy.Interval):
		}
	}
}
