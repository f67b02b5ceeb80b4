package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	marvelThrottleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marvel_throttle_waits_total",
		Help: "Total number of completed pre-request pauses",
	})

	marvelThrottleWaitSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marvel_throttle_wait_seconds_total",
		Help: "Cumulative time spent in pre-request pauses",
	})
)

// Pacer enforces the fixed delay between gateway requests.
type Pacer struct {
	delay  time.Duration
	logger zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewPacer creates a pacer with the given fixed delay. A non-positive delay
// disables pacing, which tests rely on.
func NewPacer(delay time.Duration, logger zerolog.Logger) *Pacer {
	if delay < 0 {
		delay = 0
	}
	return &Pacer{
		delay:  delay,
		logger: logger,
	}
}

// Delay returns the configured fixed delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait suspends for the fixed delay or until ctx ends, whichever comes
// first. On cancellation it returns ctx.Err() without recording a wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if p.delay > 0 {
		p.logger.Debug().Dur("delay", p.delay).Msg("Pacing before request")

		timer := time.NewTimer(p.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	waited := time.Since(start)

	p.mu.Lock()
	p.state.WaitsCompleted++
	p.state.LastWaitAt = time.Now()
	p.state.TotalWaited += waited
	p.mu.Unlock()

	marvelThrottleWaitsTotal.Inc()
	marvelThrottleWaitSecondsTotal.Add(waited.Seconds())

	return nil
}

// State returns a snapshot of the pacing counters.
func (p *Pacer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
