package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultDebounce = 10 * time.Second

// Handler reacts to a batch of extraction events after a quiet period.
type Handler func(ctx context.Context) error

// Listener consumes extraction events and invokes a handler, debounced so a
// burst of completed extractions triggers one reaction.
type Listener struct {
	nc       *nats.Conn
	handler  Handler
	debounce time.Duration
	logger   zerolog.Logger

	cancel context.CancelFunc
	sub    *nats.Subscription

	pending int32
}

// NewListener creates a Listener over an established NATS connection. A
// non-positive debounce falls back to ten seconds.
func NewListener(nc *nats.Conn, handler Handler, debounce time.Duration) (*Listener, error) {
	if nc == nil {
		return nil, ErrNilConn
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Listener{
		nc:       nc,
		handler:  handler,
		debounce: debounce,
		logger:   log.With().Str("component", "events").Logger(),
	}, nil
}

// Start subscribes and runs the debounce loop until ctx ends or Stop is
// called.
func (l *Listener) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	ch := make(chan *nats.Msg, 16)

	sub, err := l.nc.ChanSubscribe(SubjectExtractionCompleted, ch)
	if err != nil {
		cancel()
		return err
	}
	l.sub = sub

	go func() {
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				l.logger.Error().Err(err).Msg("Failed to unsubscribe from nats")
			}
			close(ch)
			l.logger.Info().Msg("Extraction event listener stopped")
		}()

		ticker := time.NewTicker(l.debounce)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if atomic.LoadInt32(&l.pending) == 1 {
					l.logger.Info().Msg("Handling extraction events after quiet period")
					if err := l.handler(ctx); err != nil {
						l.logger.Error().Err(err).Msg("Extraction event handler failed")
					}
					atomic.StoreInt32(&l.pending, 0)
				}

			case _, ok := <-ch:
				if !ok {
					return
				}
				atomic.StoreInt32(&l.pending, 1)
			}
		}
	}()

	return nil
}

// Stop ends the debounce loop.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
