// Package events publishes and consumes extraction lifecycle events over
// NATS. Downstream consumers, like the dashboard, reload their data when an
// extraction completes instead of polling for changes.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SubjectExtractionCompleted carries ExtractionCompleted payloads.
const SubjectExtractionCompleted = "marvel.extraction.completed"

var (
	// ErrNilConn indicates a listener was built without a NATS connection.
	ErrNilConn = errors.New("nats connection is required")

	// ErrNilHandler indicates a listener was built without a handler.
	ErrNilHandler = errors.New("event handler is required")
)

// ExtractionCompleted announces that an extraction run finished and where
// its output landed.
type ExtractionCompleted struct {
	Dataset    string    `json:"dataset"`
	Records    int       `json:"records"`
	Path       string    `json:"path"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher announces extraction events.
type Publisher struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

// NewPublisher connects to the NATS server at addr.
func NewPublisher(addr string) (*Publisher, error) {
	nc, err := nats.Connect(addr)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Publisher{
		nc:     nc,
		logger: log.With().Str("component", "events").Logger(),
	}, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishExtractionCompleted announces a finished extraction run.
func (p *Publisher) PublishExtractionCompleted(event ExtractionCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectExtractionCompleted, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	if err := p.nc.Flush(); err != nil {
		return fmt.Errorf("flush nats connection: %w", err)
	}

	p.logger.Info().
		Str("subject", SubjectExtractionCompleted).
		Str("dataset", event.Dataset).
		Int("records", event.Records).
		Msg("Extraction event published")

	return nil
}
