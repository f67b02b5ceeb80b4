// Package sink persists extracted records.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink persists a batch of raw records to a destination.
type Sink interface {
	Persist(ctx context.Context, records []json.RawMessage, destination string) error
}

// FileSink writes records to a single JSON array file. Parent directories
// are created as needed.
type FileSink struct {
	logger zerolog.Logger
}

// NewFileSink creates a FileSink.
func NewFileSink() *FileSink {
	return &FileSink{
		logger: log.With().Str("component", "sink").Logger(),
	}
}

// Persist writes records as a JSON array to destination. An empty batch
// still produces a valid file containing an empty array.
func (s *FileSink) Persist(ctx context.Context, records []json.RawMessage, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return fmt.Errorf("destination path is required")
	}

	if records == nil {
		records = []json.RawMessage{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(destination, data, 0o644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	s.logger.Info().
		Str("path", destination).
		Int("records", len(records)).
		Int("bytes", len(data)).
		Msg("Records persisted")

	return nil
}

// Load reads a JSON array file written by Persist back into raw records.
func Load(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	return records, nil
}
