package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/pkg/client"
)

// PageStore adapts the cache manager to the fetch loop's cache interface.
// Cache failures degrade to misses and are logged, never surfaced: a broken
// cache must not fail an extraction.
type PageStore struct {
	manager *Manager
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewPageStore creates a PageStore over the given manager. Entries expire
// after ttl; a non-positive ttl falls back to DefaultTTL.
func NewPageStore(manager *Manager, ttl time.Duration) *PageStore {
	if manager == nil {
		panic("cache manager cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &PageStore{
		manager: manager,
		ttl:     ttl,
		logger:  log.With().Str("component", "cache").Logger(),
	}
}

// Get returns the cached page for the given request, or false on a miss.
func (s *PageStore) Get(ctx context.Context, endpoint string, limit, offset int) (*client.Page, bool) {
	key := Key{Endpoint: endpoint, Limit: limit, Offset: offset}

	entry, err := s.manager.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().
				Err(err).
				Str("key", key.String()).
				Msg("Cache lookup failed, treating as miss")
		}
		return nil, false
	}

	return entry.Page(), true
}

// Set stores a fetched page. Failures are logged and dropped.
func (s *PageStore) Set(ctx context.Context, endpoint string, limit, offset int, page *client.Page) {
	key := Key{Endpoint: endpoint, Limit: limit, Offset: offset}

	entry, err := EntryFromPage(page, s.ttl)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Msg("Cache entry conversion failed")
		return
	}

	if err := s.manager.Set(ctx, key, entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Msg("Cache store failed")
	}
}
