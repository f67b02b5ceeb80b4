// Package cache provides page caching for Marvel gateway responses with a
// Redis backend.
package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached gateway page.
type Entry struct {
	// Offset is the page offset within the collection
	Offset int `json:"offset"`

	// Limit is the page size the page was requested with
	Limit int `json:"limit"`

	// Total is the collection total the gateway reported
	Total int `json:"total"`

	// Count is the number of records on the page
	Count int `json:"count"`

	// Results are the raw records of the page
	Results []json.RawMessage `json:"results"`

	// Expires is when the cache entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this page
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
