package cache

import (
	"fmt"
	"time"

	"github.com/Sternrassler/marvel-extractor/pkg/client"
)

const (
	// DefaultTTL is the fallback TTL when no TTL is configured
	DefaultTTL = time.Hour
)

// EntryFromPage converts a decoded gateway page to a cache entry that
// expires after ttl.
func EntryFromPage(page *client.Page, ttl time.Duration) (*Entry, error) {
	if page == nil {
		return nil, fmt.Errorf("page cannot be nil")
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()

	return &Entry{
		Offset:   page.Offset,
		Limit:    page.Limit,
		Total:    page.Total,
		Count:    page.Count,
		Results:  page.Results,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}, nil
}

// Page converts the cache entry back to a gateway page.
func (e *Entry) Page() *client.Page {
	return &client.Page{
		Offset:  e.Offset,
		Limit:   e.Limit,
		Total:   e.Total,
		Count:   e.Count,
		Results: e.Results,
	}
}
