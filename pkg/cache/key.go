package cache

import (
	"fmt"
	"strings"
)

// Key identifies a cached gateway page. Pages are addressed by endpoint,
// page size and offset; authentication parameters never enter the key, so
// sessions with fresh signatures still hit cached pages.
type Key struct {
	// Endpoint is the gateway endpoint path (e.g. "/v1/public/characters")
	Endpoint string

	// Limit is the page size of the request
	Limit int

	// Offset is the page offset of the request
	Offset int
}

// String generates a deterministic cache key string.
// Format: marvel:endpoint:limit=100:offset=200
//
// Example:
//
//	marvel:v1/public/characters:limit=100:offset=200
func (k Key) String() string {
	parts := []string{"marvel"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	parts = append(parts, fmt.Sprintf("limit=%d", k.Limit))
	parts = append(parts, fmt.Sprintf("offset=%d", k.Offset))

	return strings.Join(parts, ":")
}
