// Package pagination implements the sequential offset retrieval loop for
// paginated gateway collections.
//
// The loop issues one request at a time, pausing for a fixed delay before
// every request including the first, and accumulates raw records until the
// caller's record limit (or the gateway's authoritative total) is covered.
// Failed requests are retried in place at a fixed interval with an unchanged
// offset; there is no backoff and no parallelism.
//
// Example usage:
//
//	fetcher, err := pagination.NewFetcher(marvelClient, pagination.DefaultConfig())
//	records, err := fetcher.FetchAll(ctx, "/v1/public/characters", params, 300)
//
// The fetcher:
//   - Pauses for the configured throttle delay before every request
//   - Counts a full page size per successful page and sets the offset to the
//     running count, so the last page may overshoot the requested limit
//   - Retries failed pages in place at a fixed interval
//   - Fails fast on pagination inconsistencies (total drift, short pages)
//   - Serves pages from an optional cache without touching the wire
package pagination
