// Package metrics provides the centralized Prometheus metrics registry for the
// Marvel extractor. All metrics are defined in their respective packages
// (client, pagination, cache, dashboard) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the extractor.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - marvel_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - marvel_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - marvel_errors_total{class} (Counter): Errors by class (transport, application)
//
// Throttle Metrics (pkg/throttle):
//   - marvel_throttle_waits_total (Counter): Completed pre-request pauses
//   - marvel_throttle_wait_seconds_total (Counter): Cumulative time spent pausing
//
// Pagination Metrics (pkg/pagination):
//   - marvel_pages_fetched_total{endpoint} (Counter): Pages fetched from the gateway
//   - marvel_records_collected_total{endpoint} (Counter): Records accumulated across pages
//   - marvel_page_retries_total{endpoint, error_class} (Counter): Retry attempts by error class
//   - marvel_retry_exhausted_total{endpoint} (Counter): Fetches that exhausted the retry budget
//   - marvel_inconsistencies_total{endpoint, reason} (Counter): Detected pagination inconsistencies
//   - marvel_cache_served_pages_total{endpoint} (Counter): Pages served from cache instead of the gateway
//
// Cache Metrics (pkg/cache):
//   - marvel_cache_hits_total{layer} (Counter): Page cache hits
//   - marvel_cache_misses_total (Counter): Page cache misses
//   - marvel_cache_size_bytes{layer} (Gauge): Bytes moved through the cache
//   - marvel_cache_errors_total{operation} (Counter): Cache operation errors
//
// Dashboard Metrics (pkg/dashboard):
//   - marvel_dashboard_requests_total{path, status} (Counter): Dashboard HTTP requests
//   - marvel_dashboard_reloads_total{outcome} (Counter): Data source reloads
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(marvel_cache_hits_total[5m])) /
//   (sum(rate(marvel_cache_hits_total[5m])) + sum(rate(marvel_cache_misses_total[5m])))
//
//   # Retry Rate by Error Class
//   rate(marvel_page_retries_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(marvel_request_duration_seconds_bucket[5m]))
//
//   # Records per Page Ratio
//   rate(marvel_records_collected_total[5m]) / rate(marvel_pages_fetched_total[5m])
//
//   # Share of Pages Served Without Gateway Traffic
//   sum(rate(marvel_cache_served_pages_total[5m])) /
//   (sum(rate(marvel_cache_served_pages_total[5m])) + sum(rate(marvel_pages_fetched_total[5m])))
