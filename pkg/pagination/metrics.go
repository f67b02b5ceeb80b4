package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	marvelPagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_pages_fetched_total",
			Help: "Total number of pages fetched from the gateway per endpoint",
		},
		[]string{"endpoint"},
	)

	marvelRecordsCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_records_collected_total",
			Help: "Total number of records collected per endpoint",
		},
		[]string{"endpoint"},
	)

	marvelPageRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_page_retries_total",
			Help: "Total number of page retries by endpoint and error class",
		},
		[]string{"endpoint", "error_class"},
	)

	marvelRetryExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_retry_exhausted_total",
			Help: "Total number of pages abandoned after the retry budget was spent",
		},
		[]string{"endpoint"},
	)

	marvelInconsistenciesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_inconsistencies_total",
			Help: "Total number of pagination inconsistencies by endpoint and reason",
		},
		[]string{"endpoint", "reason"},
	)

	marvelCacheServedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_cache_served_pages_total",
			Help: "Total number of pages served from cache instead of the gateway",
		},
		[]string{"endpoint"},
	)
)
