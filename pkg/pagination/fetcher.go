package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/pkg/auth"
	"github.com/Sternrassler/marvel-extractor/pkg/client"
	"github.com/Sternrassler/marvel-extractor/pkg/throttle"
)

// PageSource fetches a single page from the gateway. *client.Client
// implements this interface.
type PageSource interface {
	FetchPage(ctx context.Context, endpoint string, query url.Values) (*client.Page, error)
}

// PageCache is an optional read-through store consulted before each request.
// A hit serves the page without touching the wire and without throttling.
// Implementations handle their own failures; a broken cache must degrade to
// misses, never fail the fetch.
type PageCache interface {
	Get(ctx context.Context, endpoint string, limit, offset int) (*client.Page, bool)
	Set(ctx context.Context, endpoint string, limit, offset int, page *client.Page)
}

// Config holds fetch loop configuration.
type Config struct {
	// Throttle is the fixed delay before every request, including the first.
	Throttle time.Duration

	// Retry controls the in-place retry of failed pages.
	Retry RetryPolicy

	// Cache optionally serves pages without touching the gateway.
	Cache PageCache
}

// DefaultConfig returns the configuration used in production: a two second
// pre-request delay and a five attempt retry budget.
func DefaultConfig() Config {
	return Config{
		Throttle: throttle.DefaultDelay,
		Retry:    DefaultRetryPolicy(),
	}
}

// Fetcher walks a paginated collection one page at a time.
type Fetcher struct {
	source PageSource
	cache  PageCache
	pacer  *throttle.Pacer
	policy RetryPolicy
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher over the given page source.
func NewFetcher(source PageSource, cfg Config) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("page source is required")
	}

	if cfg.Retry.Interval <= 0 {
		cfg.Retry.Interval = DefaultRetryPolicy().Interval
	}

	logger := log.With().Str("component", "pagination").Logger()

	return &Fetcher{
		source: source,
		cache:  cfg.Cache,
		pacer:  throttle.NewPacer(cfg.Throttle, logger),
		policy: cfg.Retry,
		logger: logger,
	}, nil
}

// Pacer exposes the fetcher's throttle state for reporting.
func (f *Fetcher) Pacer() *throttle.Pacer {
	return f.pacer
}

// FetchAll retrieves records from endpoint until recordLimit is covered.
// A recordLimit of zero means the gateway's reported total, resolved from
// the first page. The offset field of params is mutated as pages advance;
// all other fields, including the request signature, stay untouched for the
// whole session.
//
// Bookkeeping counts a full page size per successful page regardless of how
// many records the page carried, so the returned slice may overshoot
// recordLimit by up to one page.
func (f *Fetcher) FetchAll(ctx context.Context, endpoint string, params *auth.Params, recordLimit int) ([]json.RawMessage, error) {
	if params == nil {
		return nil, fmt.Errorf("auth params are required")
	}
	if recordLimit < 0 {
		return nil, fmt.Errorf("record limit must not be negative")
	}

	pageSize := params.Limit
	if pageSize <= 0 {
		pageSize = auth.PageSize
	}

	var (
		records        []json.RawMessage
		collected      int
		pages          int
		effectiveLimit = recordLimit
		knownTotal     = -1
	)

	start := time.Now()
	f.logger.Info().
		Str("endpoint", endpoint).
		Int("record_limit", recordLimit).
		Int("page_size", pageSize).
		Msg("Starting paginated fetch")

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", client.ErrCancelled, err)
		}

		page := f.lookupCache(ctx, endpoint, pageSize, params.Offset)

		if page == nil {
			err := f.retryInPlace(ctx, endpoint, func() error {
				if err := f.pacer.Wait(ctx); err != nil {
					return fmt.Errorf("%w: %v", client.ErrCancelled, err)
				}

				fetched, err := f.source.FetchPage(ctx, endpoint, params.Values())
				if err != nil {
					return err
				}

				page = fetched
				return nil
			})
			if err != nil {
				return nil, err
			}

			marvelPagesFetchedTotal.WithLabelValues(endpoint).Inc()
			f.storeCache(ctx, endpoint, pageSize, params.Offset, page)
		}

		if knownTotal >= 0 && page.Total != knownTotal {
			marvelInconsistenciesTotal.WithLabelValues(endpoint, ReasonTotalDrift).Inc()
			return nil, &InconsistencyError{
				Endpoint: endpoint,
				Reason:   ReasonTotalDrift,
				Offset:   params.Offset,
				Expected: knownTotal,
				Got:      page.Total,
			}
		}
		knownTotal = page.Total

		expected := pageSize
		if remaining := knownTotal - params.Offset; remaining < expected {
			expected = remaining
			if expected < 0 {
				expected = 0
			}
		}
		if len(page.Results) < expected {
			marvelInconsistenciesTotal.WithLabelValues(endpoint, ReasonShortPage).Inc()
			return nil, &InconsistencyError{
				Endpoint: endpoint,
				Reason:   ReasonShortPage,
				Offset:   params.Offset,
				Expected: expected,
				Got:      len(page.Results),
			}
		}

		records = append(records, page.Results...)
		collected += pageSize
		pages++

		if effectiveLimit == 0 {
			effectiveLimit = knownTotal
			f.logger.Info().
				Str("endpoint", endpoint).
				Int("total", knownTotal).
				Msg("Fetching full collection")
		}

		marvelRecordsCollectedTotal.WithLabelValues(endpoint).Add(float64(len(page.Results)))

		f.logger.Info().
			Str("endpoint", endpoint).
			Int("offset", params.Offset).
			Int("page_records", len(page.Results)).
			Int("records", len(records)).
			Int("collected", collected).
			Int("total", knownTotal).
			Msg("Page processed")

		if collected >= effectiveLimit {
			break
		}

		if len(page.Results) == 0 {
			// The requested limit exceeds what the gateway holds. The
			// collection is exhausted, so stop instead of paging past it.
			f.logger.Info().
				Str("endpoint", endpoint).
				Int("records", len(records)).
				Int("record_limit", effectiveLimit).
				Msg("Collection exhausted before requested limit")
			break
		}

		params.Offset = collected
	}

	f.logger.Info().
		Str("endpoint", endpoint).
		Int("records", len(records)).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("Paginated fetch complete")

	return records, nil
}

func (f *Fetcher) lookupCache(ctx context.Context, endpoint string, pageSize, offset int) *client.Page {
	if f.cache == nil {
		return nil
	}

	page, ok := f.cache.Get(ctx, endpoint, pageSize, offset)
	if !ok {
		return nil
	}

	marvelCacheServedPagesTotal.WithLabelValues(endpoint).Inc()
	f.logger.Debug().
		Str("endpoint", endpoint).
		Int("offset", offset).
		Msg("Page served from cache")

	return page
}

func (f *Fetcher) storeCache(ctx context.Context, endpoint string, pageSize, offset int, page *client.Page) {
	if f.cache == nil {
		return
	}

	f.cache.Set(ctx, endpoint, pageSize, offset, page)
}
