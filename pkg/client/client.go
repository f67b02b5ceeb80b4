// Package client provides the HTTP page client for the Marvel gateway with
// envelope decoding and error classification.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for gateway requests.
var (
	marvelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marvel_requests_total",
		Help: "Total gateway requests by endpoint and status",
	}, []string{"endpoint", "status"})

	marvelRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marvel_request_duration_seconds",
		Help:    "Gateway request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	marvelErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marvel_errors_total",
		Help: "Total gateway errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassTransport represents network failures, non-200 HTTP statuses
	// and malformed response bodies.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassApplication represents well-formed 200 responses whose
	// body-level code is not 200.
	ErrorClassApplication ErrorClass = "application"
)

// Page is one decoded page of the paginated envelope. Results stay opaque;
// interpreting record fields is the transform layer's concern.
type Page struct {
	// Offset echoes the requested offset.
	Offset int

	// Limit echoes the requested page size.
	Limit int

	// Total is the authoritative total record count reported by the gateway.
	Total int

	// Count is the number of results in this page.
	Count int

	// Results holds the raw records in gateway order.
	Results []json.RawMessage
}

// envelope is the gateway response body: {code, status, data:{...}}.
// The body-level code is distinct from the HTTP status line.
type envelope struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Offset  int               `json:"offset"`
		Limit   int               `json:"limit"`
		Total   int               `json:"total"`
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	} `json:"data"`
}

// Client fetches single pages from the Marvel gateway. It performs no
// retries and no pacing itself; the pagination engine owns both.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the gateway root, e.g. https://gateway.marvel.com.
	BaseURL string

	// Timeout bounds a single request. This is distinct from the
	// inter-request delay applied by the pagination engine.
	Timeout time.Duration

	// UserAgent identifies the extractor to the gateway.
	UserAgent string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://gateway.marvel.com",
		Timeout:   30 * time.Second,
		UserAgent: "marvel-extractor/1.0",
	}
}

// New creates a new gateway client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	logger := log.With().Str("component", "marvel-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// FetchPage performs one GET against an endpoint path and decodes the
// envelope. Outcomes: a Page on success, an *APIError classified as
// transport or application on failure, or a cancellation error when ctx
// ends first.
func (c *Client) FetchPage(ctx context.Context, endpoint string, query url.Values) (*Page, error) {
	requestURL := strings.TrimRight(c.config.BaseURL, "/") + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	marvelRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())

	if err != nil {
		// Distinguish caller cancellation from genuine transport failure.
		if ctx.Err() != nil {
			marvelRequestsTotal.WithLabelValues(endpoint, "cancelled").Inc()
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		marvelErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		marvelRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")

		return nil, &APIError{
			ErrorClass: ErrorClassTransport,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	marvelRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		marvelErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(ErrorClassTransport)).
			Msg("Gateway returned non-200 status")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassTransport,
			Message:    resp.Status,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		marvelErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassTransport,
			Message:    "malformed response body",
			Err:        err,
		}
	}

	if env.Code != http.StatusOK {
		marvelErrorsTotal.WithLabelValues(string(ErrorClassApplication)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("code", env.Code).
			Str("error_class", string(ErrorClassApplication)).
			Msg("Gateway returned application error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			ErrorClass: ErrorClassApplication,
			Message:    env.Status,
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("offset", env.Data.Offset).
		Int("count", env.Data.Count).
		Int("total", env.Data.Total).
		Msg("Page fetched")

	return &Page{
		Offset:  env.Data.Offset,
		Limit:   env.Data.Limit,
		Total:   env.Data.Total,
		Count:   env.Data.Count,
		Results: env.Data.Results,
	}, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
