// Package testutil provides testing utilities for the Marvel extractor.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// defaultPageLimit mirrors the gateway's page size when a request carries no
// limit parameter.
const defaultPageLimit = 20

// maxPageLimit is the largest page size the gateway accepts.
const maxPageLimit = 100

// MockResponse defines the behavior for a mock gateway endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// plannedFailure is a one-shot failure injected ahead of a path's normal
// responses. A zero HTTPStatus renders an application failure: HTTP 200
// with a non-200 envelope code.
type plannedFailure struct {
	HTTPStatus int
	Code       int
	Status     string
}

// MockGateway is a configurable mock Marvel gateway for testing. Seeded
// collections are served with real offset pagination and envelope bodies.
type MockGateway struct {
	server *httptest.Server

	mu          sync.RWMutex
	collections map[string][]json.RawMessage
	handlers    map[string]func(w http.ResponseWriter, r *http.Request)
	failures    map[string][]plannedFailure

	// RequireAuth rejects requests without apikey, ts and hash parameters.
	RequireAuth bool

	// Tracking
	RequestCount int
	offsets      map[string][]int
	lastQuery    url.Values
	lastHeader   http.Header
}

// NewMockGateway creates a new mock gateway server.
func NewMockGateway() *MockGateway {
	mock := &MockGateway{
		collections: make(map[string][]json.RawMessage),
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		failures:    make(map[string][]plannedFailure),
		offsets:     make(map[string][]int),
		RequireAuth: true,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.lastQuery = r.URL.Query()
		mock.lastHeader = r.Header.Clone()
		if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			mock.offsets[r.URL.Path] = append(mock.offsets[r.URL.Path], offset)
		}
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGateway) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGateway) Close() {
	m.server.Close()
}

// Reset clears collections, planned failures and tracking counters.
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string][]json.RawMessage)
	m.handlers = make(map[string]func(w http.ResponseWriter, r *http.Request))
	m.failures = make(map[string][]plannedFailure)
	m.offsets = make(map[string][]int)
	m.RequestCount = 0
	m.lastQuery = nil
	m.lastHeader = nil
}

// SeedCollection fills a path with total synthetic character records.
func (m *MockGateway) SeedCollection(path string, total int) {
	records := make([]json.RawMessage, total)
	for i := range records {
		records[i] = CharacterRecord(i)
	}
	m.SetCollection(path, records)
}

// SetCollection serves the given records on path with offset pagination.
func (m *MockGateway) SetCollection(path string, records []json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[path] = records
}

// FailNext queues a one-shot HTTP failure ahead of path's normal responses.
// Queued failures are consumed in order before any page is served.
func (m *MockGateway) FailNext(path string, httpStatus int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = append(m.failures[path], plannedFailure{HTTPStatus: httpStatus})
}

// FailNextApplication queues a one-shot application failure: HTTP 200 with a
// non-200 envelope code.
func (m *MockGateway) FailNextApplication(path string, code int, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = append(m.failures[path], plannedFailure{Code: code, Status: status})
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGateway) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockGateway) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGateway) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Offsets returns the offsets requested on path, in order.
func (m *MockGateway) Offsets(path string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.offsets[path]...)
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockGateway) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastHeader returns the headers of the most recent request.
func (m *MockGateway) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// takeFailure pops the next planned failure for path, if any.
func (m *MockGateway) takeFailure(path string) (plannedFailure, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.failures[path]
	if len(queue) == 0 {
		return plannedFailure{}, false
	}

	next := queue[0]
	m.failures[path] = queue[1:]
	return next, true
}

// defaultHandler serves seeded collections with envelope pagination.
func (m *MockGateway) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if failure, ok := m.takeFailure(r.URL.Path); ok {
		if failure.HTTPStatus != 0 {
			w.WriteHeader(failure.HTTPStatus)
			fmt.Fprintf(w, `{"code":%d,"status":"injected failure"}`, failure.HTTPStatus)
			return
		}
		w.WriteHeader(http.StatusOK)
		body, _ := json.Marshal(map[string]any{
			"code":   failure.Code,
			"status": failure.Status,
		})
		w.Write(body)
		return
	}

	query := r.URL.Query()
	if m.RequireAuth {
		if query.Get("apikey") == "" || query.Get("ts") == "" || query.Get("hash") == "" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"code":"MissingParameter","message":"You must pass a valid API key plus hash."}`))
			return
		}
	}

	m.mu.RLock()
	records, exists := m.collections[r.URL.Path]
	m.mu.RUnlock()

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"status":"We couldn't find that resource."}`))
		return
	}

	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	limit := defaultPageLimit
	if parsed, err := strconv.Atoi(query.Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	page := []json.RawMessage{}
	if offset < len(records) {
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		page = records[offset:end]
	}

	envelope := map[string]any{
		"code":   200,
		"status": "Ok",
		"data": map[string]any{
			"offset":  offset,
			"limit":   limit,
			"total":   len(records),
			"count":   len(page),
			"results": page,
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope)
}

// CharacterRecord builds a synthetic character record with a stable id and
// a comic count derived from the index.
func CharacterRecord(i int) json.RawMessage {
	record := map[string]any{
		"id":   1000000 + i,
		"name": fmt.Sprintf("Character %04d", i),
		"thumbnail": map[string]string{
			"path":      fmt.Sprintf("http://i.annihil.us/u/prod/marvel/%d", i),
			"extension": "jpg",
		},
		"comics": map[string]any{
			"available": (i * 7) % 500,
		},
	}

	data, _ := json.Marshal(record)
	return data
}
