// Package dashboard serves an HTML view of extracted characters, ranked by
// how many comics they appear in.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/pkg/transform"
)

var (
	marvelDashboardRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_dashboard_requests_total",
			Help: "Total number of dashboard HTTP requests by path and status",
		},
		[]string{"path", "status"},
	)

	marvelDashboardReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marvel_dashboard_reloads_total",
			Help: "Total number of dashboard data reloads by outcome",
		},
		[]string{"outcome"},
	)
)

// Source supplies the character rows the dashboard displays.
type Source interface {
	Rows(ctx context.Context) ([]transform.CharacterRow, error)
}

// Server serves the character ranking over HTTP.
type Server struct {
	source Source
	server *http.Server
	logger zerolog.Logger

	mu       sync.RWMutex
	rows     []transform.CharacterRow
	loadedAt time.Time
}

// NewServer creates a dashboard server on the given port. Call Reload before
// Start to serve data from the first request on.
func NewServer(source Source, port int) (*Server, error) {
	if source == nil {
		return nil, fmt.Errorf("row source is required")
	}

	mux := http.NewServeMux()
	s := &Server{
		source: source,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		logger: log.With().Str("component", "dashboard").Logger(),
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s, nil
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Dashboard listening")
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Reload swaps the displayed rows for a fresh read from the source. The old
// rows stay in place when the read fails.
func (s *Server) Reload(ctx context.Context) error {
	rows, err := s.source.Rows(ctx)
	if err != nil {
		marvelDashboardReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("reload rows: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Comics != rows[j].Comics {
			return rows[i].Comics > rows[j].Comics
		}
		return rows[i].Name < rows[j].Name
	})

	s.mu.Lock()
	s.rows = rows
	s.loadedAt = time.Now()
	s.mu.Unlock()

	marvelDashboardReloadsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int("rows", len(rows)).Msg("Dashboard data reloaded")

	return nil
}

func (s *Server) snapshot() ([]transform.CharacterRow, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows, s.loadedAt
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		marvelDashboardRequestsTotal.WithLabelValues(r.URL.Path, "404").Inc()
		http.NotFound(w, r)
		return
	}

	rows, loadedAt := s.snapshot()

	data := indexData{
		Rows:     rows,
		LoadedAt: loadedAt,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Template rendering failed")
		marvelDashboardRequestsTotal.WithLabelValues("/", "500").Inc()
		return
	}

	marvelDashboardRequestsTotal.WithLabelValues("/", "200").Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rows, loadedAt := s.snapshot()

	response := map[string]string{
		"status":     "ok",
		"characters": strconv.Itoa(len(rows)),
	}
	if !loadedAt.IsZero() {
		response["loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	marvelDashboardRequestsTotal.WithLabelValues("/healthz", "200").Inc()
}

type indexData struct {
	Rows     []transform.CharacterRow
	LoadedAt time.Time
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Marvel Characters by Comic Appearances</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #b71c1c; color: white; }
tr:nth-child(even) { background: #f5f5f5; }
.count { text-align: right; }
</style>
</head>
<body>
<h1>Marvel Characters by Comic Appearances</h1>
{{if .LoadedAt.IsZero}}
<p>No data loaded yet.</p>
{{else}}
<p>{{len .Rows}} characters, loaded {{.LoadedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<table>
<tr><th>#</th><th>Name</th><th class="count">Comics</th></tr>
{{range $i, $row := .Rows}}
<tr><td>{{inc $i}}</td><td>{{$row.Name}}</td><td class="count">{{$row.Comics}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))
