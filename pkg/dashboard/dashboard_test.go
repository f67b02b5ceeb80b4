package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/marvel-extractor/pkg/transform"
)

type fakeSource struct {
	rows []transform.CharacterRow
	err  error
}

func (s *fakeSource) Rows(ctx context.Context) ([]transform.CharacterRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func newTestServer(t *testing.T, source Source) *Server {
	t.Helper()

	server, err := NewServer(source, 0)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

func get(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresSource(t *testing.T) {
	if _, err := NewServer(nil, 8080); err == nil {
		t.Error("NewServer(nil) expected error, got nil")
	}
}

func TestIndex_BeforeFirstReload(t *testing.T) {
	server := newTestServer(t, &fakeSource{})

	rec := get(t, server, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No data loaded yet") {
		t.Error("expected empty-state message before first reload")
	}
}

func TestIndex_RanksByComicCount(t *testing.T) {
	source := &fakeSource{rows: []transform.CharacterRow{
		{ID: 3, Name: "Aaron Stack", Comics: 14},
		{ID: 1, Name: "Spider-Man", Comics: 4043},
		{ID: 2, Name: "Iron Man", Comics: 2662},
	}}
	server := newTestServer(t, source)

	if err := server.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	rec := get(t, server, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	spider := strings.Index(body, "Spider-Man")
	iron := strings.Index(body, "Iron Man")
	aaron := strings.Index(body, "Aaron Stack")

	if spider == -1 || iron == -1 || aaron == -1 {
		t.Fatalf("missing character names in body:\n%s", body)
	}
	if !(spider < iron && iron < aaron) {
		t.Errorf("rank order wrong: spider=%d iron=%d aaron=%d", spider, iron, aaron)
	}
}

func TestIndex_UnknownPath(t *testing.T) {
	server := newTestServer(t, &fakeSource{})

	rec := get(t, server, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	source := &fakeSource{rows: []transform.CharacterRow{{ID: 1, Name: "X", Comics: 1}}}
	server := newTestServer(t, source)

	if err := server.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	rec := get(t, server, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("status = %q, want ok", response["status"])
	}
	if response["characters"] != "1" {
		t.Errorf("characters = %q, want 1", response["characters"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeSource{})

	rec := get(t, server, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected prometheus output on /metrics")
	}
}

func TestReload_FailureKeepsOldRows(t *testing.T) {
	source := &fakeSource{rows: []transform.CharacterRow{{ID: 1, Name: "Spider-Man", Comics: 10}}}
	server := newTestServer(t, source)

	if err := server.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	source.err = errors.New("source down")
	if err := server.Reload(context.Background()); err == nil {
		t.Fatal("Reload() expected error, got nil")
	}

	rec := get(t, server, "/")
	if !strings.Contains(rec.Body.String(), "Spider-Man") {
		t.Error("old rows lost after failed reload")
	}
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.csv")
	rows := []transform.CharacterRow{
		{ID: 1, Name: "Spider-Man", Img: "a.jpg", Comics: 4043},
		{ID: 2, Name: "Iron Man", Img: "b.jpg", Comics: 2662},
	}
	if err := transform.WriteCSVFile(path, rows); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	got, err := CSVSource{Path: path}.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(rows) = %d, want 2", len(got))
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	source := CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}
	if _, err := source.Rows(context.Background()); err == nil {
		t.Error("Rows() on missing file expected error, got nil")
	}
}
