package transform

import (
	"context"
	"os"
	"testing"
)

// setupTestStore connects to the Postgres instance named by
// MARVEL_TEST_POSTGRES_DSN. Tests are skipped when the variable is unset;
// tests/integration covers the same paths against a containerized instance.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("MARVEL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MARVEL_TEST_POSTGRES_DSN not set, skipping Postgres tests")
	}

	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if _, err := store.db.ExecContext(ctx, `TRUNCATE TABLE characters`); err != nil {
		t.Fatalf("truncate characters: %v", err)
	}

	t.Cleanup(func() {
		store.db.ExecContext(context.Background(), `TRUNCATE TABLE characters`)
		store.Close()
	})

	return store
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open with empty DSN should return error")
	}
}

func TestStore_SaveAndTopByComics(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleRows()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	top, err := store.TopByComics(ctx, 2)
	if err != nil {
		t.Fatalf("TopByComics() error = %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].Name != "Spider-Man" || top[1].Name != "Iron Man" {
		t.Errorf("top = %+v, want Spider-Man then Iron Man", top)
	}
}

func TestStore_TopByComics_NoLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleRows()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	all, err := store.TopByComics(ctx, 0)
	if err != nil {
		t.Fatalf("TopByComics() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestStore_SaveUpsertsExistingRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, []CharacterRow{{ID: 1, Name: "Old Name", Comics: 1}}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := store.Save(ctx, []CharacterRow{{ID: 1, Name: "New Name", Comics: 7}}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	rows, err := store.TopByComics(ctx, 0)
	if err != nil {
		t.Fatalf("TopByComics() error = %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (upsert, not insert)", len(rows))
	}
	if rows[0].Name != "New Name" || rows[0].Comics != 7 {
		t.Errorf("row = %+v, want refreshed name and count", rows[0])
	}
}

func TestStore_SaveEmptyBatch(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Save(context.Background(), nil); err != nil {
		t.Errorf("Save(nil) error = %v, want nil", err)
	}
}

func TestStore_Count(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	if err := store.Save(ctx, sampleRows()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestStore_MigrateIdempotent(t *testing.T) {
	store := setupTestStore(t)

	// Second run must be a no-op, not a failure.
	if err := store.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}
