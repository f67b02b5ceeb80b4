package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client for testing. Tests are skipped
// when no local Redis is available; tests/integration covers the same paths
// against a containerized instance.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	// Flush test DB before each test
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testEntry(expires time.Time) *Entry {
	return &Entry{
		Offset: 0,
		Limit:  100,
		Total:  250,
		Count:  100,
		Results: []json.RawMessage{
			json.RawMessage(`{"id":1011334,"name":"3-D Man"}`),
			json.RawMessage(`{"id":1017100,"name":"A-Bomb (HAS)"}`),
		},
		Expires:  expires,
		CachedAt: time.Now(),
	}
}

func TestNewManager(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	manager := NewManager(client)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "/v1/public/characters",
		Limit:    100,
		Offset:   0,
	}

	entry := testEntry(time.Now().Add(5 * time.Minute))

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if retrieved.Total != entry.Total {
		t.Errorf("Total mismatch: got %d, want %d", retrieved.Total, entry.Total)
	}
	if retrieved.Count != entry.Count {
		t.Errorf("Count mismatch: got %d, want %d", retrieved.Count, entry.Count)
	}
	if len(retrieved.Results) != len(entry.Results) {
		t.Fatalf("Results length mismatch: got %d, want %d", len(retrieved.Results), len(entry.Results))
	}
	if string(retrieved.Results[0]) != string(entry.Results[0]) {
		t.Errorf("Results[0] mismatch: got %s, want %s", retrieved.Results[0], entry.Results[0])
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "/v1/public/nonexistent",
		Limit:    100,
		Offset:   0,
	}

	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_ExpiredEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "/v1/public/characters",
		Limit:    100,
		Offset:   0,
	}

	// Create already expired entry
	entry := testEntry(time.Now().Add(-1 * time.Hour))

	// Set should not cache expired entries
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get should return cache miss
	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "/v1/public/characters",
		Limit:    100,
		Offset:   100,
	}

	entry := testEntry(time.Now().Add(5 * time.Minute))

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}

	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "/v1/public/characters",
		Limit:    100,
		Offset:   0,
	}

	err := manager.Set(ctx, key, nil)
	if err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestManager_PagesIsolatedByOffset(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	first := testEntry(time.Now().Add(5 * time.Minute))
	second := testEntry(time.Now().Add(5 * time.Minute))
	second.Offset = 100
	second.Results = []json.RawMessage{json.RawMessage(`{"id":1009144,"name":"A.I.M."}`)}
	second.Count = 1

	keyFirst := Key{Endpoint: "/v1/public/characters", Limit: 100, Offset: 0}
	keySecond := Key{Endpoint: "/v1/public/characters", Limit: 100, Offset: 100}

	if err := manager.Set(ctx, keyFirst, first); err != nil {
		t.Fatalf("Set first page failed: %v", err)
	}
	if err := manager.Set(ctx, keySecond, second); err != nil {
		t.Fatalf("Set second page failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, keySecond)
	if err != nil {
		t.Fatalf("Get second page failed: %v", err)
	}
	if retrieved.Offset != 100 || retrieved.Count != 1 {
		t.Errorf("second page = offset %d count %d, want offset 100 count 1", retrieved.Offset, retrieved.Count)
	}
}
