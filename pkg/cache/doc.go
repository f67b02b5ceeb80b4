// Package cache provides page caching for Marvel gateway responses with a
// Redis backend.
//
// The cache stores decoded pages rather than raw HTTP responses, keyed by
// endpoint, page size and offset. Reruns of an extraction serve unchanged
// pages from Redis without touching the gateway, which keeps repeated runs
// inside the gateway's rate budget.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Endpoint: "/v1/public/characters",
//		Limit:    100,
//		Offset:   200,
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the gateway
//	}
//
// # Page Fetch Integration
//
// PageStore adapts the manager to the fetch loop's cache interface. It
// degrades to misses when Redis is unreachable, so a broken cache never
// fails an extraction:
//
//	store := cache.NewPageStore(manager, time.Hour)
//	cfg := pagination.DefaultConfig()
//	cfg.Cache = store
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - marvel_cache_hits_total{layer="redis"} - Cache hits
//   - marvel_cache_misses_total - Cache misses
//   - marvel_cache_size_bytes{layer="redis"} - Cache size
//   - marvel_cache_errors_total{operation} - Cache operation errors
package cache
