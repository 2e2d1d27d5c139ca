package prediction

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Cache deduplicates prediction output computation across signal
// bundles that fingerprint identically.
type Cache interface {
	Get(ctx context.Context, signals Signals) ([]byte, bool)
	Set(ctx context.Context, signals Signals, output []byte) error
	InvalidateFile(ctx context.Context, path string) error
	InvalidateAll(ctx context.Context) error
	HitRate() float64
}

// counters is embedded by both cache implementations so hit-rate
// accounting and otel instrument wiring happen exactly once.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64

	meterOnce  sync.Once
	hitCounter metric.Int64Counter
	missCounter metric.Int64Counter
}

func (c *counters) instruments() {
	c.meterOnce.Do(func() {
		meter := otel.Meter("prediction")
		c.hitCounter, _ = meter.Int64Counter("prediction_cache_hits")
		c.missCounter, _ = meter.Int64Counter("prediction_cache_misses")
	})
}

func (c *counters) recordHit(ctx context.Context) {
	c.instruments()
	c.hits.Add(1)
	if c.hitCounter != nil {
		c.hitCounter.Add(ctx, 1)
	}
}

func (c *counters) recordMiss(ctx context.Context) {
	c.instruments()
	c.misses.Add(1)
	if c.missCounter != nil {
		c.missCounter.Add(ctx, 1)
	}
}

// HitRate returns hits/(hits+misses), or 0.0 (never NaN) when no
// lookups have happened yet.
func (c *counters) HitRate() float64 {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// referencedPaths extracts every filesystem path a signal bundle
// touches, so InvalidateFile can find cache entries built from signals
// that mentioned a given path without needing to parse it back out of
// an opaque fingerprint.
func referencedPaths(s Signals) []string {
	var paths []string
	if s.File.ActiveFile != nil {
		paths = append(paths, *s.File.ActiveFile)
	}
	if s.File.Directory != nil {
		paths = append(paths, *s.File.Directory)
	}
	paths = append(paths, s.File.Imports...)
	paths = append(paths, s.Git.ModifiedFiles...)
	return paths
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}
	return false
}

// MapCache is an in-process cache used by tests and single-process
// deployments that don't want a live Redis dependency.
type MapCache struct {
	counters

	mu      sync.RWMutex
	entries map[string][]byte
	paths   map[string][]string
}

func NewMapCache() *MapCache {
	return &MapCache{
		entries: make(map[string][]byte),
		paths:   make(map[string][]string),
	}
}

func (c *MapCache) Get(ctx context.Context, signals Signals) ([]byte, bool) {
	key := Fingerprint(signals)
	c.mu.RLock()
	out, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.recordHit(ctx)
	} else {
		c.recordMiss(ctx)
	}
	return out, ok
}

func (c *MapCache) Set(_ context.Context, signals Signals, output []byte) error {
	key := Fingerprint(signals)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = output
	c.paths[key] = referencedPaths(signals)
	return nil
}

func (c *MapCache) InvalidateFile(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, paths := range c.paths {
		if containsPath(paths, path) {
			delete(c.entries, key)
			delete(c.paths, key)
		}
	}
	return nil
}

func (c *MapCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.paths = make(map[string][]string)
	return nil
}

// RedisCache is a Redis-backed Cache, grounded on the teacher's
// internal/skills/redis_cache.go RedisSkillsCache: a fingerprint-keyed
// value plus a parallel per-path index set used for InvalidateFile,
// since Redis has no native "keys referencing path X" query.
type RedisCache struct {
	counters

	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func entryKey(fingerprint string) string { return "prediction:cache:" + fingerprint }
func pathIndexKey(path string) string    { return "prediction:cache:path:" + path }

func (c *RedisCache) Get(ctx context.Context, signals Signals) ([]byte, bool) {
	key := Fingerprint(signals)
	val, err := c.client.Get(ctx, entryKey(key)).Bytes()
	if err != nil {
		c.recordMiss(ctx)
		return nil, false
	}
	c.recordHit(ctx)
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, signals Signals, output []byte) error {
	key := Fingerprint(signals)
	if err := c.client.Set(ctx, entryKey(key), output, 0).Err(); err != nil {
		return err
	}
	paths := referencedPaths(signals)
	if len(paths) == 0 {
		return nil
	}
	raw, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := c.client.SAdd(ctx, pathIndexKey(p), key).Err(); err != nil {
			return err
		}
	}
	return c.client.Set(ctx, entryKey(key)+":paths", raw, 0).Err()
}

func (c *RedisCache) InvalidateFile(ctx context.Context, path string) error {
	members, err := c.client.SMembers(ctx, pathIndexKey(path)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}
	for _, fingerprint := range members {
		if err := c.client.Del(ctx, entryKey(fingerprint), entryKey(fingerprint)+":paths").Err(); err != nil {
			return err
		}
	}
	return c.client.Del(ctx, pathIndexKey(path)).Err()
}

func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "prediction:cache:*", 200).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
