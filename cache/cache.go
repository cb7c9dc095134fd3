// Package cache provides a mutex-guarded in-memory TTL cache with hit/miss
// statistics, lazy expiry on read, and an optional periodic sweep goroutine.
//
// Instances are constructed and owned by their callers (typically one typed
// cache per memoized query) instead of living as process-wide state; the
// owning component starts the sweep on startup and stops it on shutdown.
package cache

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"travelrules/metrics"
)

// Entry is a stored value with its lifecycle timestamps. An entry exists
// from Set until Delete, lazy expiry on read, or a sweep pass.
type Entry[T any] struct {
	Data      T
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a snapshot of cache performance counters.
// HitRate is a percentage, 0 when the cache has not been read yet.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Config holds cache tuning options.
type Config struct {
	// Name labels this instance in metrics.
	Name string

	// DefaultTTL is the entry lifetime used by SetDefault. Set takes an
	// explicit ttl and never falls back to this.
	DefaultTTL time.Duration

	// CleanupInterval is how often the background sweep runs
	// (0 = no sweep; expiry then happens only lazily on reads).
	CleanupInterval time.Duration
}

// DefaultConfig returns the production defaults: one hour TTL, sweep every
// ten minutes.
func DefaultConfig() Config {
	return Config{
		Name:            "default",
		DefaultTTL:      time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// Cache is a generic key/value store with per-entry expiry.
//
// All methods are safe for concurrent use: unlike a cooperative
// single-threaded runtime, Go interleaves goroutines preemptively, so the
// map and counters are guarded by a mutex and atomics.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]Entry[T]

	hits   atomic.Int64
	misses atomic.Int64

	config Config
	logger *zap.SugaredLogger

	ctx            context.Context
	cancel         context.CancelFunc
	cleanupDone    chan struct{}
	cleanupStarted atomic.Bool
}

// New creates a cache. A nil config uses DefaultConfig. The background
// sweep is not started; call StartCleanup to enable it and Stop on
// shutdown.
func New[T any](logger *zap.SugaredLogger, config *Config) *Cache[T] {
	if logger == nil {
		panic("logger is required")
	}

	cfg := DefaultConfig()
	if config != nil {
		if config.Name != "" {
			cfg.Name = config.Name
		}
		if config.DefaultTTL > 0 {
			cfg.DefaultTTL = config.DefaultTTL
		}
		cfg.CleanupInterval = config.CleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger.Debugw("cache initialized", "cache", cfg.Name)

	return &Cache[T]{
		entries:     make(map[string]Entry[T]),
		config:      cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

// Get returns the value stored under key. The second return is false on a
// miss or when the entry has expired; expired entries are evicted here, at
// read time, not only by the sweep.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.config.Name).Inc()
		return zero, false
	}

	now := time.Now()
	if !now.Before(entry.ExpiresAt) {
		delete(c.entries, key)
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.config.Name).Inc()
		metrics.CacheEvictions.WithLabelValues(c.config.Name).Inc()
		c.logger.Debugw("cache expired",
			"cache", c.config.Name,
			"key", key,
			"age", now.Sub(entry.CreatedAt).Round(time.Second),
		)
		return zero, false
	}

	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.config.Name).Inc()
	return entry.Data, true
}

// Set stores value under key for ttl, overwriting any previous entry.
// A zero or negative ttl produces an entry that is already expired at the
// next read.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	c.entries[key] = Entry[T]{
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.logger.Debugw("cache set",
		"cache", c.config.Name,
		"key", key,
		"ttl", ttl,
		"size", size,
	)
}

// SetDefault stores value under key using the configured default TTL.
func (c *Cache[T]) SetDefault(key string, value T) {
	c.Set(key, value, c.config.DefaultTTL)
}

// Delete removes an entry and reports whether it existed.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	return ok
}

// Has reports whether key holds a live entry. Equivalent to Get: it counts
// toward hit/miss statistics and evicts an expired entry.
func (c *Cache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Cleanup evicts every expired entry and returns how many were removed.
// The periodic sweep calls this; it is exported so callers with their own
// scheduling can run it directly.
func (c *Cache[T]) Cleanup() int {
	now := time.Now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(c.config.Name).Add(float64(removed))
		c.logger.Debugw("cache cleanup completed",
			"cache", c.config.Name,
			"removed", removed,
			"remaining", remaining,
		)
	}
	return removed
}

// Clear empties the cache unconditionally. Statistics are kept.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	size := len(c.entries)
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()

	c.logger.Infow("cache cleared", "cache", c.config.Name, "removed", size)
}

// Keys returns a snapshot of all keys, including not-yet-swept expired ones.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the current number of entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the hit/miss counters and current size.
func (c *Cache[T]) GetStats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = math.Round(float64(hits)/float64(total)*100*100) / 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Size:    size,
		HitRate: hitRate,
	}
}

// ResetStats zeroes the hit/miss counters.
func (c *Cache[T]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// StartCleanup starts the periodic sweep goroutine. Safe to call more than
// once; only the first call has an effect. No-op when CleanupInterval is
// zero.
func (c *Cache[T]) StartCleanup() {
	if !c.cleanupStarted.CompareAndSwap(false, true) {
		return
	}

	if c.config.CleanupInterval <= 0 {
		// Close immediately so Stop never blocks.
		close(c.cleanupDone)
		return
	}

	c.logger.Infow("cache cleanup scheduler started",
		"cache", c.config.Name,
		"interval", c.config.CleanupInterval,
	)
	go c.cleanupLoop()
}

func (c *Cache[T]) cleanupLoop() {
	defer close(c.cleanupDone)

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Stop cancels the sweep goroutine and waits for it to exit. Safe to call
// even if StartCleanup was never called.
func (c *Cache[T]) Stop() {
	c.cancel()
	if c.cleanupStarted.Load() {
		<-c.cleanupDone
	}
}
