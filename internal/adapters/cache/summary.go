package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"itgportal/internal/adapters/http/perf"
	"itgportal/internal/domain/summary"
)

// keyPrefix carries the value schema version; bump it when YearlySummary changes shape.
const keyPrefix = "itg:summary:v2:"

// DefaultTTL bounds how long a cached yearly summary may be served.
const DefaultTTL = 10 * time.Minute

// Scope separates coach availability summaries from client attendance summaries.
type Scope string

const (
	ScopeAvailability Scope = "availability"
	ScopeAttendance   Scope = "attendance"
)

// SummaryCache stores computed yearly summaries.
type SummaryCache interface {
	Get(ctx context.Context, scope Scope, entityID string, year int) (summary.YearlySummary, bool, error)
	Set(ctx context.Context, scope Scope, s summary.YearlySummary) error
	Invalidate(ctx context.Context, scope Scope, entityID string, years ...int) error
}

// Key returns the redis key for one summary.
func Key(scope Scope, entityID string, year int) string {
	return fmt.Sprintf("%s%s:%s:%d", keyPrefix, scope, entityID, year)
}

// RedisSummaryCache implements SummaryCache with JSON values and a TTL.
type RedisSummaryCache struct {
	client    *redis.Client
	ttl       time.Duration
	collector *perf.Collector
}

// NewRedisSummaryCache creates a cache on client. A non-positive ttl uses DefaultTTL.
// collector may be nil.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration, collector *perf.Collector) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSummaryCache{client: client, ttl: ttl, collector: collector}
}

// Get returns the cached summary and whether it was present.
// PRE: entityID is non-empty
// POST: (zero, false, nil) on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, scope Scope, entityID string, year int) (summary.YearlySummary, bool, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, Key(scope, entityID, year)).Bytes()
	if err == redis.Nil {
		c.record("miss", start)
		return summary.YearlySummary{}, false, nil
	}
	if err != nil {
		return summary.YearlySummary{}, false, err
	}

	var s summary.YearlySummary
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("summary_cache_corrupt", "scope", scope, "entity_id", entityID, "year", year, "error", err)
		c.record("miss", start)
		return summary.YearlySummary{}, false, nil
	}
	c.record("hit", start)
	return s, true, nil
}

// Set stores s under its entity and year.
func (c *RedisSummaryCache) Set(ctx context.Context, scope Scope, s summary.YearlySummary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(scope, s.EntityID, s.Year), b, c.ttl).Err()
}

// Invalidate drops the cached summaries for the given years.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, scope Scope, entityID string, years ...int) error {
	if len(years) == 0 {
		return nil
	}
	keys := make([]string, len(years))
	for i, y := range years {
		keys[i] = Key(scope, entityID, y)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisSummaryCache) record(outcome string, start time.Time) {
	c.collector.Record(perf.Entry{
		Kind:       perf.KindCache,
		Path:       outcome,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Timestamp:  start,
	})
}

// NoopSummaryCache never stores anything. Used when no redis address is configured.
type NoopSummaryCache struct{}

// NewNoopSummaryCache creates a cache that always misses.
func NewNoopSummaryCache() *NoopSummaryCache {
	return &NoopSummaryCache{}
}

// Get always misses.
func (NoopSummaryCache) Get(context.Context, Scope, string, int) (summary.YearlySummary, bool, error) {
	return summary.YearlySummary{}, false, nil
}

// Set discards the summary.
func (NoopSummaryCache) Set(context.Context, Scope, summary.YearlySummary) error { return nil }

// Invalidate does nothing.
func (NoopSummaryCache) Invalidate(context.Context, Scope, string, ...int) error { return nil }
