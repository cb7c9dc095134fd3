package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"travelrules/cache"
	"travelrules/core"
)

// PopularRuleSource supplies the most-viewed rules.
type PopularRuleSource interface {
	GetPopularRules(ctx context.Context, limit int) ([]core.Rule, error)
	CountRules(ctx context.Context) (int64, error)
}

// UsageCounters supplies aggregate usage numbers for the stats screen.
type UsageCounters interface {
	CountEventsByType(ctx context.Context) (map[core.EventType]int64, error)
}

// UsageStats is the aggregate snapshot shown on the statistics screen.
type UsageStats struct {
	TotalRules    int64                    `json:"total_rules"`
	EventCounts   map[core.EventType]int64 `json:"event_counts"`
	PopularRules  []core.Rule              `json:"popular_rules"`
	CacheStats    cache.Stats              `json:"cache_stats"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// StatsService serves popularity and usage statistics. The popular-rules
// query is the read-mostly hot path, so it is memoized in an injected TTL
// cache rather than hitting the store on every request.
type StatsService struct {
	rules      PopularRuleSource
	events     UsageCounters
	rulesCache *cache.Cache[[]core.Rule]
	popularTTL time.Duration
	logger     *zap.SugaredLogger
}

// NewStatsService creates a stats service. The cache is owned by the
// caller (the app wires one instance and stops its sweep on shutdown).
func NewStatsService(
	rules PopularRuleSource,
	events UsageCounters,
	rulesCache *cache.Cache[[]core.Rule],
	popularTTL time.Duration,
	logger *zap.SugaredLogger,
) *StatsService {
	if rules == nil {
		panic("rules is required")
	}
	if events == nil {
		panic("events is required")
	}
	if rulesCache == nil {
		panic("rulesCache is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if popularTTL <= 0 {
		popularTTL = time.Hour
	}
	return &StatsService{
		rules:      rules,
		events:     events,
		rulesCache: rulesCache,
		popularTTL: popularTTL,
		logger:     logger,
	}
}

// PopularRules returns the most viewed rules, served from cache when the
// memoized copy is still fresh.
func (s *StatsService) PopularRules(ctx context.Context, limit int) ([]core.Rule, error) {
	if cached, ok := s.rulesCache.Get(cache.KeyPopularRules); ok {
		if len(cached) >= limit {
			return cached[:limit], nil
		}
		return cached, nil
	}

	rules, err := s.rules.GetPopularRules(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.rulesCache.Set(cache.KeyPopularRules, rules, s.popularTTL)
	return rules, nil
}

// InvalidatePopular drops the memoized popular-rules list, forcing the
// next read to hit the store. Called after rule imports.
func (s *StatsService) InvalidatePopular() {
	s.rulesCache.Delete(cache.KeyPopularRules)
}

// Usage builds the aggregate statistics snapshot.
func (s *StatsService) Usage(ctx context.Context, popularLimit int) (*UsageStats, error) {
	total, err := s.rules.CountRules(ctx)
	if err != nil {
		return nil, err
	}

	eventCounts, err := s.events.CountEventsByType(ctx)
	if err != nil {
		return nil, err
	}

	popular, err := s.PopularRules(ctx, popularLimit)
	if err != nil {
		return nil, err
	}

	return &UsageStats{
		TotalRules:   total,
		EventCounts:  eventCounts,
		PopularRules: popular,
		CacheStats:   s.rulesCache.GetStats(),
		GeneratedAt:  time.Now(),
	}, nil
}
