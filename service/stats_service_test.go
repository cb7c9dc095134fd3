package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelrules/cache"
	"travelrules/core"
)

// fakePopularSource counts store reads so tests can prove memoization.
type fakePopularSource struct {
	rules []core.Rule
	calls int
}

func (f *fakePopularSource) GetPopularRules(_ context.Context, limit int) ([]core.Rule, error) {
	f.calls++
	if limit < len(f.rules) {
		return f.rules[:limit], nil
	}
	return f.rules, nil
}

func (f *fakePopularSource) CountRules(_ context.Context) (int64, error) {
	return int64(len(f.rules)), nil
}

type fakeCounters struct{}

func (fakeCounters) CountEventsByType(_ context.Context) (map[core.EventType]int64, error) {
	return map[core.EventType]int64{core.EventSearchPerformed: 7}, nil
}

func newStatsService(t *testing.T, src *fakePopularSource) *StatsService {
	t.Helper()
	rulesCache := cache.New[[]core.Rule](zap.NewNop().Sugar(), &cache.Config{Name: "test"})
	t.Cleanup(rulesCache.Stop)
	return NewStatsService(src, fakeCounters{}, rulesCache, time.Minute, zap.NewNop().Sugar())
}

// TestStatsService_PopularMemoized verifies repeated reads inside the TTL
// hit the store exactly once.
func TestStatsService_PopularMemoized(t *testing.T) {
	src := &fakePopularSource{rules: []core.Rule{*serviceRule("a"), *serviceRule("b")}}
	svc := newStatsService(t, src)

	for i := 0; i < 5; i++ {
		rules, err := svc.PopularRules(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, rules, 2)
	}

	assert.Equal(t, 1, src.calls, "store queried once, rest served from cache")
}

func TestStatsService_PopularRespectsLimit(t *testing.T) {
	src := &fakePopularSource{rules: []core.Rule{*serviceRule("a"), *serviceRule("b"), *serviceRule("c")}}
	svc := newStatsService(t, src)

	// Warm the cache with the full list, then ask for fewer.
	_, err := svc.PopularRules(context.Background(), 10)
	require.NoError(t, err)

	rules, err := svc.PopularRules(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, 1, src.calls)
}

// TestStatsService_InvalidatePopular verifies invalidation forces the next
// read back to the store.
func TestStatsService_InvalidatePopular(t *testing.T) {
	src := &fakePopularSource{rules: []core.Rule{*serviceRule("a")}}
	svc := newStatsService(t, src)

	_, err := svc.PopularRules(context.Background(), 10)
	require.NoError(t, err)

	svc.InvalidatePopular()

	_, err = svc.PopularRules(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestStatsService_Usage(t *testing.T) {
	src := &fakePopularSource{rules: []core.Rule{*serviceRule("a"), *serviceRule("b")}}
	svc := newStatsService(t, src)

	stats, err := svc.Usage(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalRules)
	assert.Equal(t, int64(7), stats.EventCounts[core.EventSearchPerformed])
	assert.Len(t, stats.PopularRules, 2)
	assert.False(t, stats.GeneratedAt.IsZero())
}
