package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"travelrules/core"
	"travelrules/metrics"
)

const (
	// DefaultLimit is the result cap when the caller does not specify one.
	DefaultLimit = 50

	// candidateFactor is how many raw rows to over-fetch per requested
	// result. Client-side matching drops some candidates, and over-fetching
	// avoids a second round-trip in the common case. Known limitation: if
	// fewer than limit true matches sit in the first candidateFactor*limit
	// rows, results under-count even when more matches exist further in
	// the store.
	candidateFactor = 2
)

// RuleSource supplies raw candidate rules for ranking.
// Defined here, in the consumer package; storage.RuleStorage satisfies it.
type RuleSource interface {
	GetCandidates(ctx context.Context, filters core.SearchFilters, limit int) ([]core.Rule, error)
}

// Engine runs the full search pipeline: candidate fetch, bilingual match,
// relevance scoring, stable ordering, truncation.
type Engine struct {
	source RuleSource
	logger *zap.SugaredLogger
}

// NewEngine creates a search engine. Both dependencies are required.
func NewEngine(source RuleSource, logger *zap.SugaredLogger) *Engine {
	if source == nil {
		panic("source is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Engine{source: source, logger: logger}
}

// Search returns at most limit rules matching the query, best first.
//
// Ties keep the store's original relative order (the sort is stable), so
// repeated calls over an unchanged candidate set produce identical
// ordering. A store failure is returned as an error rather than swallowed;
// callers that prefer the availability-first degrade log it and render an
// empty result set.
func (e *Engine) Search(ctx context.Context, query string, filters core.SearchFilters, limit int) ([]core.Rule, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	metrics.SearchesTotal.Inc()

	candidates, err := e.source.GetCandidates(ctx, filters, limit*candidateFactor)
	if err != nil {
		metrics.SearchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch search candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []core.Rule{}, nil
	}

	type scored struct {
		rule  core.Rule
		score float64
	}

	matched := make([]scored, 0, len(candidates))
	for _, rule := range candidates {
		if !RuleMatches(rule, query) {
			continue
		}
		matched = append(matched, scored{rule: rule, score: Score(rule, query)})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]core.Rule, len(matched))
	for i, m := range matched {
		results[i] = m.rule
	}

	metrics.SearchResults.Observe(float64(len(results)))
	e.logger.Debugw("search completed",
		"query", query,
		"candidates", len(candidates),
		"results", len(results),
		"country", filters.CountryCode,
		"category", filters.Category,
	)

	return results, nil
}
