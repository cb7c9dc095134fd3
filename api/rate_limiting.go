package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"travelrules/config"
)

// Tier names a rate-limiting bucket. Search and feedback get their own
// tight per-client budgets, mirroring the chat-side limits; everything
// else shares the global tier.
type Tier string

const (
	TierSearch   Tier = "search"
	TierFeedback Tier = "feedback"
	TierGlobal   Tier = "global"
)

// clientLimiter is one client's token bucket plus its last-use time for
// janitor eviction.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// tierLimiter tracks per-client buckets for a single tier.
type tierLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

func newTierLimiter(perMinute, burst int) *tierLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &tierLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

func (t *tierLimiter) allow(client string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cl, ok := t.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// evictIdle drops buckets not used within maxIdle.
func (t *tierLimiter) evictIdle(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	t.mu.Lock()
	defer t.mu.Unlock()
	for client, cl := range t.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(t.clients, client)
		}
	}
}

// RateLimiters holds all tiers plus the janitor that evicts idle clients.
type RateLimiters struct {
	tiers  map[Tier]*tierLimiter
	logger *zap.SugaredLogger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRateLimiters builds the tier set from config.
func NewRateLimiters(cfg *config.Config, logger *zap.SugaredLogger) *RateLimiters {
	rl := cfg.API.RateLimit
	return &RateLimiters{
		tiers: map[Tier]*tierLimiter{
			TierSearch:   newTierLimiter(rl.Search.PerMinute, rl.Search.Burst),
			TierFeedback: newTierLimiter(rl.Feedback.PerMinute, rl.Feedback.Burst),
			TierGlobal:   newTierLimiter(rl.Global.PerMinute, rl.Global.Burst),
		},
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches the idle-bucket janitor.
func (r *RateLimiters) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				for _, t := range r.tiers {
					t.evictIdle(15 * time.Minute)
				}
			}
		}
	}()
}

// Stop halts the janitor and waits for it to exit.
func (r *RateLimiters) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	r.wg.Wait()
}

// Limit wraps a handler with the given tier's per-client budget.
func (r *RateLimiters) Limit(tier Tier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		client := clientAddr(req)
		if !r.tiers[tier].allow(client) {
			r.logger.Warnw("rate limit exceeded",
				"tier", tier,
				"client", client,
				"path", req.URL.Path,
			)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// GlobalMiddleware applies the global tier to every request.
func (r *RateLimiters) GlobalMiddleware(next http.Handler) http.Handler {
	return r.Limit(TierGlobal, next)
}

// clientAddr extracts the client key for bucketing: the remote IP without
// the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
