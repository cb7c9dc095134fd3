// Package api exposes the rule search, browsing, feedback and statistics
// operations over HTTP. It is the service-side stand-in for the messaging
// gateway: handlers stay thin and delegate to the services.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"travelrules/config"
	"travelrules/search"
	"travelrules/service"
)

// API is the HTTP surface of the service.
type API struct {
	cfg      *config.Config
	engine   *search.Engine
	rules    *service.RuleService
	users    *service.UserService
	stats    *service.StatsService
	feedback *service.FeedbackService
	logger   *zap.SugaredLogger

	router   *mux.Router
	server   *http.Server
	limiters *RateLimiters
}

// New creates the API with all its routes registered.
func New(
	cfg *config.Config,
	engine *search.Engine,
	rules *service.RuleService,
	users *service.UserService,
	stats *service.StatsService,
	feedback *service.FeedbackService,
	logger *zap.SugaredLogger,
) *API {
	if cfg == nil {
		panic("cfg is required")
	}
	if engine == nil {
		panic("engine is required")
	}
	if rules == nil {
		panic("rules is required")
	}
	if users == nil {
		panic("users is required")
	}
	if stats == nil {
		panic("stats is required")
	}
	if feedback == nil {
		panic("feedback is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	a := &API{
		cfg:      cfg,
		engine:   engine,
		rules:    rules,
		users:    users,
		stats:    stats,
		feedback: feedback,
		logger:   logger,
		limiters: NewRateLimiters(cfg, logger),
	}
	a.router = a.setupRoutes()
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      a.router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}
	return a
}

func (a *API) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.loggingMiddleware)
	r.Use(a.limiters.GlobalMiddleware)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Handle("/rules/search",
		a.limiters.Limit(TierSearch, http.HandlerFunc(a.handleSearch))).Methods(http.MethodGet)
	v1.HandleFunc("/rules/popular", a.handlePopular).Methods(http.MethodGet)
	v1.HandleFunc("/rules/{id}", a.handleGetRule).Methods(http.MethodGet)
	v1.HandleFunc("/rules", a.handleBrowse).Methods(http.MethodGet)
	v1.HandleFunc("/users", a.handleRegisterUser).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id:[0-9]+}", a.handleGetUser).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id:[0-9]+}/language", a.handleSetLanguage).Methods(http.MethodPut)
	v1.Handle("/feedback",
		a.limiters.Limit(TierFeedback, http.HandlerFunc(a.handleFeedback))).Methods(http.MethodPost)
	v1.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (a *API) Start() error {
	a.limiters.Start()
	a.logger.Infow("API server listening", "addr", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the rate limiter janitor.
func (a *API) Shutdown(ctx context.Context) error {
	a.limiters.Stop()
	return a.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (a *API) Handler() http.Handler {
	return a.router
}

// writeJSON renders a JSON response body with the given status.
func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Warnw("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, errorResponse{Error: msg})
}

// loggingMiddleware logs each request with its duration and status.
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.logger.Debugw("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
