package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelrules/cache"
	"travelrules/config"
	"travelrules/core"
	"travelrules/search"
	"travelrules/service"
	"travelrules/storage"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 0
	cfg.API.RateLimit.Search.PerMinute = 600
	cfg.API.RateLimit.Search.Burst = 100
	cfg.API.RateLimit.Feedback.PerMinute = 600
	cfg.API.RateLimit.Feedback.Burst = 100
	cfg.API.RateLimit.Global.PerMinute = 6000
	cfg.API.RateLimit.Global.Burst = 1000
	cfg.Search.MinQueryLength = 3
	cfg.Search.MaxQueryLength = 200
	cfg.Search.DefaultLimit = 50
	cfg.Pagination.RulesPerPage = 5
	cfg.Pagination.SearchPerPage = 10
	cfg.Cache.DefaultTTL = time.Hour
	cfg.Cache.PopularTTL = time.Hour
	cfg.Stats.PopularLimit = 10
	return cfg
}

// newTestAPI wires the whole stack over an in-memory database.
func newTestAPI(t *testing.T) (*API, *storage.RuleStorage) {
	t.Helper()
	logger := zap.NewNop().Sugar()

	db, err := storage.NewSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rules := storage.NewRuleStorage(db, logger)
	users := storage.NewUserStorage(db, logger)
	feedback := storage.NewFeedbackStorage(db, logger)
	analytics := storage.NewAnalyticsStorage(db, logger)

	rulesCache := cache.New[[]core.Rule](logger, &cache.Config{Name: "test"})
	t.Cleanup(rulesCache.Stop)

	cfg := testConfig()
	engine := search.NewEngine(rules, logger)
	ruleSvc := service.NewRuleService(rules, analytics, logger)
	userSvc := service.NewUserService(users, analytics, logger)
	statsSvc := service.NewStatsService(rules, analytics, rulesCache, cfg.Cache.PopularTTL, logger)
	feedbackSvc := service.NewFeedbackService(feedback, analytics, logger)

	return New(cfg, engine, ruleSvc, userSvc, statsSvc, feedbackSvc, logger), rules
}

func seedRule(t *testing.T, rules *storage.RuleStorage, id, country, category, titleEN string) {
	t.Helper()
	require.NoError(t, rules.CreateRule(context.Background(), &core.Rule{
		ID:          id,
		CountryCode: country,
		Category:    category,
		Severity:    core.SeverityMedium,
		Content: core.RuleContent{
			EN: core.LocalizedText{Title: titleEN, Description: "Description"},
			RU: core.LocalizedText{Title: "Заголовок", Description: "Описание"},
		},
	}))
}

func doRequest(api *API, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.RemoteAddr = "10.0.0.1:12345"
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPI_Search(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "a", "IT", "drones", "Drone registration")
	seedRule(t, rules, "b", "IT", "transport", "Speed limits")

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/search?q=drone", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Query   string `json:"query"`
		Total   int    `json:"total"`
		Results struct {
			Items       []core.Rule `json:"items"`
			CurrentPage int         `json:"current_page"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "drone", resp.Query)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Results.Items, 1)
	assert.Equal(t, "a", resp.Results.Items[0].ID)
}

func TestAPI_SearchQueryLength(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/search?q=ab", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "query below minimum length")

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	rec = doRequest(api, http.MethodGet, "/api/v1/rules/search?q="+string(long), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "query above maximum length")
}

func TestAPI_SearchNoResults(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/search?q=nothing", nil)
	require.Equal(t, http.StatusOK, rec.Code, "no results is a success, not an error")

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
}

func TestAPI_GetRule(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "r1", "IT", "drones", "Drone registration")

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/r1?lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rule      core.Rule `json:"rule"`
		Formatted string    `json:"formatted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "r1", resp.Rule.ID)
	assert.Contains(t, resp.Formatted, "Drone registration")
}

func TestAPI_GetRuleNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Browse(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "r1", "IT", "drones", "Drone registration")
	seedRule(t, rules, "r2", "TR", "drones", "Turkish drone rules")

	rec := doRequest(api, http.MethodGet, "/api/v1/rules?country=IT&category=drones", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []core.Rule `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r1", page.Items[0].ID)
}

func TestAPI_BrowseMissingParams(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/rules?country=IT", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_BrowseUnknownCountry(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/rules?country=XX&category=drones", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Feedback(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "r1", "IT", "drones", "Drone registration")

	body, _ := json.Marshal(map[string]any{
		"user_id":       42,
		"rule_id":       "r1",
		"feedback_type": "helpful",
	})

	rec := doRequest(api, http.MethodPost, "/api/v1/feedback", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Same verdict again conflicts.
	rec = doRequest(api, http.MethodPost, "/api/v1/feedback", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_FeedbackInvalid(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodPost, "/api/v1/feedback", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ := json.Marshal(map[string]any{"user_id": 42, "feedback_type": "brilliant"})
	rec = doRequest(api, http.MethodPost, "/api/v1/feedback", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Popular(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "r1", "IT", "drones", "Drone registration")

	rec := doRequest(api, http.MethodGet, "/api/v1/rules/popular", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var popular []core.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &popular))
	assert.Len(t, popular, 1)
}

func TestAPI_Stats(t *testing.T) {
	api, rules := newTestAPI(t)
	seedRule(t, rules, "r1", "IT", "drones", "Drone registration")

	rec := doRequest(api, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalRules int64 `json:"total_rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalRules)
}

func TestAPI_UserLifecycle(t *testing.T) {
	api, _ := newTestAPI(t)

	body, _ := json.Marshal(map[string]any{
		"id":       42,
		"username": "traveler",
		"language": "ru",
	})
	rec := doRequest(api, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(api, http.MethodGet, "/api/v1/users/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user core.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "traveler", user.Username)
	assert.Equal(t, core.LanguageRU, user.Language)

	langBody, _ := json.Marshal(map[string]string{"language": "en"})
	rec = doRequest(api, http.MethodPut, "/api/v1/users/42/language", langBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(api, http.MethodGet, "/api/v1/users/42", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, core.LanguageEN, user.Language)
}

func TestAPI_GetUserNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/api/v1/users/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_RegisterUserInvalid(t *testing.T) {
	api, _ := newTestAPI(t)

	body, _ := json.Marshal(map[string]any{"username": "ghost"})
	rec := doRequest(api, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing ID")

	body, _ = json.Marshal(map[string]any{"id": 1, "country_code": "XX"})
	rec = doRequest(api, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown country")
}

func TestAPI_Health(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(api, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

// TestAPI_RateLimit verifies the per-client search tier answers 429 once
// the bucket is drained.
func TestAPI_RateLimit(t *testing.T) {
	api, _ := newTestAPI(t)
	api.cfg.API.RateLimit.Search.PerMinute = 1
	api.cfg.API.RateLimit.Search.Burst = 1
	api.limiters = NewRateLimiters(api.cfg, zap.NewNop().Sugar())
	api.router = api.setupRoutes()

	first := doRequest(api, http.MethodGet, "/api/v1/rules/search?q=drone", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doRequest(api, http.MethodGet, "/api/v1/rules/search?q=drone", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
