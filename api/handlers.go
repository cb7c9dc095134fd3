package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"travelrules/core"
	"travelrules/paginate"
	"travelrules/service"
	"travelrules/storage"
)

// searchResponse is one page of search results plus the query echo.
type searchResponse struct {
	Query   string                     `json:"query"`
	Total   int                        `json:"total"`
	Results paginate.Result[core.Rule] `json:"results"`
	Filters core.SearchFilters         `json:"filters"`
}

// handleSearch runs the ranking pipeline and paginates the result.
//
// A store failure degrades to an empty result set with HTTP 200: a broken
// search must read as "no results", not break the caller's flow. The error
// itself goes to the log.
func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < a.cfg.Search.MinQueryLength {
		a.writeError(w, http.StatusBadRequest, "query too short")
		return
	}
	if len(query) > a.cfg.Search.MaxQueryLength {
		a.writeError(w, http.StatusBadRequest, "query too long")
		return
	}

	filters := core.SearchFilters{
		CountryCode: r.URL.Query().Get("country"),
		Category:    r.URL.Query().Get("category"),
	}
	params := ParsePaginationParams(r, a.cfg.Pagination.SearchPerPage, 50)

	results, err := a.engine.Search(r.Context(), query, filters, a.cfg.Search.DefaultLimit)
	if err != nil {
		a.logger.Errorw("search failed", "query", query, "error", err)
		results = []core.Rule{}
	} else {
		a.users.RecordSearch(r.Context(), parseUserID(r), query, len(results))
	}

	a.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Total:   len(results),
		Results: paginate.Paginate(results, params.Page, params.Limit),
		Filters: filters,
	})
}

// ruleResponse is the detail view of a rule: raw record plus the rendered
// display text in the requested language.
type ruleResponse struct {
	Rule      core.Rule `json:"rule"`
	Formatted string    `json:"formatted"`
}

func (a *API) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	lang := core.ParseLanguage(r.URL.Query().Get("lang"))
	userID := parseUserID(r)

	rule, err := a.rules.ViewRule(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, storage.ErrRuleNotFound) {
			a.writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		a.logger.Errorw("failed to load rule", "rule_id", id, "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to load rule")
		return
	}

	a.writeJSON(w, http.StatusOK, ruleResponse{
		Rule:      *rule,
		Formatted: service.FormatRuleDetailed(*rule, lang),
	})
}

func (a *API) handleBrowse(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	category := r.URL.Query().Get("category")
	if country == "" || category == "" {
		a.writeError(w, http.StatusBadRequest, "country and category are required")
		return
	}
	params := ParsePaginationParams(r, a.cfg.Pagination.RulesPerPage, 50)

	rules, err := a.rules.BrowseRules(r.Context(), country, category)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.writeJSON(w, http.StatusOK, paginate.Paginate(rules, params.Page, params.Limit))
}

func (a *API) handlePopular(w http.ResponseWriter, r *http.Request) {
	params := ParsePaginationParams(r, a.cfg.Stats.PopularLimit, 50)

	rules, err := a.stats.PopularRules(r.Context(), params.Limit)
	if err != nil {
		a.logger.Errorw("failed to load popular rules", "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to load popular rules")
		return
	}
	a.writeJSON(w, http.StatusOK, rules)
}

// registerUserRequest is the profile payload for registration.
type registerUserRequest struct {
	ID             int64  `json:"id"`
	Username       string `json:"username,omitempty"`
	Language       string `json:"language,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	OnboardingDone bool   `json:"onboarding_done,omitempty"`
}

func (a *API) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.Register(r.Context(), &core.User{
		ID:             req.ID,
		Username:       req.Username,
		Language:       core.ParseLanguage(req.Language),
		CountryCode:    req.CountryCode,
		OnboardingDone: req.OnboardingDone,
	})
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			a.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		a.logger.Errorw("failed to load user", "user_id", id, "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.users.SetLanguage(r.Context(), id, req.Language); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			a.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		a.logger.Errorw("failed to set language", "user_id", id, "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to set language")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]string{"language": string(core.ParseLanguage(req.Language))})
}

func (a *API) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var input service.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fb, err := a.feedback.Submit(r.Context(), input)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateFeedback) {
			a.writeError(w, http.StatusConflict, "feedback already submitted for this rule")
			return
		}
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.writeJSON(w, http.StatusCreated, fb)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.stats.Usage(r.Context(), a.cfg.Stats.PopularLimit)
	if err != nil {
		a.logger.Errorw("failed to build usage stats", "error", err)
		a.writeError(w, http.StatusInternalServerError, "failed to build stats")
		return
	}
	a.writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseUserID reads the optional caller identity used for view and search
// tracking. Absent or malformed values mean "anonymous".
func parseUserID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
