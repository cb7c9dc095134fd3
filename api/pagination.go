package api

import (
	"net/http"
	"strconv"
)

// maxPage caps the page parameter so hostile values cannot force huge
// offset arithmetic.
const maxPage = 1000000

// PaginationParams holds pagination query parameters.
type PaginationParams struct {
	Page  int `json:"page"`  // 1-based page number
	Limit int `json:"limit"` // Items per page
}

// ParsePaginationParams extracts page/limit query parameters, applying the
// defaults and clamping limit to maxLimit. Invalid values fall back to the
// defaults rather than erroring; pagination input is always normalized.
func ParsePaginationParams(r *http.Request, defaultLimit, maxLimit int) PaginationParams {
	page := 1
	limit := defaultLimit

	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
			if page > maxPage {
				page = maxPage
			}
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}

	return PaginationParams{Page: page, Limit: limit}
}
