// Package paginate slices ordered sequences into fixed-size display windows.
package paginate

import (
	"fmt"

	"travelrules/core"
)

// DefaultPerPage is the page size used when the caller passes a
// non-positive one.
const DefaultPerPage = 5

// Result is one page of items plus the metadata a page-counter UI needs.
//
// Invariants: len(Items) == EndIndex-StartIndex, and CurrentPage stays in
// [1, TotalPages] — except for an empty source, where TotalPages is 0 and
// CurrentPage still reports 1 so displays never show "page 1 of 0".
type Result[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	StartIndex  int  `json:"start_index"`
	EndIndex    int  `json:"end_index"`
}

// Paginate returns the requested page of items. Out-of-range page numbers
// are clamped, never rejected: zero and negative pages become 1, pages past
// the end become the last page.
func Paginate[T any](items []T, page, perPage int) Result[T] {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(items) + perPage - 1) / perPage

	currentPage := page
	if totalPages == 0 {
		currentPage = 1
	} else if currentPage > totalPages {
		currentPage = totalPages
	}

	startIndex := (currentPage - 1) * perPage
	endIndex := startIndex + perPage
	if endIndex > len(items) {
		endIndex = len(items)
	}

	return Result[T]{
		Items:       items[startIndex:endIndex],
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		HasNext:     currentPage < totalPages,
		HasPrev:     currentPage > 1,
		StartIndex:  startIndex,
		EndIndex:    endIndex,
	}
}

// PageCounter formats a "Page 2/5" label in the given language.
func PageCounter(currentPage, totalPages int, lang core.Language) string {
	label := "Page"
	if lang == core.LanguageRU {
		label = "Страница"
	}
	return fmt.Sprintf("%s %d/%d", label, currentPage, totalPages)
}
