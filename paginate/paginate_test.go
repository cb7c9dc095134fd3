package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelrules/core"
)

func TestPaginate_MiddlePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page := Paginate(items, 2, 3)

	assert.Equal(t, []int{4, 5, 6}, page.Items)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 3, page.StartIndex)
	assert.Equal(t, 6, page.EndIndex)
}

func TestPaginate_LastPartialPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page := Paginate(items, 3, 3)

	assert.Equal(t, []int{7}, page.Items)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

// TestPaginate_ClampsOutOfRange verifies bad page numbers are normalized,
// never rejected.
func TestPaginate_ClampsOutOfRange(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	past := Paginate(items, 99, 2)
	assert.Equal(t, 3, past.CurrentPage, "past-the-end clamps to last page")
	assert.Equal(t, []int{5}, past.Items)

	zero := Paginate(items, 0, 2)
	assert.Equal(t, 1, zero.CurrentPage)
	assert.Equal(t, []int{1, 2}, zero.Items)

	negative := Paginate(items, -3, 2)
	assert.Equal(t, 1, negative.CurrentPage)
}

// TestPaginate_Empty pins the empty-source shape: one notional current
// page, zero total pages, no neighbors.
func TestPaginate_Empty(t *testing.T) {
	page := Paginate([]string{}, 1, 5)

	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestPaginate_DefaultPerPage(t *testing.T) {
	items := make([]int, 12)

	page := Paginate(items, 1, 0)

	assert.Len(t, page.Items, DefaultPerPage)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginate_SinglePage(t *testing.T) {
	page := Paginate([]int{1, 2}, 1, 5)

	assert.Equal(t, []int{1, 2}, page.Items)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestPageCounter(t *testing.T) {
	assert.Equal(t, "Page 2/5", PageCounter(2, 5, core.LanguageEN))
	assert.Equal(t, "Страница 2/5", PageCounter(2, 5, core.LanguageRU))
}
