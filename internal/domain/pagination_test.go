package domain

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	p := NewPage(3, 20)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())

	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, MaxPageSize, NewPage(1, 500).Size)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 5, TotalPages(45, 10))
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse([]int{1, 2}, 45, NewPage(2, 10))
	assert.Equal(t, 5, resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.HasPrev)

	empty := NewPaginatedResponse[int](nil, 0, NewPage(1, 10))
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
	assert.NotNil(t, empty.Items)
}

func TestNewCursorPage(t *testing.T) {
	cursorOf := func(v int) string { return strconv.Itoa(v) }

	page := NewCursorPage([]int{4, 5, 6}, 2, cursorOf)
	assert.Equal(t, []int{4, 5}, page.Items)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "5", *page.NextCursor)
	assert.Equal(t, 2, page.Count)

	last := NewCursorPage([]int{7}, 2, cursorOf)
	assert.False(t, last.HasMore)
	assert.Nil(t, last.NextCursor)
	assert.Equal(t, 1, last.Count)
}
