package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a validated 1-based page request.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Limit() int { return p.Size }

type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// TotalPages is ceil(total/size), and 1 for an empty result.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

func NewPaginatedResponse[T any](items []T, total int64, page Page) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := TotalPages(total, page.Size)
	return PaginatedResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: pages,
		HasNext:    page.Number < pages,
		HasPrev:    page.Number > 1,
	}
}

type CursorPage[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
	Count      int     `json:"count"`
}

// NewCursorPage trims a limit+1 fetch down to limit and derives the next
// cursor from the last kept element.
func NewCursorPage[T any](fetched []T, limit int, cursorOf func(T) string) CursorPage[T] {
	page := CursorPage[T]{Items: fetched}
	if len(fetched) > limit {
		page.Items = fetched[:limit]
		page.HasMore = true
		next := cursorOf(page.Items[len(page.Items)-1])
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	page.Count = len(page.Items)
	return page
}

type InfiniteScrollPage[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
	LastID  *int `json:"last_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
