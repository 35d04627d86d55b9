package shared

import "strings"

// Pagination bounds applied to every list query
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Criteria holds named filter values as received from the caller.
// A missing key or an empty value means the criterion is not applied.
type Criteria map[string]string

// Get returns the trimmed value of key and whether it is present
func (c Criteria) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ListQuery represents query filter options for list operations
type ListQuery struct {
	Criteria Criteria
	// OrderBy is a field name, optionally prefixed with "-" for descending order.
	OrderBy  string
	Page     int
	PageSize int
}

// DefaultListQuery returns a query with default pagination and no criteria
func DefaultListQuery() ListQuery {
	return ListQuery{
		Criteria: Criteria{},
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Normalize clamps pagination values into their allowed range
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Criteria == nil {
		q.Criteria = Criteria{}
	}
	return q
}

// Offset returns the row offset for the current page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
