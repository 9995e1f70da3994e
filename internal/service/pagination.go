// Package service holds the application use cases. Handlers translate HTTP into
// these calls; repositories do the storage.
package service

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Pagination is the page block returned alongside list results.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// normalizePage applies the page defaults: page starts at 1, limit falls back to
// def and is capped at maxPageLimit.
func normalizePage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func offsetFor(page, limit int) int {
	return (page - 1) * limit
}
