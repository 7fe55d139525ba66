package helpers

import (
	"github.com/yigit/clubhub/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// PageWindow normalizes a 1-based page request into an SQL offset and limit.
// Out-of-range sizes fall back to DefaultPageSize.
func PageWindow(page, size int) (offset uint64, limit, current int) {
	current = page
	if current < 1 {
		current = DefaultPage
	}
	limit = size
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return uint64((current - 1) * limit), limit, current
}

// NewPaginationInfo describes the page of a listing holding totalItems rows
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	_, size, page = PageWindow(page, size)

	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 && page == 1 {
		// an empty listing still has its first page
		totalPages = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
