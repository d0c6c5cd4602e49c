package pkg

import (
	"math"

	"gorm.io/gorm"
)

// PaginatedResult is one window over a larger result set. Items never
// exceeds PageSize; TotalCount reflects the full set matching the query,
// independent of the current page.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageIndex  int   `json:"page_index"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult creates a PaginatedResult with computed TotalPages.
// A nil items slice becomes an empty one so JSON renders [] rather than null.
func NewPaginatedResult[T any](items []T, totalCount int64, pageIndex, pageSize int) *PaginatedResult[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(totalCount) / float64(pageSize)))
	}

	if items == nil {
		items = []T{}
	}

	return &PaginatedResult[T]{
		Items:      items,
		TotalCount: totalCount,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Window returns a GORM scope that applies LIMIT and OFFSET for the given
// 1-based page index.
func Window(pageIndex, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (pageIndex - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}
}
