package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// Pagination bounds. The server clamps every request to MaxPageSize
// regardless of what the caller asks for.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 50
)

// BaseFilter is the common page-request shape shared by all entity
// filters: which page of which sorted, filtered subset to return.
//
// SortBy is resolved against a fixed per-entity allow-list in the storage
// layer; unrecognized keys fall back to creation-time ascending. Caller
// input never reaches an ORDER BY clause directly.
type BaseFilter struct {
	PageNumber   int        `json:"pageNumber"`
	PageSize     int        `json:"pageSize"`
	SortBy       string     `json:"sortBy,omitempty"`
	IsDescending bool       `json:"isDescending"`
	SearchTerm   string     `json:"searchTerm,omitempty"`
	FromDate     *time.Time `json:"fromDate,omitempty"`
	ToDate       *time.Time `json:"toDate,omitempty"`
}

// Normalize applies defaults and clamps the page size to MaxPageSize.
func (f *BaseFilter) Normalize() {
	if f.PageNumber < 1 {
		f.PageNumber = DefaultPageNumber
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the number of rows to skip for the requested page.
func (f *BaseFilter) Offset() int {
	return (f.PageNumber - 1) * f.PageSize
}

// Limit returns the page slice size.
func (f *BaseFilter) Limit() int {
	return f.PageSize
}

// UserFilter selects users by free-text search (email, first and last
// name, case-insensitive contains) and creation-date range.
type UserFilter struct {
	BaseFilter
}

// TodoItemFilter selects items within a single list, optionally narrowed
// by priority, status, due-date range, and assignee.
type TodoItemFilter struct {
	BaseFilter

	ListID       uuid.UUID              `json:"listId"`
	Priority     *domain.Priority       `json:"priority,omitempty"`
	Status       *domain.TodoStatus     `json:"status,omitempty"`
	DueDateFrom  *time.Time             `json:"dueDateFrom,omitempty"`
	DueDateTo    *time.Time             `json:"dueDateTo,omitempty"`
	AssignedToID *uuid.UUID             `json:"assignedToId,omitempty"`
}
