package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// CreateItemRequest carries the fields required to create a todo item.
// Status and CompletedAt are never taken from the caller: new items start
// NOT_STARTED with a nil completion timestamp.
type CreateItemRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Priority     domain.Priority `json:"priority"`
	AssignedToID *uuid.UUID      `json:"assignedToId,omitempty"`
}

// UpdateItemRequest replaces an item's mutable fields. Title, description,
// due date, priority and assignee apply unconditionally; the status field
// drives the CompletedAt pairing on transitions.
type UpdateItemRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Priority     domain.Priority   `json:"priority"`
	Status       domain.TodoStatus `json:"status"`
	AssignedToID *uuid.UUID        `json:"assignedToId,omitempty"`
}

// TodoItemResponse is the projected item shape returned by repositories.
type TodoItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"createdAt"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Priority    domain.Priority   `json:"priority"`
	Status      domain.TodoStatus `json:"status"`
	AssignedTo  *UserSummary      `json:"assignedTo,omitempty"`
}
