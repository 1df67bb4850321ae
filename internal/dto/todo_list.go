package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// CreateListRequest carries the fields required to create a todo list.
type CreateListRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"ownerId"`
}

// UpdateListRequest replaces a list's name and description.
type UpdateListRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TodoListResponse is the projected list shape. ItemCount and
// CompletedItemCount come from database aggregation; item bodies are never
// loaded for listings.
type TodoListResponse struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Description        *string      `json:"description,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	LastModifiedAt     *time.Time   `json:"lastModifiedAt,omitempty"`
	ItemCount          int          `json:"itemCount"`
	CompletedItemCount int          `json:"completedItemCount"`
	Owner              *UserSummary `json:"owner,omitempty"`

	// Permission is set only on shared-list projections and carries the
	// grantee's permission level.
	Permission *domain.SharePermission `json:"permission,omitempty"`
}
