package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// ShareListRequest grants or updates a permission on a list. Both fields
// are required; pointers distinguish "absent" from zero values so missing
// fields are rejected before any persistence attempt.
type ShareListRequest struct {
	UserID     *uuid.UUID              `json:"userId"`
	Permission *domain.SharePermission `json:"permission"`
}

// ShareResponse is the projected share shape with the sharee's info.
type ShareResponse struct {
	ID             uuid.UUID              `json:"id"`
	SharedWithUser UserSummary            `json:"sharedWithUser"`
	Permission     domain.SharePermission `json:"permission"`
	SharedAt       time.Time              `json:"sharedAt"`
}
