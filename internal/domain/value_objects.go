package domain

import (
	"fmt"
	"strings"
)

// Maximum lengths for bounded text fields. These mirror the relational
// schema, so inputs are rejected before a round trip to the store.
const (
	MaxListNameLen    = 100
	MaxItemTitleLen   = 200
	MaxEmailLen       = 100
	MaxPersonNameLen  = 50
	MaxDescriptionLen = 500
)

// ListName is a validated list name (1-100 characters).
type ListName struct {
	value string
}

// NewListName creates a new ListName, validating the input.
func NewListName(s string) (ListName, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return ListName{}, ErrNameRequired
	}

	if len(s) > MaxListNameLen {
		return ListName{}, ErrNameTooLong
	}

	return ListName{value: s}, nil
}

// String returns the list name value.
func (n ListName) String() string {
	return n.value
}

// ItemTitle is a validated item title (1-200 characters).
type ItemTitle struct {
	value string
}

// NewItemTitle creates a new ItemTitle, validating the input.
func NewItemTitle(s string) (ItemTitle, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return ItemTitle{}, ErrTitleRequired
	}

	if len(s) > MaxItemTitleLen {
		return ItemTitle{}, ErrTitleTooLong
	}

	return ItemTitle{value: s}, nil
}

// String returns the title value.
func (t ItemTitle) String() string {
	return t.value
}

// NewDescription validates an optional free-text description (max 500
// characters). Empty or whitespace-only input collapses to nil.
func NewDescription(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > MaxDescriptionLen {
		return nil, ErrDescriptionTooLong
	}

	return &trimmed, nil
}

// NewItemDescription validates an item description (max 500 characters,
// empty allowed).
func NewItemDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > MaxDescriptionLen {
		return "", ErrDescriptionTooLong
	}
	return s, nil
}

// NewEmail validates an email address. Full RFC validation belongs to the
// mail layer; this rejects the obviously malformed before persistence.
func NewEmail(s string) (string, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return "", ErrEmailRequired
	}
	if len(s) > MaxEmailLen {
		return "", ErrEmailTooLong
	}

	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", ErrEmailInvalid
	}

	return s, nil
}

// NewPersonName validates a first or last name (1-50 characters).
func NewPersonName(field, s string) (string, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrNameRequired, field)
	}
	if len(s) > MaxPersonNameLen {
		return "", fmt.Errorf("%w: %s", ErrNameTooLong, field)
	}

	return s, nil
}

// NewPriority validates and creates a Priority.
// Empty input defaults to MEDIUM.
func NewPriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}

	priority := Priority(strings.ToUpper(s))

	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return priority, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// NewTodoStatus validates and creates a TodoStatus.
func NewTodoStatus(s string) (TodoStatus, error) {
	status := TodoStatus(strings.ToUpper(s))

	switch status {
	case StatusNotStarted, StatusInProgress, StatusBlocked,
		StatusCompleted, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// NewSharePermission validates and creates a SharePermission.
func NewSharePermission(s string) (SharePermission, error) {
	permission := SharePermission(strings.ToUpper(s))

	switch permission {
	case PermissionReadOnly, PermissionReadWrite, PermissionAdmin:
		return permission, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPermission, s)
	}
}
