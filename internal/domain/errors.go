package domain

import "errors"

// Domain errors returned by repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUserNotFound indicates the specified user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrListNotFound indicates the specified list does not exist.
	ErrListNotFound = errors.New("list not found")

	// ErrItemNotFound indicates the specified item does not exist in the list.
	ErrItemNotFound = errors.New("item not found")

	// ErrShareNotFound indicates no share exists for the (list, user) pair.
	ErrShareNotFound = errors.New("share not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrOwnerHasLists indicates a user delete was rejected because the
	// user still owns lists (owner FK is non-cascading).
	ErrOwnerHasLists = errors.New("user still owns lists")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
)

// Validation errors.
var (
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title exceeds maximum length")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is not a valid address")
	ErrEmailTooLong       = errors.New("email exceeds maximum length")

	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidStatus     = errors.New("invalid todo status")
	ErrInvalidPermission = errors.New("invalid share permission")

	// ErrShareUserRequired and ErrSharePermissionRequired reject share
	// requests missing their required fields before any persistence attempt.
	ErrShareUserRequired       = errors.New("share request requires a user id")
	ErrSharePermissionRequired = errors.New("share request requires a permission")
)
