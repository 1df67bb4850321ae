// Package response renders the API's uniform JSON envelope and maps
// domain errors onto HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// Envelope is the uniform response shape. Success responses carry the
// payload in Data; failures carry a human-readable Message and omit Data.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a 200 response wrapping data in the envelope.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 response wrapping data in the envelope.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent sends a 204 response with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// BadRequest sends a 400 failure envelope.
func BadRequest(w http.ResponseWriter, message string) {
	write(w, http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// NotFound sends a 404 failure envelope.
func NotFound(w http.ResponseWriter, message string) {
	write(w, http.StatusNotFound, Envelope{Success: false, Message: message})
}

// Conflict sends a 409 failure envelope.
func Conflict(w http.ResponseWriter, message string) {
	write(w, http.StatusConflict, Envelope{Success: false, Message: message})
}

// InternalError sends a 500 failure envelope. The underlying error is
// logged with request context; the client receives a generic message so
// no internals leak.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "internal server error", "error", err)
	}
	write(w, http.StatusInternalServerError, Envelope{Success: false, Message: "an internal error occurred"})
}

// FromDomainError maps domain errors to HTTP responses: validation
// failures to 400, missing entities to 404, state conflicts to 409,
// everything unrecognized to a generic 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrEmailInvalid),
		errors.Is(err, domain.ErrEmailTooLong),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPermission),
		errors.Is(err, domain.ErrShareUserRequired),
		errors.Is(err, domain.ErrSharePermissionRequired):
		BadRequest(w, err.Error())

	// Not found errors (404)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrListNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrShareNotFound),
		errors.Is(err, domain.ErrNotFound):
		NotFound(w, err.Error())

	// State conflicts (409)
	case errors.Is(err, domain.ErrOwnerHasLists),
		errors.Is(err, domain.ErrEmailTaken):
		Conflict(w, err.Error())

	// Unknown errors (500) - log server-side, generic message to client
	default:
		InternalError(w, r, err)
	}
}

func write(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
