package handler

import (
	"net/http"

	"github.com/toucanlabs/toucans-api/internal/dto"
	"github.com/toucanlabs/toucans-api/internal/http/response"
)

// ListUsers returns one page of users filtered by the query parameters.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := dto.UserFilter{BaseFilter: parseBaseFilter(r.URL.Query())}

	page, err := h.repo.ListUsers(r.Context(), filter)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, page)
}

// GetUser returns a single user by id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	user, err := h.repo.FindUserByID(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, user)
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.repo.CreateUser(r.Context(), req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, user)
}

// UpdateUser partially updates a user's first/last name.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.repo.UpdateUser(r.Context(), id, req); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// DeleteUser removes a user. Users still owning lists are rejected with
// a conflict.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// GetUserLists returns the lists the user owns, with item counts.
func (h *Handler) GetUserLists(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	lists, err := h.repo.ListUserLists(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, lists)
}

// GetSharedLists returns the lists shared with the user, each carrying
// the user's permission level.
func (h *Handler) GetSharedLists(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	lists, err := h.repo.ListSharedLists(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, lists)
}
