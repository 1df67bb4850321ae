package handler

import (
	"net/http"

	"github.com/toucanlabs/toucans-api/internal/dto"
	"github.com/toucanlabs/toucans-api/internal/events"
	"github.com/toucanlabs/toucans-api/internal/http/response"
)

// ListLists returns every list with owner and item counts.
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.repo.ListLists(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, lists)
}

// GetList returns a single list by id.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	list, err := h.repo.FindListByID(r.Context(), listID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, list)
}

// CreateList creates a list for the owner named in the request and emits
// a TodoListCreated event.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateListRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	list, err := h.repo.CreateList(r.Context(), req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	h.publish(r.Context(), events.TodoListCreated{
		ListID:    list.ID,
		Name:      list.Name,
		OwnerID:   req.OwnerID,
		CreatedAt: list.CreatedAt,
	})
	response.Created(w, list)
}

// UpdateList replaces a list's name and description.
func (h *Handler) UpdateList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req dto.UpdateListRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.repo.UpdateList(r.Context(), listID, req); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// DeleteList removes a list together with its items and shares.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if err := h.repo.DeleteList(r.Context(), listID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ShareList grants or updates a user's permission on a list and emits a
// TodoListShared event.
func (h *Handler) ShareList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req dto.ShareListRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	share, err := h.repo.ShareList(r.Context(), listID, req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	h.publish(r.Context(), events.TodoListShared{
		ListID:     listID,
		UserID:     share.SharedWithUser.ID,
		Permission: share.Permission,
		SharedAt:   share.SharedAt,
	})
	response.Created(w, share)
}

// RemoveShare revokes a user's access to a list.
func (h *Handler) RemoveShare(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if err := h.repo.RemoveShare(r.Context(), listID, userID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// GetShares returns every grant on a list.
func (h *Handler) GetShares(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	shares, err := h.repo.ListShares(r.Context(), listID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, shares)
}
