package handler

import (
	"net/http"

	"github.com/toucanlabs/toucans-api/internal/dto"
	"github.com/toucanlabs/toucans-api/internal/events"
	"github.com/toucanlabs/toucans-api/internal/http/response"
)

// ListItems returns one page of a list's items filtered by the query
// parameters.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	filter, err := parseItemFilter(r.URL.Query(), listID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	page, err := h.repo.ListItems(r.Context(), filter)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, page)
}

// GetItem returns a single item, scoped to its list.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	item, err := h.repo.FindItemByID(r.Context(), listID, id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, item)
}

// CreateItem adds an item to a list and emits a TodoItemAdded event.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req dto.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	item, err := h.repo.CreateItem(r.Context(), listID, req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	h.publish(r.Context(), events.TodoItemAdded{
		ListID:    listID,
		ItemID:    item.ID,
		Title:     item.Title,
		Priority:  item.Priority,
		CreatedAt: item.CreatedAt,
	})
	response.Created(w, item)
}

// UpdateItem replaces an item's mutable fields.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req dto.UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.repo.UpdateItem(r.Context(), listID, id, req); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// DeleteItem removes an item, scoped to its list.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if err := h.repo.DeleteItem(r.Context(), listID, id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}
