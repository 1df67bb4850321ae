package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
)

// pathID parses a UUID route parameter, mapping malformed input to
// domain.ErrInvalidID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, raw)
	}
	return id, nil
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseBaseFilter reads the common pagination/sort/search query
// parameters. Unparseable numbers and dates are treated as absent; the
// filter's Normalize applies defaults and clamping later.
func parseBaseFilter(q url.Values) dto.BaseFilter {
	filter := dto.BaseFilter{
		SortBy:     q.Get("sortBy"),
		SearchTerm: q.Get("searchTerm"),
	}

	if n, err := strconv.Atoi(q.Get("pageNumber")); err == nil {
		filter.PageNumber = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		filter.PageSize = n
	}
	if desc, err := strconv.ParseBool(q.Get("isDescending")); err == nil {
		filter.IsDescending = desc
	}
	filter.FromDate = parseTime(q.Get("fromDate"))
	filter.ToDate = parseTime(q.Get("toDate"))

	return filter
}

// parseItemFilter reads the item-specific query parameters on top of the
// base filter. Invalid priority or status values are rejected rather
// than silently dropped.
func parseItemFilter(q url.Values, listID uuid.UUID) (dto.TodoItemFilter, error) {
	filter := dto.TodoItemFilter{
		BaseFilter: parseBaseFilter(q),
		ListID:     listID,
	}

	if raw := q.Get("priority"); raw != "" {
		priority, err := domain.NewPriority(raw)
		if err != nil {
			return dto.TodoItemFilter{}, err
		}
		filter.Priority = &priority
	}
	if raw := q.Get("status"); raw != "" {
		status, err := domain.NewTodoStatus(raw)
		if err != nil {
			return dto.TodoItemFilter{}, err
		}
		filter.Status = &status
	}
	if raw := q.Get("assignedToId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dto.TodoItemFilter{}, fmt.Errorf("%w: %s", domain.ErrInvalidID, raw)
		}
		filter.AssignedToID = &id
	}
	filter.DueDateFrom = parseTime(q.Get("dueDateFrom"))
	filter.DueDateTo = parseTime(q.Get("dueDateTo"))

	return filter, nil
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}
