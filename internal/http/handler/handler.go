// Package handler adapts HTTP requests to repository calls and renders
// the uniform response envelope.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/toucanlabs/toucans-api/internal/events"
)

// Handler serves the todo API routes.
type Handler struct {
	repo      Repository
	publisher events.Publisher
}

// NewHandler creates the API handler. A nil publisher disables event
// publication.
func NewHandler(repo Repository, publisher events.Publisher) *Handler {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Handler{repo: repo, publisher: publisher}
}

// Routes mounts every API route on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Get("/lists", h.GetUserLists)
			r.Get("/shared-lists", h.GetSharedLists)
		})
	})

	r.Route("/lists", func(r chi.Router) {
		r.Get("/", h.ListLists)
		r.Post("/", h.CreateList)
		r.Route("/{listId}", func(r chi.Router) {
			r.Get("/", h.GetList)
			r.Put("/", h.UpdateList)
			r.Delete("/", h.DeleteList)

			r.Post("/share", h.ShareList)
			r.Delete("/share/{userId}", h.RemoveShare)
			r.Get("/shares", h.GetShares)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.ListItems)
				r.Post("/", h.CreateItem)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetItem)
					r.Put("/", h.UpdateItem)
					r.Delete("/", h.DeleteItem)
				})
			})
		})
	})

	return r
}

// publish ships an event best-effort: failures are logged and never
// surfaced to the API caller.
func (h *Handler) publish(ctx context.Context, event events.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish event",
			"event", event.Kind(),
			"error", err)
	}
}
