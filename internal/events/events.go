// Package events defines the domain events emitted after successful
// mutations and the publisher abstraction used to ship them. Publication
// is best-effort: a failed publish is logged, never surfaced to the API
// caller.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

// Event kinds carried in the envelope's type field.
const (
	KindTodoListCreated = "TodoListCreated"
	KindTodoItemAdded   = "TodoItemAdded"
	KindTodoListShared  = "TodoListShared"
)

// Event is a publishable domain event.
type Event interface {
	Kind() string
}

// TodoListCreated is emitted after a list is persisted.
type TodoListCreated struct {
	ListID    uuid.UUID `json:"listId"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TodoListCreated) Kind() string { return KindTodoListCreated }

// TodoItemAdded is emitted after an item is persisted.
type TodoItemAdded struct {
	ListID    uuid.UUID       `json:"listId"`
	ItemID    uuid.UUID       `json:"itemId"`
	Title     string          `json:"title"`
	Priority  domain.Priority `json:"priority"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (TodoItemAdded) Kind() string { return KindTodoItemAdded }

// TodoListShared is emitted after a share is granted or its permission
// updated.
type TodoListShared struct {
	ListID     uuid.UUID              `json:"listId"`
	UserID     uuid.UUID              `json:"userId"`
	Permission domain.SharePermission `json:"permission"`
	SharedAt   time.Time              `json:"sharedAt"`
}

func (TodoListShared) Kind() string { return KindTodoListShared }

// Publisher ships domain events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
