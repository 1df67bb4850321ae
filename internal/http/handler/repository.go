package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/toucanlabs/toucans-api/internal/dto"
)

// Repository is the handler's view of the persistence layer. Defined
// here, on the consumer side, so any store satisfying it can back the
// API.
type Repository interface {
	UserRepository
	TodoListRepository
	TodoItemRepository
}

// UserRepository covers user CRUD and the user-scoped list projections.
type UserRepository interface {
	ListUsers(ctx context.Context, filter dto.UserFilter) (*dto.Page[dto.UserResponse], error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUserLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error)
	ListSharedLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error)
}

// TodoListRepository covers list CRUD and the sharing operations.
type TodoListRepository interface {
	ListLists(ctx context.Context) ([]dto.TodoListResponse, error)
	FindListByID(ctx context.Context, id uuid.UUID) (*dto.TodoListResponse, error)
	CreateList(ctx context.Context, req dto.CreateListRequest) (*dto.TodoListResponse, error)
	UpdateList(ctx context.Context, id uuid.UUID, req dto.UpdateListRequest) error
	DeleteList(ctx context.Context, id uuid.UUID) error
	ShareList(ctx context.Context, listID uuid.UUID, req dto.ShareListRequest) (*dto.ShareResponse, error)
	RemoveShare(ctx context.Context, listID, userID uuid.UUID) error
	ListShares(ctx context.Context, listID uuid.UUID) ([]dto.ShareResponse, error)
}

// TodoItemRepository covers item CRUD, always scoped to a list.
type TodoItemRepository interface {
	ListItems(ctx context.Context, filter dto.TodoItemFilter) (*dto.Page[dto.TodoItemResponse], error)
	FindItemByID(ctx context.Context, listID, id uuid.UUID) (*dto.TodoItemResponse, error)
	CreateItem(ctx context.Context, listID uuid.UUID, req dto.CreateItemRequest) (*dto.TodoItemResponse, error)
	UpdateItem(ctx context.Context, listID, id uuid.UUID, req dto.UpdateItemRequest) error
	DeleteItem(ctx context.Context, listID, id uuid.UUID) error
}
