package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
)

const itemColumns = `i.id, i.title, i.description, i.created_at, i.due_date, i.completed_at,
	       i.priority, i.status, a.id, a.email, a.first_name, a.last_name`

const itemFrom = `
	FROM todo_items i
	LEFT JOIN users a ON a.id = i.assigned_to_id`

// ListItems retrieves one page of a list's items, mirroring the postgres
// store's filtering, sorting, and pagination semantics.
func (s *Store) ListItems(ctx context.Context, filter dto.TodoItemFilter) (*dto.Page[dto.TodoItemResponse], error) {
	filter.Normalize()

	conds := []string{"i.list_id = ?"}
	args := []any{filter.ListID}

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		conds = append(conds, "(lower(i.title) LIKE ? OR lower(i.description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if filter.Priority != nil {
		conds = append(conds, "i.priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Status != nil {
		conds = append(conds, "i.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.DueDateFrom != nil {
		conds = append(conds, "i.due_date >= ?")
		args = append(args, *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		conds = append(conds, "i.due_date <= ?")
		args = append(args, *filter.DueDateTo)
	}
	if filter.AssignedToID != nil {
		conds = append(conds, "i.assigned_to_id = ?")
		args = append(args, *filter.AssignedToID)
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var exists bool
	if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = ?)", filter.ListID); err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, filter.ListID)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM todo_items i"+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := "SELECT " + itemColumns + itemFrom + where +
		orderClause(itemSortColumns, filter.SortBy, filter.IsDescending, "i.created_at") +
		" LIMIT ? OFFSET ?"

	rows, err := s.db.QueryxContext(ctx, query, append(args, filter.Limit(), filter.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]dto.TodoItemResponse, 0, filter.Limit())
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return dto.NewPage(items, total, filter.PageNumber, filter.PageSize), nil
}

// FindItemByID retrieves an item scoped to its list.
func (s *Store) FindItemByID(ctx context.Context, listID, id uuid.UUID) (*dto.TodoItemResponse, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+itemColumns+itemFrom+" WHERE i.list_id = ? AND i.id = ?", listID, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem adds an item to a list. New items always start NOT_STARTED
// with no completion timestamp; an absent priority defaults to MEDIUM.
func (s *Store) CreateItem(ctx context.Context, listID uuid.UUID, req dto.CreateItemRequest) (*dto.TodoItemResponse, error) {
	title, err := domain.NewItemTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description, err := domain.NewItemDescription(req.Description)
	if err != nil {
		return nil, err
	}
	priority, err := domain.NewPriority(string(req.Priority))
	if err != nil {
		return nil, err
	}

	// SQLite reports all FK failures identically, so check the list up
	// front to tell a missing list apart from a missing assignee.
	var exists bool
	if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = ?)", listID); err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todo_items (id, title, description, created_at, due_date, priority, status, list_id, assigned_to_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, title.String(), description, createdAt, utcPtr(req.DueDate),
		priority, domain.StatusNotStarted, listID, req.AssignedToID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.AssignedToID)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return s.FindItemByID(ctx, listID, id)
}

// UpdateItem replaces an item's mutable fields and maintains the
// status/completion pairing.
func (s *Store) UpdateItem(ctx context.Context, listID, id uuid.UUID, req dto.UpdateItemRequest) error {
	title, err := domain.NewItemTitle(req.Title)
	if err != nil {
		return err
	}
	description, err := domain.NewItemDescription(req.Description)
	if err != nil {
		return err
	}
	priority, err := domain.NewPriority(string(req.Priority))
	if err != nil {
		return err
	}
	status, err := domain.NewTodoStatus(string(req.Status))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldStatus domain.TodoStatus
	var oldCompletedAt *time.Time
	err = tx.QueryRowxContext(ctx,
		"SELECT status, completed_at FROM todo_items WHERE list_id = ? AND id = ?",
		listID, id).Scan(&oldStatus, &oldCompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		return fmt.Errorf("failed to load item: %w", err)
	}

	var completedAt *time.Time
	if status == domain.StatusCompleted {
		if oldStatus == domain.StatusCompleted {
			completedAt = oldCompletedAt
		} else {
			now := time.Now().UTC()
			completedAt = &now
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE todo_items
		 SET title = ?, description = ?, due_date = ?, priority = ?,
		     status = ?, completed_at = ?, assigned_to_id = ?
		 WHERE list_id = ? AND id = ?`,
		title.String(), description, utcPtr(req.DueDate), priority,
		status, completedAt, req.AssignedToID, listID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.AssignedToID)
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item update: %w", err)
	}
	return nil
}

// DeleteItem hard-deletes an item scoped to its list.
func (s *Store) DeleteItem(ctx context.Context, listID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM todo_items WHERE list_id = ? AND id = ?", listID, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrItemNotFound, id.String())
}

func scanItem(row sqlx.ColScanner) (dto.TodoItemResponse, error) {
	var item dto.TodoItemResponse
	var createdAt time.Time
	var dueDate, completedAt *time.Time
	var assigneeID *uuid.UUID
	var assigneeEmail, assigneeFirst, assigneeLast *string

	err := row.Scan(&item.ID, &item.Title, &item.Description, &createdAt, &dueDate, &completedAt,
		&item.Priority, &item.Status, &assigneeID, &assigneeEmail, &assigneeFirst, &assigneeLast)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.TodoItemResponse{}, err
		}
		return dto.TodoItemResponse{}, fmt.Errorf("failed to scan item: %w", err)
	}

	item.CreatedAt = createdAt.UTC()
	item.DueDate = utcPtr(dueDate)
	item.CompletedAt = utcPtr(completedAt)
	if assigneeID != nil {
		item.AssignedTo = &dto.UserSummary{
			ID:       *assigneeID,
			Email:    *assigneeEmail,
			FullName: *assigneeFirst + " " + *assigneeLast,
		}
	}
	return item, nil
}
