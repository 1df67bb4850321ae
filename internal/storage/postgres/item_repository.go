package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
)

const itemColumns = `i.id, i.title, i.description, i.created_at, i.due_date, i.completed_at,
	       i.priority, i.status, a.id, a.email, a.first_name, a.last_name`

const itemFrom = `
	FROM todo_items i
	LEFT JOIN users a ON a.id = i.assigned_to_id`

// ListItems retrieves one page of a list's items, optionally narrowed by
// priority, status, due-date range, assignee, and a case-insensitive
// title/description search. Returns domain.ErrListNotFound if the list
// doesn't exist.
func (s *Store) ListItems(ctx context.Context, filter dto.TodoItemFilter) (*dto.Page[dto.TodoItemResponse], error) {
	filter.Normalize()

	args := []any{filter.ListID}
	conds := []string{"i.list_id = $1"}

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+term+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, "(i.title ILIKE "+p+" OR i.description ILIKE "+p+")")
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conds = append(conds, fmt.Sprintf("i.priority = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if filter.DueDateFrom != nil {
		args = append(args, *filter.DueDateFrom)
		conds = append(conds, fmt.Sprintf("i.due_date >= $%d", len(args)))
	}
	if filter.DueDateTo != nil {
		args = append(args, *filter.DueDateTo)
		conds = append(conds, fmt.Sprintf("i.due_date <= $%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		conds = append(conds, fmt.Sprintf("i.assigned_to_id = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var page *dto.Page[dto.TodoItemResponse]
	err := s.withRetry(ctx, "ListItems", func(ctx context.Context) error {
		var exists bool
		if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = $1)", filter.ListID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check list: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrListNotFound, filter.ListID)
		}

		var total int
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM todo_items i"+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count items: %w", err)
		}

		query := "SELECT " + itemColumns + itemFrom + where +
			orderClause(itemSortColumns, filter.SortBy, filter.IsDescending, "i.created_at") +
			fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

		rows, err := s.pool.Query(ctx, query, append(args, filter.Limit(), filter.Offset())...)
		if err != nil {
			return fmt.Errorf("failed to query items: %w", err)
		}
		defer rows.Close()

		items := make([]dto.TodoItemResponse, 0, filter.Limit())
		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read items: %w", err)
		}

		page = dto.NewPage(items, total, filter.PageNumber, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindItemByID retrieves an item scoped to its list: an existing item
// addressed through the wrong list resolves to domain.ErrItemNotFound.
func (s *Store) FindItemByID(ctx context.Context, listID, id uuid.UUID) (*dto.TodoItemResponse, error) {
	var item dto.TodoItemResponse
	err := s.withRetry(ctx, "FindItemByID", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx,
			"SELECT "+itemColumns+itemFrom+" WHERE i.list_id = $1 AND i.id = $2", listID, id)
		found, err := scanItem(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
			}
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem adds an item to a list. New items always start NOT_STARTED
// with no completion timestamp regardless of caller input; an absent
// priority defaults to MEDIUM. Returns domain.ErrListNotFound for a
// missing list and domain.ErrUserNotFound for a missing assignee.
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

	id, err := newID()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()

	err = s.withRetry(ctx, "CreateItem", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO todo_items (id, title, description, created_at, due_date, priority, status, list_id, assigned_to_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, title.String(), description, createdAt, utcPtr(req.DueDate),
			priority, domain.StatusNotStarted, listID, req.AssignedToID)
		if err != nil {
			if isForeignKeyViolation(err, "list_id") {
				return fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
			}
			if isForeignKeyViolation(err, "assigned_to_id") {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.AssignedToID)
			}
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read for the assignee summary.
	return s.FindItemByID(ctx, listID, id)
}

// UpdateItem replaces an item's mutable fields and maintains the
// status/completion pairing: entering COMPLETED stamps completed_at,
// staying COMPLETED keeps the original stamp, and leaving COMPLETED
// clears it.
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

	return s.withRetry(ctx, "UpdateItem", func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var oldStatus domain.TodoStatus
		var oldCompletedAt *time.Time
		err = tx.QueryRow(ctx,
			"SELECT status, completed_at FROM todo_items WHERE list_id = $1 AND id = $2 FOR UPDATE",
			listID, id).Scan(&oldStatus, &oldCompletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
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

		_, err = tx.Exec(ctx,
			`UPDATE todo_items
			 SET title = $3, description = $4, due_date = $5, priority = $6,
			     status = $7, completed_at = $8, assigned_to_id = $9
			 WHERE list_id = $1 AND id = $2`,
			listID, id, title.String(), description, utcPtr(req.DueDate),
			priority, status, completedAt, req.AssignedToID)
		if err != nil {
			if isForeignKeyViolation(err, "assigned_to_id") {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.AssignedToID)
			}
			return fmt.Errorf("failed to update item: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit item update: %w", err)
		}
		return nil
	})
}

// DeleteItem hard-deletes an item scoped to its list.
func (s *Store) DeleteItem(ctx context.Context, listID, id uuid.UUID) error {
	return s.withRetry(ctx, "DeleteItem", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			"DELETE FROM todo_items WHERE list_id = $1 AND id = $2", listID, id)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrItemNotFound, id.String())
	})
}

// scanItem reads one item projection including the optional assignee.
func scanItem(row pgx.Row) (dto.TodoItemResponse, error) {
	var item dto.TodoItemResponse
	var createdAt time.Time
	var dueDate, completedAt *time.Time
	var assigneeID *uuid.UUID
	var assigneeEmail, assigneeFirst, assigneeLast *string

	err := row.Scan(&item.ID, &item.Title, &item.Description, &createdAt, &dueDate, &completedAt,
		&item.Priority, &item.Status, &assigneeID, &assigneeEmail, &assigneeFirst, &assigneeLast)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
