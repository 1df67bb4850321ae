package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
)

const listQuery = `
	SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at,
	       u.id, u.email, u.first_name, u.last_name,
	       COUNT(i.id) AS item_count,
	       COALESCE(SUM(CASE WHEN i.status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS completed_item_count
	FROM todo_lists l
	JOIN users u ON u.id = l.owner_id
	LEFT JOIN todo_items i ON i.list_id = l.id`

const listGroupBy = " GROUP BY l.id, u.id"

// ListLists returns every list with its owner summary and item counts.
func (s *Store) ListLists(ctx context.Context) ([]dto.TodoListResponse, error) {
	rows, err := s.db.QueryxContext(ctx, listQuery+listGroupBy+" ORDER BY l.created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	lists := []dto.TodoListResponse{}
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// FindListByID retrieves a single list with owner and counts.
func (s *Store) FindListByID(ctx context.Context, id uuid.UUID) (*dto.TodoListResponse, error) {
	row := s.db.QueryRowxContext(ctx, listQuery+" WHERE l.id = ?"+listGroupBy, id)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, id)
		}
		return nil, err
	}
	return &list, nil
}

// CreateList persists a new list for the given owner.
func (s *Store) CreateList(ctx context.Context, req dto.CreateListRequest) (*dto.TodoListResponse, error) {
	name, err := domain.NewListName(req.Name)
	if err != nil {
		return nil, err
	}
	description, err := domain.NewDescription(req.Description)
	if err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todo_lists (id, name, description, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name.String(), description, req.OwnerID, createdAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.OwnerID)
		}
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return s.FindListByID(ctx, id)
}

// UpdateList replaces the list's name and description and stamps
// last_modified_at.
func (s *Store) UpdateList(ctx context.Context, id uuid.UUID, req dto.UpdateListRequest) error {
	name, err := domain.NewListName(req.Name)
	if err != nil {
		return err
	}
	description, err := domain.NewDescription(req.Description)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE todo_lists SET name = ?, description = ?, last_modified_at = ? WHERE id = ?`,
		name.String(), description, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrListNotFound, id.String())
}

// DeleteList hard-deletes a list. Items and shares cascade.
func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrListNotFound, id.String())
}

// ShareList grants or updates a user's permission on a list, keeping the
// original shared_at when a grant already exists.
func (s *Store) ShareList(ctx context.Context, listID uuid.UUID, req dto.ShareListRequest) (*dto.ShareResponse, error) {
	if req.UserID == nil {
		return nil, domain.ErrShareUserRequired
	}
	if req.Permission == nil {
		return nil, domain.ErrSharePermissionRequired
	}
	permission, err := domain.NewSharePermission(string(*req.Permission))
	if err != nil {
		return nil, err
	}
	userID := *req.UserID

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = ?)", listID); err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
	}

	var user dto.UserSummary
	var firstName, lastName string
	err = tx.QueryRowxContext(ctx, "SELECT id, email, first_name, last_name FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Email, &firstName, &lastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.FullName = firstName + " " + lastName

	// Update first: an existing grant keeps its id and shared_at.
	var shareID uuid.UUID
	var sharedAt time.Time
	err = tx.QueryRowxContext(ctx,
		"SELECT id, created_at FROM todo_list_shares WHERE todo_list_id = ? AND shared_with_user_id = ?",
		listID, userID).Scan(&shareID, &sharedAt)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_list_shares SET permission = ? WHERE id = ?", permission, shareID); err != nil {
			return nil, fmt.Errorf("failed to update share: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		shareID, err = newID()
		if err != nil {
			return nil, err
		}
		sharedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todo_list_shares (id, todo_list_id, shared_with_user_id, permission, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			shareID, listID, userID, permission, sharedAt); err != nil {
			return nil, fmt.Errorf("failed to share list: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load share: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit share: %w", err)
	}

	return &dto.ShareResponse{
		ID:             shareID,
		SharedWithUser: user,
		Permission:     permission,
		SharedAt:       sharedAt.UTC(),
	}, nil
}

// RemoveShare revokes a user's access to a list.
func (s *Store) RemoveShare(ctx context.Context, listID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM todo_list_shares WHERE todo_list_id = ? AND shared_with_user_id = ?",
		listID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove share: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrShareNotFound, listID.String()+"/"+userID.String())
}

// ListShares returns every grant on a list with the grantee's summary.
func (s *Store) ListShares(ctx context.Context, listID uuid.UUID) ([]dto.ShareResponse, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = ?)", listID); err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
	}

	const query = `
		SELECT sh.id, sh.permission, sh.created_at, u.id, u.email, u.first_name, u.last_name
		FROM todo_list_shares sh
		JOIN users u ON u.id = sh.shared_with_user_id
		WHERE sh.todo_list_id = ?
		ORDER BY sh.created_at`

	rows, err := s.db.QueryxContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	shares := []dto.ShareResponse{}
	for rows.Next() {
		var share dto.ShareResponse
		var sharedAt time.Time
		var firstName, lastName string
		if err := rows.Scan(&share.ID, &share.Permission, &sharedAt,
			&share.SharedWithUser.ID, &share.SharedWithUser.Email, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		share.SharedWithUser.FullName = firstName + " " + lastName
		share.SharedAt = sharedAt.UTC()
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

func scanList(row sqlx.ColScanner) (dto.TodoListResponse, error) {
	var list dto.TodoListResponse
	var owner dto.UserSummary
	var firstName, lastName string
	var createdAt time.Time
	var lastModifiedAt *time.Time

	err := row.Scan(&list.ID, &list.Name, &list.Description, &createdAt, &lastModifiedAt,
		&owner.ID, &owner.Email, &firstName, &lastName,
		&list.ItemCount, &list.CompletedItemCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.TodoListResponse{}, err
		}
		return dto.TodoListResponse{}, fmt.Errorf("failed to scan list: %w", err)
	}

	owner.FullName = firstName + " " + lastName
	list.Owner = &owner
	list.CreatedAt = createdAt.UTC()
	list.LastModifiedAt = utcPtr(lastModifiedAt)
	return list, nil
}
