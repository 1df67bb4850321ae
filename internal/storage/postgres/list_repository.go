package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
)

const listQuery = `
	SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at,
	       u.id, u.email, u.first_name, u.last_name,
	       COUNT(i.id) AS item_count,
	       COUNT(i.id) FILTER (WHERE i.status = 'COMPLETED') AS completed_item_count
	FROM todo_lists l
	JOIN users u ON u.id = l.owner_id
	LEFT JOIN todo_items i ON i.list_id = l.id`

const listGroupBy = " GROUP BY l.id, u.id"

// ListLists returns every list with its owner summary and item counts.
func (s *Store) ListLists(ctx context.Context) ([]dto.TodoListResponse, error) {
	var lists []dto.TodoListResponse
	err := s.withRetry(ctx, "ListLists", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, listQuery+listGroupBy+" ORDER BY l.created_at")
		if err != nil {
			return fmt.Errorf("failed to query lists: %w", err)
		}
		defer rows.Close()

		lists = lists[:0]
		for rows.Next() {
			list, err := scanList(rows)
			if err != nil {
				return err
			}
			lists = append(lists, list)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []dto.TodoListResponse{}
	}
	return lists, nil
}

// FindListByID retrieves a single list with owner and counts.
// Returns domain.ErrListNotFound if the list doesn't exist.
func (s *Store) FindListByID(ctx context.Context, id uuid.UUID) (*dto.TodoListResponse, error) {
	var list dto.TodoListResponse
	err := s.withRetry(ctx, "FindListByID", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, listQuery+" WHERE l.id = $1"+listGroupBy, id)
		found, err := scanList(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrListNotFound, id)
			}
			return err
		}
		list = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateList persists a new list for the given owner.
// Returns domain.ErrUserNotFound if the owner doesn't exist.
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

	var list *dto.TodoListResponse
	err = s.withRetry(ctx, "CreateList", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO todo_lists (id, name, description, owner_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
			id, name.String(), description, req.OwnerID, createdAt)
		if err != nil {
			if isForeignKeyViolation(err, "owner_id") {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.OwnerID)
			}
			return fmt.Errorf("failed to create list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read for the owner summary and zeroed counts.
	list, err = s.FindListByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateList replaces the list's name and description and stamps
// last_modified_at. Returns domain.ErrListNotFound if the list doesn't
// exist.
func (s *Store) UpdateList(ctx context.Context, id uuid.UUID, req dto.UpdateListRequest) error {
	name, err := domain.NewListName(req.Name)
	if err != nil {
		return err
	}
	description, err := domain.NewDescription(req.Description)
	if err != nil {
		return err
	}

	return s.withRetry(ctx, "UpdateList", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE todo_lists SET name = $2, description = $3, last_modified_at = $4 WHERE id = $1`,
			id, name.String(), description, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to update list: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrListNotFound, id.String())
	})
}

// DeleteList hard-deletes a list. Items and shares cascade at the
// database level. Returns domain.ErrListNotFound if the list doesn't
// exist.
func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	return s.withRetry(ctx, "DeleteList", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, "DELETE FROM todo_lists WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrListNotFound, id.String())
	})
}

// ShareList grants or updates a user's permission on a list. Sharing the
// same list with the same user again overwrites the permission in place
// and keeps the original shared_at timestamp.
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

	var share dto.ShareResponse
	err = s.withRetry(ctx, "ShareList", func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = $1)", listID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check list: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
		}

		var user dto.UserSummary
		var firstName, lastName string
		err = tx.QueryRow(ctx, "SELECT id, email, first_name, last_name FROM users WHERE id = $1", userID).
			Scan(&user.ID, &user.Email, &firstName, &lastName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		user.FullName = firstName + " " + lastName

		// Update first: an existing grant keeps its id and shared_at.
		var shareID uuid.UUID
		var sharedAt time.Time
		err = tx.QueryRow(ctx,
			`UPDATE todo_list_shares SET permission = $3
			 WHERE todo_list_id = $1 AND shared_with_user_id = $2
			 RETURNING id, created_at`,
			listID, userID, permission).Scan(&shareID, &sharedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			shareID, err = newID()
			if err != nil {
				return err
			}
			sharedAt = time.Now().UTC()
			_, err = tx.Exec(ctx,
				`INSERT INTO todo_list_shares (id, todo_list_id, shared_with_user_id, permission, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				shareID, listID, userID, permission, sharedAt)
		}
		if err != nil {
			return fmt.Errorf("failed to share list: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit share: %w", err)
		}

		share = dto.ShareResponse{
			ID:             shareID,
			SharedWithUser: user,
			Permission:     permission,
			SharedAt:       sharedAt.UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// RemoveShare revokes a user's access to a list. Returns
// domain.ErrShareNotFound when no grant exists for the pair.
func (s *Store) RemoveShare(ctx context.Context, listID, userID uuid.UUID) error {
	return s.withRetry(ctx, "RemoveShare", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			"DELETE FROM todo_list_shares WHERE todo_list_id = $1 AND shared_with_user_id = $2",
			listID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove share: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrShareNotFound, listID.String()+"/"+userID.String())
	})
}

// ListShares returns every grant on a list with the grantee's summary.
// Returns domain.ErrListNotFound if the list doesn't exist.
func (s *Store) ListShares(ctx context.Context, listID uuid.UUID) ([]dto.ShareResponse, error) {
	const query = `
		SELECT sh.id, sh.permission, sh.created_at, u.id, u.email, u.first_name, u.last_name
		FROM todo_list_shares sh
		JOIN users u ON u.id = sh.shared_with_user_id
		WHERE sh.todo_list_id = $1
		ORDER BY sh.created_at`

	var shares []dto.ShareResponse
	err := s.withRetry(ctx, "ListShares", func(ctx context.Context) error {
		var exists bool
		if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM todo_lists WHERE id = $1)", listID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check list: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrListNotFound, listID)
		}

		rows, err := s.pool.Query(ctx, query, listID)
		if err != nil {
			return fmt.Errorf("failed to query shares: %w", err)
		}
		defer rows.Close()

		shares = shares[:0]
		for rows.Next() {
			var share dto.ShareResponse
			var sharedAt time.Time
			var firstName, lastName string
			if err := rows.Scan(&share.ID, &share.Permission, &sharedAt,
				&share.SharedWithUser.ID, &share.SharedWithUser.Email, &firstName, &lastName); err != nil {
				return fmt.Errorf("failed to scan share: %w", err)
			}
			share.SharedWithUser.FullName = firstName + " " + lastName
			share.SharedAt = sharedAt.UTC()
			shares = append(shares, share)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if shares == nil {
		shares = []dto.ShareResponse{}
	}
	return shares, nil
}

// scanList reads one list projection including the owner summary.
func scanList(row pgx.Row) (dto.TodoListResponse, error) {
	var list dto.TodoListResponse
	var owner dto.UserSummary
	var firstName, lastName string
	var createdAt time.Time
	var lastModifiedAt *time.Time

	err := row.Scan(&list.ID, &list.Name, &list.Description, &createdAt, &lastModifiedAt,
		&owner.ID, &owner.Email, &firstName, &lastName,
		&list.ItemCount, &list.CompletedItemCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
