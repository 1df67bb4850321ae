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

const userColumns = "u.id, u.email, u.first_name, u.last_name, u.created_at, u.last_login_at"

// ListUsers retrieves users with filtering, sorting, and pagination.
// The search term matches email, first name, and last name
// (case-insensitive contains); the date range filters on creation time.
func (s *Store) ListUsers(ctx context.Context, filter dto.UserFilter) (*dto.Page[dto.UserResponse], error) {
	filter.Normalize()

	var conds []string
	var args []any

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+term+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, "(u.email ILIKE "+p+" OR u.first_name ILIKE "+p+" OR u.last_name ILIKE "+p+")")
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		conds = append(conds, fmt.Sprintf("u.created_at >= $%d", len(args)))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		conds = append(conds, fmt.Sprintf("u.created_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var page *dto.Page[dto.UserResponse]
	err := s.withRetry(ctx, "ListUsers", func(ctx context.Context) error {
		// Count the full filtered set independently of the page slice.
		var total int
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users u"+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}

		query := "SELECT " + userColumns + " FROM users u" + where +
			orderClause(userSortColumns, filter.SortBy, filter.IsDescending, "u.created_at") +
			fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

		rows, err := s.pool.Query(ctx, query, append(args, filter.Limit(), filter.Offset())...)
		if err != nil {
			return fmt.Errorf("failed to query users: %w", err)
		}
		defer rows.Close()

		users := make([]dto.UserResponse, 0, filter.Limit())
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read users: %w", err)
		}

		page = dto.NewPage(users, total, filter.PageNumber, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindUserByID retrieves a single user projection.
// Returns domain.ErrUserNotFound if the user doesn't exist.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	var user dto.UserResponse
	err := s.withRetry(ctx, "FindUserByID", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = $1", id)
		found, err := scanUser(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
			}
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new user and returns the projected row.
// Returns domain.ErrEmailTaken when the email is already registered.
func (s *Store) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}
	firstName, err := domain.NewPersonName("firstName", req.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := domain.NewPersonName("lastName", req.LastName)
	if err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()

	err = s.withRetry(ctx, "CreateUser", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO users (id, email, first_name, last_name, created_at) VALUES ($1, $2, $3, $4, $5)`,
			id, email, firstName, lastName, createdAt)
		if err != nil {
			if isUniqueViolation(err, "email") {
				return fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.UserResponse{
		ID:        id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		FullName:  firstName + " " + lastName,
		CreatedAt: createdAt,
	}, nil
}

// UpdateUser partially updates first/last name. Nil fields are untouched.
// Returns domain.ErrUserNotFound if the user doesn't exist.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) error {
	var sets []string
	args := []any{id}

	if req.FirstName != nil {
		firstName, err := domain.NewPersonName("firstName", *req.FirstName)
		if err != nil {
			return err
		}
		args = append(args, firstName)
		sets = append(sets, fmt.Sprintf("first_name = $%d", len(args)))
	}
	if req.LastName != nil {
		lastName, err := domain.NewPersonName("lastName", *req.LastName)
		if err != nil {
			return err
		}
		args = append(args, lastName)
		sets = append(sets, fmt.Sprintf("last_name = $%d", len(args)))
	}

	return s.withRetry(ctx, "UpdateUser", func(ctx context.Context) error {
		if len(sets) == 0 {
			// Nothing to change; still report whether the user exists.
			var exists bool
			if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check user: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
			}
			return nil
		}

		tag, err := s.pool.Exec(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrUserNotFound, id.String())
	})
}

// DeleteUser hard-deletes a user. The owner FK on todo_lists is
// non-cascading, so deleting a user who still owns lists is rejected by
// the store and reported as domain.ErrOwnerHasLists. Shares targeting the
// user cascade away.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.withRetry(ctx, "DeleteUser", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			if isForeignKeyViolation(err, "owner_id") {
				return fmt.Errorf("%w: %s", domain.ErrOwnerHasLists, id)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrUserNotFound, id.String())
	})
}

// ListUserLists returns the lists owned by the user, annotated with item
// and completed-item counts from aggregation.
func (s *Store) ListUserLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error) {
	const query = `
		SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at,
		       COUNT(i.id) AS item_count,
		       COUNT(i.id) FILTER (WHERE i.status = 'COMPLETED') AS completed_item_count
		FROM todo_lists l
		LEFT JOIN todo_items i ON i.list_id = l.id
		WHERE l.owner_id = $1
		GROUP BY l.id
		ORDER BY l.created_at`

	var lists []dto.TodoListResponse
	err := s.withRetry(ctx, "ListUserLists", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to query user lists: %w", err)
		}
		defer rows.Close()

		lists = lists[:0]
		for rows.Next() {
			var list dto.TodoListResponse
			var createdAt time.Time
			var lastModifiedAt *time.Time
			if err := rows.Scan(&list.ID, &list.Name, &list.Description, &createdAt,
				&lastModifiedAt, &list.ItemCount, &list.CompletedItemCount); err != nil {
				return fmt.Errorf("failed to scan list: %w", err)
			}
			list.CreatedAt = createdAt.UTC()
			list.LastModifiedAt = utcPtr(lastModifiedAt)
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

// ListSharedLists returns the lists shared with the user, each carrying
// the grantee's permission level and item counts.
func (s *Store) ListSharedLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error) {
	const query = `
		SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at, sh.permission,
		       COUNT(i.id) AS item_count,
		       COUNT(i.id) FILTER (WHERE i.status = 'COMPLETED') AS completed_item_count
		FROM todo_list_shares sh
		JOIN todo_lists l ON l.id = sh.todo_list_id
		LEFT JOIN todo_items i ON i.list_id = l.id
		WHERE sh.shared_with_user_id = $1
		GROUP BY l.id, sh.permission
		ORDER BY l.created_at`

	var lists []dto.TodoListResponse
	err := s.withRetry(ctx, "ListSharedLists", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to query shared lists: %w", err)
		}
		defer rows.Close()

		lists = lists[:0]
		for rows.Next() {
			var list dto.TodoListResponse
			var createdAt time.Time
			var lastModifiedAt *time.Time
			var permission domain.SharePermission
			if err := rows.Scan(&list.ID, &list.Name, &list.Description, &createdAt,
				&lastModifiedAt, &permission, &list.ItemCount, &list.CompletedItemCount); err != nil {
				return fmt.Errorf("failed to scan shared list: %w", err)
			}
			list.CreatedAt = createdAt.UTC()
			list.LastModifiedAt = utcPtr(lastModifiedAt)
			list.Permission = &permission
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

// scanUser reads one user projection from a row.
func scanUser(row pgx.Row) (dto.UserResponse, error) {
	var user dto.UserResponse
	var createdAt time.Time
	var lastLoginAt *time.Time

	if err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &createdAt, &lastLoginAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dto.UserResponse{}, err
		}
		return dto.UserResponse{}, fmt.Errorf("failed to scan user: %w", err)
	}

	user.FullName = user.FirstName + " " + user.LastName
	user.CreatedAt = createdAt.UTC()
	user.LastLoginAt = utcPtr(lastLoginAt)
	return user, nil
}

// utcPtr normalizes an optional timestamp to UTC.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
