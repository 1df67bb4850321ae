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

const userColumns = "u.id, u.email, u.first_name, u.last_name, u.created_at, u.last_login_at"

// ListUsers retrieves users with filtering, sorting, and pagination.
func (s *Store) ListUsers(ctx context.Context, filter dto.UserFilter) (*dto.Page[dto.UserResponse], error) {
	filter.Normalize()

	var conds []string
	var args []any

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		conds = append(conds, "(lower(u.email) LIKE ? OR lower(u.first_name) LIKE ? OR lower(u.last_name) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.FromDate != nil {
		conds = append(conds, "u.created_at >= ?")
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		conds = append(conds, "u.created_at <= ?")
		args = append(args, *filter.ToDate)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users u"+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := "SELECT " + userColumns + " FROM users u" + where +
		orderClause(userSortColumns, filter.SortBy, filter.IsDescending, "u.created_at") +
		" LIMIT ? OFFSET ?"

	rows, err := s.db.QueryxContext(ctx, query, append(args, filter.Limit(), filter.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]dto.UserResponse, 0, filter.Limit())
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return dto.NewPage(users, total, filter.PageNumber, filter.PageSize), nil
}

// FindUserByID retrieves a single user projection.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new user and returns the projected row.
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, firstName, lastName, createdAt)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
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
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) error {
	var sets []string
	var args []any

	if req.FirstName != nil {
		firstName, err := domain.NewPersonName("firstName", *req.FirstName)
		if err != nil {
			return err
		}
		sets = append(sets, "first_name = ?")
		args = append(args, firstName)
	}
	if req.LastName != nil {
		lastName, err := domain.NewPersonName("lastName", *req.LastName)
		if err != nil {
			return err
		}
		sets = append(sets, "last_name = ?")
		args = append(args, lastName)
	}

	if len(sets) == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)", id); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrUserNotFound, id.String())
}

// DeleteUser hard-deletes a user. The owner FK on todo_lists is
// non-cascading, so a user who still owns lists is rejected.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrOwnerHasLists, id)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, _ := result.RowsAffected()
	return checkRowsAffected(rows, domain.ErrUserNotFound, id.String())
}

// ListUserLists returns the lists owned by the user with item counts.
func (s *Store) ListUserLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error) {
	const query = `
		SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at,
		       COUNT(i.id) AS item_count,
		       COALESCE(SUM(CASE WHEN i.status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS completed_item_count
		FROM todo_lists l
		LEFT JOIN todo_items i ON i.list_id = l.id
		WHERE l.owner_id = ?
		GROUP BY l.id
		ORDER BY l.created_at`

	rows, err := s.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user lists: %w", err)
	}
	defer rows.Close()

	lists := []dto.TodoListResponse{}
	for rows.Next() {
		var list dto.TodoListResponse
		var createdAt time.Time
		var lastModifiedAt *time.Time
		if err := rows.Scan(&list.ID, &list.Name, &list.Description, &createdAt,
			&lastModifiedAt, &list.ItemCount, &list.CompletedItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		list.CreatedAt = createdAt.UTC()
		list.LastModifiedAt = utcPtr(lastModifiedAt)
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// ListSharedLists returns the lists shared with the user, each carrying
// the grantee's permission level and item counts.
func (s *Store) ListSharedLists(ctx context.Context, userID uuid.UUID) ([]dto.TodoListResponse, error) {
	const query = `
		SELECT l.id, l.name, l.description, l.created_at, l.last_modified_at, sh.permission,
		       COUNT(i.id) AS item_count,
		       COALESCE(SUM(CASE WHEN i.status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS completed_item_count
		FROM todo_list_shares sh
		JOIN todo_lists l ON l.id = sh.todo_list_id
		LEFT JOIN todo_items i ON i.list_id = l.id
		WHERE sh.shared_with_user_id = ?
		GROUP BY l.id, sh.permission
		ORDER BY l.created_at`

	rows, err := s.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared lists: %w", err)
	}
	defer rows.Close()

	lists := []dto.TodoListResponse{}
	for rows.Next() {
		var list dto.TodoListResponse
		var createdAt time.Time
		var lastModifiedAt *time.Time
		var permission domain.SharePermission
		if err := rows.Scan(&list.ID, &list.Name, &list.Description, &createdAt,
			&lastModifiedAt, &permission, &list.ItemCount, &list.CompletedItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan shared list: %w", err)
		}
		list.CreatedAt = createdAt.UTC()
		list.LastModifiedAt = utcPtr(lastModifiedAt)
		list.Permission = &permission
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func scanUser(row sqlx.ColScanner) (dto.UserResponse, error) {
	var user dto.UserResponse
	var createdAt time.Time
	var lastLoginAt *time.Time

	if err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &createdAt, &lastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.UserResponse{}, err
		}
		return dto.UserResponse{}, fmt.Errorf("failed to scan user: %w", err)
	}

	user.FullName = user.FirstName + " " + user.LastName
	user.CreatedAt = createdAt.UTC()
	user.LastLoginAt = utcPtr(lastLoginAt)
	return user, nil
}
