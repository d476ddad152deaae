// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/penward/marketplace/internal/cache"
	"github.com/penward/marketplace/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]User, int, error)
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// repository is the sole owner of the user cache: every write invalidates
// the touched id before the statement runs and again after it returns, so
// a concurrent reader can never re-seed the old snapshot past a committed
// write.
type repository struct {
	db    *core.Database
	cache cache.Cache[User]
}

func NewRepository(db *core.Database, c cache.Cache[User]) Repository {
	return &repository{db: db, cache: c}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, password_hash, picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.DB.GetContext(ctx, user, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Picture,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	if cached, ok := r.cache.Get(ctx, id); ok {
		return &cached, nil
	}

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, picture, created_at, updated_at
		FROM users
		WHERE id = $1`

	var user User
	err := r.db.DB.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", core.ClassifyStoreError(err))
	}

	r.cache.Put(ctx, id, user)

	return &user, nil
}

func (r *repository) GetByName(
	ctx context.Context,
	name string,
) (*User, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, picture, created_at, updated_at
		FROM users
		WHERE name = $1`

	var user User
	err := r.db.DB.GetContext(ctx, &user, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by name: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(
			"get user by name: %w",
			core.ClassifyStoreError(err),
		)
	}

	return &user, nil
}

func (r *repository) ExistsByName(
	ctx context.Context,
	name string,
) (bool, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)`

	var exists bool
	if err := r.db.DB.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf(
			"check name exists: %w",
			core.ClassifyStoreError(err),
		)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	r.cache.Invalidate(ctx, user.ID)
	defer r.cache.Invalidate(ctx, user.ID)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET name = $2, email = $3, picture = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.DB.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Email,
		user.Picture,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	r.cache.Invalidate(ctx, id)
	defer r.cache.Invalidate(ctx, id)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	r.cache.Invalidate(ctx, id)
	defer r.cache.Invalidate(ctx, id)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	// Claims and submissions cascade at the schema level; orders placed by
	// the user survive with creator_id set NULL.
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	params.Normalize()

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	whereClause := "TRUE"
	args := []any{}
	if params.Search != "" {
		whereClause = "(name LIKE $1 OR email LIKE $1)"
		args = append(args, "%"+escapeLike(params.Search)+"%")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf(
			"count users: %w",
			core.ClassifyStoreError(err),
		)
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, picture, created_at, updated_at
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.DB.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf(
			"list users: %w",
			core.ClassifyStoreError(err),
		)
	}

	return users, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
