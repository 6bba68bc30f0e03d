package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, external_id, email, name, image, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var image sql.NullString
	if err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.Name,
		&image,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if image.Valid {
		user.Image = &image.String
	}
	return user, nil
}

// Upsert creates the user for externalID or overwrites its email, name and
// image. It is one INSERT ... ON CONFLICT statement, so concurrent upserts for
// the same id never produce two rows.
func (r *UserRepository) Upsert(ctx context.Context, externalID string, attrs models.UserAttributes) (*models.User, error) {
	query := `
		INSERT INTO users (id, external_id, email, name, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (external_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    image = EXCLUDED.image,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.New(),
		externalID,
		attrs.Email,
		attrs.Name,
		attrs.Image,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// DeleteByExternalID removes the user for externalID. A missing row is not an
// error; the boolean reports whether a row was removed.
func (r *UserRepository) DeleteByExternalID(ctx context.Context, externalID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetByExternalID retrieves a user by identity-provider subject id
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetOrCreate inserts user unless a row for its external id already exists,
// and returns the stored row. created reports whether this call inserted it.
// A webhook upsert racing with this insert wins without error.
func (r *UserRepository) GetOrCreate(ctx context.Context, user *models.User) (stored *models.User, created bool, err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, external_id, email, name, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING ` + userColumns

	stored, err = scanUser(r.db.QueryRowContext(ctx, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Name,
		user.Image,
		time.Now(),
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	stored, err = r.GetByExternalID(ctx, user.ExternalID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// List returns users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
