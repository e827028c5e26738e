package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"commerce-api/internal/dbx"
)

const uniqueViolation = "23505"

// PostgresRepository persists users in PostgreSQL through the pgx stdlib
// driver.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository binds a repository to the given database handle.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (public_id, email, password_hash, name, role, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $6, false)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		u.PublicID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) FindByPublicID(ctx context.Context, publicID string) (*User, error) {
	query := `
		SELECT id, public_id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE public_id = $1 AND deleted = false`

	return r.scanOne(r.db.QueryRowContext(ctx, query, publicID))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, public_id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1 AND deleted = false`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted = false)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, publicID string) error {
	query := `
		UPDATE users
		SET deleted = true, deleted_at = $2, updated_at = $2
		WHERE public_id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, publicID, time.Now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	u := &User{}
	var role string
	err := row.Scan(&u.ID, &u.PublicID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Role = Role(role)
	return u, nil
}
