package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines user persistence.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func mapUniqueEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: email already registered", shared.ErrConflict)
	}
	return err
}

func (r *PGRepository) Create(ctx context.Context, u User) (int64, error) {
	const query = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := r.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash).Scan(&id); err != nil {
		return 0, mapUniqueEmail(err)
	}
	return id, nil
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u User
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) Update(ctx context.Context, u User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return mapUniqueEmail(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, u.ID)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
