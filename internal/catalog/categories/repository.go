package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines category persistence.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Category, error)
	Get(ctx context.Context, userID, id int64) (*Category, error)
	Create(ctx context.Context, c Category) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, userID int64) ([]Category, error) {
	const query = `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Category, error) {
	const query = `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1 AND id = $2
	`
	var c Category
	err := r.pool.QueryRow(ctx, query, userID, id).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, c Category) (int64, error) {
	const query = `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, c.UserID, c.Name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: category name %q", shared.ErrConflict, c.Name)
		}
		return 0, err
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
