package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines provider persistence.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Provider, error)
	Get(ctx context.Context, userID, id int64) (*Provider, error)
	Create(ctx context.Context, p Provider) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, userID int64) ([]Provider, error) {
	const query = `
		SELECT id, user_id, name, email, phone, created_at
		FROM providers
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Provider, error) {
	const query = `
		SELECT id, user_id, name, email, phone, created_at
		FROM providers
		WHERE user_id = $1 AND id = $2
	`
	var p Provider
	err := r.pool.QueryRow(ctx, query, userID, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: provider %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, p Provider) (int64, error) {
	const query = `
		INSERT INTO providers (user_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := r.pool.QueryRow(ctx, query, p.UserID, p.Name, p.Email, p.Phone).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
