package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines persistence for general settings.
type Repository interface {
	GetByUser(ctx context.Context, userID int64) (*GeneralSettings, error)
	CreateDefault(ctx context.Context, userID int64) error
	Update(ctx context.Context, s *GeneralSettings) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByUser(ctx context.Context, userID int64) (*GeneralSettings, error) {
	const query = `
		SELECT id, user_id, stock_control_type, business_name, business_field, updated_at
		FROM general_settings
		WHERE user_id = $1
	`
	var s GeneralSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.StockControlType, &s.BusinessName, &s.BusinessField, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: settings for user", shared.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// CreateDefault inserts a PER_ITEM row for the user. Safe to race: the
// unique constraint on user_id makes concurrent first reads converge.
func (r *PGRepository) CreateDefault(ctx context.Context, userID int64) error {
	const query = `
		INSERT INTO general_settings (user_id, stock_control_type)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, StockControlPerItem)
	return err
}

func (r *PGRepository) Update(ctx context.Context, s *GeneralSettings) error {
	const query = `
		UPDATE general_settings
		SET stock_control_type = $1, business_name = $2, business_field = $3, updated_at = NOW()
		WHERE user_id = $4
	`
	_, err := r.pool.Exec(ctx, query, s.StockControlType, s.BusinessName, s.BusinessField, s.UserID)
	return err
}

var _ Repository = (*PGRepository)(nil)
