package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines customer persistence.
type Repository interface {
	Create(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, c Customer) error
	Get(ctx context.Context, userID, id int64) (*Customer, error)
	List(ctx context.Context, userID int64, f ListFilters) ([]Customer, int64, error)
	SetActive(ctx context.Context, userID, id int64, active bool) error
	Delete(ctx context.Context, userID, id int64) error
	TopBuyers(ctx context.Context, userID int64, limit int) ([]Customer, error)
}

const customerColumns = `
	c.id, c.user_id, c.name, c.email, c.phone, c.tax_id,
	c.credit_enabled, c.credit_limit, c.credit_balance,
	c.last_credit_purchase_at, c.active, c.created_at, c.updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanCustomer(row pgx.Row, c *Customer) error {
	var limit, balance pgtype.Numeric
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.TaxID,
		&c.CreditEnabled, &limit, &balance,
		&c.LastCreditPurchaseAt, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.CreditLimit = db.DecimalPtrFromNumeric(limit)
	c.CreditBalance = db.DecimalFromNumeric(balance)
	return nil
}

func mapUniqueTaxID(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: tax id already registered", shared.ErrConflict)
	}
	return err
}

func (r *PGRepository) Create(ctx context.Context, c Customer) (int64, error) {
	const query = `
		INSERT INTO customers (
			user_id, name, email, phone, tax_id,
			credit_enabled, credit_limit, credit_balance, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		c.UserID, c.Name, c.Email, c.Phone, c.TaxID,
		c.CreditEnabled, db.NumericFromDecimalPtr(c.CreditLimit),
		db.NumericFromDecimal(c.CreditBalance), c.Active,
	).Scan(&id)
	if err != nil {
		return 0, mapUniqueTaxID(err)
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, c Customer) error {
	const query = `
		UPDATE customers
		SET name = $3, email = $4, phone = $5, tax_id = $6,
		    credit_enabled = $7, credit_limit = $8, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		c.UserID, c.ID, c.Name, c.Email, c.Phone, c.TaxID,
		c.CreditEnabled, db.NumericFromDecimalPtr(c.CreditLimit),
	)
	if err != nil {
		return mapUniqueTaxID(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, c.ID)
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Customer, error) {
	query := `SELECT` + customerColumns + ` FROM customers c WHERE c.user_id = $1 AND c.id = $2`
	var c Customer
	if err := scanCustomer(r.pool.QueryRow(ctx, query, userID, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) List(ctx context.Context, userID int64, f ListFilters) ([]Customer, int64, error) {
	where := []string{"c.user_id = $1"}
	args := []any{userID}

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("c.active = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM customers c WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT`+customerColumns+`
		FROM customers c
		WHERE %s
		ORDER BY c.name ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		var c Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

func (r *PGRepository) SetActive(ctx context.Context, userID, id int64, active bool) error {
	const query = `
		UPDATE customers
		SET active = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	return nil
}

func (r *PGRepository) TopBuyers(ctx context.Context, userID int64, limit int) ([]Customer, error) {
	query := `
		SELECT` + customerColumns + `
		FROM customers c
		JOIN (
			SELECT customer_id, count(*) AS purchases
			FROM sales
			WHERE user_id = $1 AND customer_id IS NOT NULL
			GROUP BY customer_id
		) s ON s.customer_id = c.id
		WHERE c.user_id = $1 AND c.active
		ORDER BY s.purchases DESC, c.name ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		var c Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
