package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/sales"
	"github.com/flick-business/flick-business/internal/shared"
)

// SaleDue is the settlement-relevant slice of a sale row.
type SaleDue struct {
	ID            int64
	CustomerID    *int64
	PaymentMethod shared.PaymentMethod
	PaymentStatus sales.PaymentStatus
	TotalAmount   decimal.Decimal
}

// Tx is the set of operations available inside a payment transaction.
type Tx interface {
	GetCustomerForUpdate(ctx context.Context, userID, customerID int64) (*customers.Customer, error)
	SaveCustomerCredit(ctx context.Context, c *customers.Customer) error
	GetSalesForUpdate(ctx context.Context, userID int64, saleIDs []int64) ([]SaleDue, error)
	MarkSalesPaid(ctx context.Context, userID int64, saleIDs []int64) error
	InsertPayment(ctx context.Context, p *Payment) error
}

// Repository defines payment persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Get(ctx context.Context, userID, id int64) (*Payment, error)
	List(ctx context.Context, userID int64, f ListFilters) ([]Payment, int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx runs fn inside a RepeatableRead transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(Tx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetCustomerForUpdate(ctx context.Context, userID, customerID int64) (*customers.Customer, error) {
	const query = `
		SELECT id, user_id, name, email, phone, tax_id,
		       credit_enabled, credit_limit, credit_balance,
		       last_credit_purchase_at, active, created_at, updated_at
		FROM customers
		WHERE user_id = $1 AND id = $2
		FOR UPDATE
	`
	var c customers.Customer
	var limit, balance pgtype.Numeric
	err := t.tx.QueryRow(ctx, query, userID, customerID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.TaxID,
		&c.CreditEnabled, &limit, &balance,
		&c.LastCreditPurchaseAt, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, customerID)
		}
		return nil, err
	}
	c.CreditLimit = db.DecimalPtrFromNumeric(limit)
	c.CreditBalance = db.DecimalFromNumeric(balance)
	return &c, nil
}

func (t *pgTx) SaveCustomerCredit(ctx context.Context, c *customers.Customer) error {
	const query = `
		UPDATE customers
		SET credit_balance = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	_, err := t.tx.Exec(ctx, query, c.UserID, c.ID, db.NumericFromDecimal(c.CreditBalance))
	return err
}

func (t *pgTx) GetSalesForUpdate(ctx context.Context, userID int64, saleIDs []int64) ([]SaleDue, error) {
	const query = `
		SELECT id, customer_id, payment_method, payment_status, total_amount
		FROM sales
		WHERE user_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, userID, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SaleDue
	for rows.Next() {
		var s SaleDue
		var total pgtype.Numeric
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.PaymentMethod, &s.PaymentStatus, &total); err != nil {
			return nil, err
		}
		s.TotalAmount = db.DecimalFromNumeric(total)
		result = append(result, s)
	}
	return result, rows.Err()
}

func (t *pgTx) MarkSalesPaid(ctx context.Context, userID int64, saleIDs []int64) error {
	const query = `
		UPDATE sales
		SET payment_status = $3
		WHERE user_id = $1 AND id = ANY($2)
	`
	_, err := t.tx.Exec(ctx, query, userID, saleIDs, sales.StatusPaid)
	return err
}

func (t *pgTx) InsertPayment(ctx context.Context, p *Payment) error {
	const query = `
		INSERT INTO payments (user_id, customer_id, amount, payment_method, payment_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		p.UserID, p.CustomerID, db.NumericFromDecimal(p.Amount), p.PaymentMethod, p.PaymentDate,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}
	for _, saleID := range p.SaleIDs {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO payment_sales (payment_id, sale_id) VALUES ($1, $2)`, p.ID, saleID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Payment, error) {
	const query = `
		SELECT id, user_id, customer_id, amount, payment_method, payment_date, created_at
		FROM payments
		WHERE user_id = $1 AND id = $2
	`
	var p Payment
	var amount pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, userID, id).Scan(
		&p.ID, &p.UserID, &p.CustomerID, &amount, &p.PaymentMethod, &p.PaymentDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	p.Amount = db.DecimalFromNumeric(amount)

	rows, err := r.pool.Query(ctx, `SELECT sale_id FROM payment_sales WHERE payment_id = $1 ORDER BY sale_id`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var saleID int64
		if err := rows.Scan(&saleID); err != nil {
			return nil, err
		}
		p.SaleIDs = append(p.SaleIDs, saleID)
	}
	return &p, rows.Err()
}

func (r *PGRepository) List(ctx context.Context, userID int64, f ListFilters) ([]Payment, int64, error) {
	where := "user_id = $1"
	args := []any{userID}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM payments WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, customer_id, amount, payment_method, payment_date, created_at
		FROM payments
		WHERE %s
		ORDER BY payment_date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Payment
	for rows.Next() {
		var p Payment
		var amount pgtype.Numeric
		err := rows.Scan(&p.ID, &p.UserID, &p.CustomerID, &amount, &p.PaymentMethod, &p.PaymentDate, &p.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		p.Amount = db.DecimalFromNumeric(amount)
		result = append(result, p)
	}
	return result, total, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
var _ Tx = (*pgTx)(nil)
