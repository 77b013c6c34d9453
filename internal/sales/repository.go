package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/shared"
)

// Tx is the set of row-locking operations available inside a sale
// transaction. Product and customer rows are locked FOR UPDATE so
// concurrent sales serialize on the rows they touch.
type Tx interface {
	GetProductForUpdate(ctx context.Context, userID, productID int64) (*products.Product, error)
	SaveProductStock(ctx context.Context, p *products.Product) error
	GetCustomerForUpdate(ctx context.Context, userID, customerID int64) (*customers.Customer, error)
	SaveCustomerCredit(ctx context.Context, c *customers.Customer) error
	InsertSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, userID, id int64) (*Sale, error)
	DeleteSale(ctx context.Context, userID, id int64) error
}

// Repository defines sale persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Get(ctx context.Context, userID, id int64) (*Sale, error)
	List(ctx context.Context, userID int64, f ListFilters) ([]Sale, int64, error)
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

func (t *pgTx) GetProductForUpdate(ctx context.Context, userID, productID int64) (*products.Product, error) {
	const query = `
		SELECT id, user_id, category_id, provider_id, name, description,
		       sale_price, cost_price, stock_quantity, minimum_stock,
		       unit_of_sale, manages_stock, active, created_at, updated_at
		FROM products
		WHERE user_id = $1 AND id = $2
		FOR UPDATE
	`
	var p products.Product
	var salePrice, costPrice, stockQty pgtype.Numeric
	err := t.tx.QueryRow(ctx, query, userID, productID).Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.ProviderID, &p.Name, &p.Description,
		&salePrice, &costPrice, &stockQty, &p.MinimumStock,
		&p.UnitOfSale, &p.ManagesStock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
		}
		return nil, err
	}
	p.SalePrice = db.DecimalFromNumeric(salePrice)
	p.CostPrice = db.DecimalPtrFromNumeric(costPrice)
	p.StockQuantity = db.DecimalFromNumeric(stockQty)
	return &p, nil
}

func (t *pgTx) SaveProductStock(ctx context.Context, p *products.Product) error {
	const query = `
		UPDATE products
		SET stock_quantity = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	_, err := t.tx.Exec(ctx, query, p.UserID, p.ID, db.NumericFromDecimal(p.StockQuantity))
	return err
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
		SET credit_balance = $3, last_credit_purchase_at = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	_, err := t.tx.Exec(ctx, query, c.UserID, c.ID,
		db.NumericFromDecimal(c.CreditBalance), c.LastCreditPurchaseAt)
	return err
}

func (t *pgTx) InsertSale(ctx context.Context, s *Sale) error {
	const saleQuery = `
		INSERT INTO sales (user_id, customer_id, payment_method, payment_status, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := t.tx.QueryRow(ctx, saleQuery,
		s.UserID, s.CustomerID, s.PaymentMethod, s.PaymentStatus,
		db.NumericFromDecimal(s.TotalAmount), s.Notes,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return err
	}

	const itemQuery = `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	batch := &pgx.Batch{}
	for i := range s.Items {
		item := &s.Items[i]
		item.SaleID = s.ID
		batch.Queue(itemQuery,
			item.SaleID, item.ProductID, item.ProductName,
			db.NumericFromDecimal(item.Quantity),
			db.NumericFromDecimal(item.UnitPrice),
			db.NumericFromDecimal(item.Subtotal),
		)
	}
	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := range s.Items {
		if err := results.QueryRow().Scan(&s.Items[i].ID); err != nil {
			return err
		}
	}
	return results.Close()
}

func (t *pgTx) GetSale(ctx context.Context, userID, id int64) (*Sale, error) {
	return getSale(ctx, t.tx, userID, id)
}

func (t *pgTx) DeleteSale(ctx context.Context, userID, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM sales WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale %d", shared.ErrNotFound, id)
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getSale(ctx context.Context, q queryer, userID, id int64) (*Sale, error) {
	const query = `
		SELECT id, user_id, customer_id, payment_method, payment_status, total_amount, notes, created_at
		FROM sales
		WHERE user_id = $1 AND id = $2
	`
	var s Sale
	var total pgtype.Numeric
	err := q.QueryRow(ctx, query, userID, id).Scan(
		&s.ID, &s.UserID, &s.CustomerID, &s.PaymentMethod, &s.PaymentStatus,
		&total, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: sale %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	s.TotalAmount = db.DecimalFromNumeric(total)

	items, err := loadItems(ctx, q, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

func loadItems(ctx context.Context, q queryer, saleIDs []int64) (map[int64][]SaleItem, error) {
	const query = `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]SaleItem, len(saleIDs))
	for rows.Next() {
		var item SaleItem
		var qty, price, subtotal pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &qty, &price, &subtotal); err != nil {
			return nil, err
		}
		item.Quantity = db.DecimalFromNumeric(qty)
		item.UnitPrice = db.DecimalFromNumeric(price)
		item.Subtotal = db.DecimalFromNumeric(subtotal)
		result[item.SaleID] = append(result[item.SaleID], item)
	}
	return result, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Sale, error) {
	return getSale(ctx, r.pool, userID, id)
}

func (r *PGRepository) List(ctx context.Context, userID int64, f ListFilters) ([]Sale, int64, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.PaymentMethod != "" {
		args = append(args, f.PaymentMethod)
		where = append(where, fmt.Sprintf("payment_method = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if f.ProductID != nil {
		args = append(args, *f.ProductID)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = sales.id AND si.product_id = $%d)", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	// Order expressions are whitelisted, never interpolated from input.
	orderBy := "created_at DESC, id DESC"
	switch f.OrderBy {
	case "date_asc":
		orderBy = "created_at ASC, id ASC"
	case "price_desc":
		orderBy = "total_amount DESC, id DESC"
	case "price_asc":
		orderBy = "total_amount ASC, id ASC"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM sales WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, customer_id, payment_method, payment_status, total_amount, notes, created_at
		FROM sales
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Sale
	var ids []int64
	for rows.Next() {
		var s Sale
		var amount pgtype.Numeric
		err := rows.Scan(&s.ID, &s.UserID, &s.CustomerID, &s.PaymentMethod, &s.PaymentStatus, &amount, &s.Notes, &s.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		s.TotalAmount = db.DecimalFromNumeric(amount)
		result = append(result, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := loadItems(ctx, r.pool, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range result {
			result[i].Items = items[result[i].ID]
		}
	}
	return result, total, nil
}

var _ Repository = (*PGRepository)(nil)
var _ Tx = (*pgTx)(nil)
