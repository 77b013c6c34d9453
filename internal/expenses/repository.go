package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/shared"
)

// Tx is the set of operations available inside an expense transaction.
// Product rows are locked FOR UPDATE so restocks serialize against
// concurrent sales of the same product.
type Tx interface {
	GetProductForUpdate(ctx context.Context, userID, productID int64) (*products.Product, error)
	SaveProducts(ctx context.Context, ps []*products.Product) error
	InsertExpense(ctx context.Context, e *Expense) error
	ReplaceExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, userID, id int64) (*Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error
}

// Repository defines expense persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Get(ctx context.Context, userID, id int64) (*Expense, error)
	List(ctx context.Context, userID int64, f ListFilters) ([]Expense, int64, error)
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

// SaveProducts persists stock and cost price for every touched product in
// one batch.
func (t *pgTx) SaveProducts(ctx context.Context, ps []*products.Product) error {
	const query = `
		UPDATE products
		SET stock_quantity = $3, cost_price = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	batch := &pgx.Batch{}
	for _, p := range ps {
		batch.Queue(query, p.UserID, p.ID,
			db.NumericFromDecimal(p.StockQuantity),
			db.NumericFromDecimalPtr(p.CostPrice))
	}
	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()
	for range ps {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

func (t *pgTx) InsertExpense(ctx context.Context, e *Expense) error {
	const query = `
		INSERT INTO expenses (user_id, name, value, expense_date, type, payment_method, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		e.UserID, e.Name, db.NumericFromDecimal(e.Value), e.ExpenseDate,
		e.Type, e.PaymentMethod, e.Description,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return err
	}
	return t.insertItems(ctx, e)
}

// ReplaceExpense rewrites the expense row and swaps its restock items
// wholesale, matching the reverse-then-reapply update flow.
func (t *pgTx) ReplaceExpense(ctx context.Context, e *Expense) error {
	const query = `
		UPDATE expenses
		SET name = $3, value = $4, expense_date = $5, type = $6, payment_method = $7, description = $8
		WHERE user_id = $1 AND id = $2
	`
	tag, err := t.tx.Exec(ctx, query,
		e.UserID, e.ID, e.Name, db.NumericFromDecimal(e.Value), e.ExpenseDate,
		e.Type, e.PaymentMethod, e.Description,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense %d", shared.ErrNotFound, e.ID)
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM restock_items WHERE expense_id = $1`, e.ID); err != nil {
		return err
	}
	return t.insertItems(ctx, e)
}

func (t *pgTx) insertItems(ctx context.Context, e *Expense) error {
	const query = `
		INSERT INTO restock_items (expense_id, product_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range e.Items {
		item := &e.Items[i]
		item.ExpenseID = e.ID
		err := t.tx.QueryRow(ctx, query,
			item.ExpenseID, item.ProductID,
			db.NumericFromDecimal(item.Quantity),
			db.NumericFromDecimal(item.UnitCost),
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) GetExpense(ctx context.Context, userID, id int64) (*Expense, error) {
	return getExpense(ctx, t.tx, userID, id)
}

func (t *pgTx) DeleteExpense(ctx context.Context, userID, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM restock_items WHERE expense_id = $1`, id); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense %d", shared.ErrNotFound, id)
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getExpense(ctx context.Context, q queryer, userID, id int64) (*Expense, error) {
	const query = `
		SELECT id, user_id, name, value, expense_date, type, payment_method, description, created_at
		FROM expenses
		WHERE user_id = $1 AND id = $2
	`
	var e Expense
	var value pgtype.Numeric
	err := q.QueryRow(ctx, query, userID, id).Scan(
		&e.ID, &e.UserID, &e.Name, &value, &e.ExpenseDate,
		&e.Type, &e.PaymentMethod, &e.Description, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: expense %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	e.Value = db.DecimalFromNumeric(value)

	items, err := loadItems(ctx, q, []int64{e.ID})
	if err != nil {
		return nil, err
	}
	e.Items = items[e.ID]
	return &e, nil
}

func loadItems(ctx context.Context, q queryer, expenseIDs []int64) (map[int64][]RestockItem, error) {
	const query = `
		SELECT id, expense_id, product_id, quantity, unit_cost
		FROM restock_items
		WHERE expense_id = ANY($1)
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]RestockItem, len(expenseIDs))
	for rows.Next() {
		var item RestockItem
		var qty, cost pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.ProductID, &qty, &cost); err != nil {
			return nil, err
		}
		item.Quantity = db.DecimalFromNumeric(qty)
		item.UnitCost = db.DecimalFromNumeric(cost)
		result[item.ExpenseID] = append(result[item.ExpenseID], item)
	}
	return result, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Expense, error) {
	return getExpense(ctx, r.pool, userID, id)
}

func (r *PGRepository) List(ctx context.Context, userID int64, f ListFilters) ([]Expense, int64, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("expense_date < $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM expenses WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, name, value, expense_date, type, payment_method, description, created_at
		FROM expenses
		WHERE %s
		ORDER BY expense_date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Expense
	var ids []int64
	for rows.Next() {
		var e Expense
		var value pgtype.Numeric
		err := rows.Scan(&e.ID, &e.UserID, &e.Name, &value, &e.ExpenseDate,
			&e.Type, &e.PaymentMethod, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		e.Value = db.DecimalFromNumeric(value)
		result = append(result, e)
		ids = append(ids, e.ID)
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
