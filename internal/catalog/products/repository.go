package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines product persistence.
type Repository interface {
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, p Product) error
	Get(ctx context.Context, userID, id int64) (*Product, error)
	List(ctx context.Context, userID int64, f ListFilters) ([]Product, int64, error)
	SetActive(ctx context.Context, userID, id int64, active bool) error
	DeletePermanently(ctx context.Context, userID, id int64) error
	MostSold(ctx context.Context, userID int64, limit int) ([]SoldProduct, error)
	LowStock(ctx context.Context, userID int64) ([]Product, error)
}

const orderedColumns = `
	p.id, p.user_id, p.category_id, p.provider_id, p.name, p.description,
	p.sale_price, p.cost_price, p.stock_quantity, p.minimum_stock,
	p.unit_of_sale, p.manages_stock, p.active, p.created_at, p.updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanProduct(row pgx.Row, p *Product) error {
	var salePrice, costPrice, stockQty pgtype.Numeric
	err := row.Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.ProviderID, &p.Name, &p.Description,
		&salePrice, &costPrice, &stockQty, &p.MinimumStock,
		&p.UnitOfSale, &p.ManagesStock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.SalePrice = db.DecimalFromNumeric(salePrice)
	p.CostPrice = db.DecimalPtrFromNumeric(costPrice)
	p.StockQuantity = db.DecimalFromNumeric(stockQty)
	return nil
}

func (r *PGRepository) Create(ctx context.Context, p Product) (int64, error) {
	const query = `
		INSERT INTO products (
			user_id, category_id, provider_id, name, description,
			sale_price, cost_price, stock_quantity, minimum_stock,
			unit_of_sale, manages_stock, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		p.UserID, p.CategoryID, p.ProviderID, p.Name, p.Description,
		db.NumericFromDecimal(p.SalePrice), db.NumericFromDecimalPtr(p.CostPrice),
		db.NumericFromDecimal(p.StockQuantity), p.MinimumStock,
		p.UnitOfSale, p.ManagesStock, p.Active,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, p Product) error {
	const query = `
		UPDATE products
		SET category_id = $3, provider_id = $4, name = $5, description = $6,
		    sale_price = $7, cost_price = $8, minimum_stock = $9,
		    unit_of_sale = $10, manages_stock = $11, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		p.UserID, p.ID, p.CategoryID, p.ProviderID, p.Name, p.Description,
		db.NumericFromDecimal(p.SalePrice), db.NumericFromDecimalPtr(p.CostPrice),
		p.MinimumStock, p.UnitOfSale, p.ManagesStock,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, p.ID)
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Product, error) {
	query := `SELECT` + orderedColumns + ` FROM products p WHERE p.user_id = $1 AND p.id = $2`
	var p Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, userID, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) List(ctx context.Context, userID int64, f ListFilters) ([]Product, int64, error) {
	where := []string{"p.user_id = $1"}
	args := []any{userID}

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("p.active = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	countQuery := "SELECT count(*) FROM products p WHERE " + whereClause
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var orderClause string
	switch f.OrderBy {
	case "price_asc":
		orderClause = "p.sale_price ASC, p.name ASC"
	case "price_desc":
		orderClause = "p.sale_price DESC, p.name ASC"
	case "most_sold":
		orderClause = "COALESCE(sold.total, 0) DESC, p.name ASC"
	case "least_sold":
		orderClause = "COALESCE(sold.total, 0) ASC, p.name ASC"
	default:
		orderClause = "p.name ASC"
	}

	// The sold join is only needed for sale-count ordering but is cheap
	// enough to keep unconditionally, the subquery is scoped to one user.
	query := fmt.Sprintf(`
		SELECT`+orderedColumns+`
		FROM products p
		LEFT JOIN (
			SELECT si.product_id, SUM(si.quantity) AS total
			FROM sale_items si
			JOIN sales s ON s.id = si.sale_id
			WHERE s.user_id = $1
			GROUP BY si.product_id
		) sold ON sold.product_id = p.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderClause, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *PGRepository) SetActive(ctx context.Context, userID, id int64, active bool) error {
	const query = `
		UPDATE products
		SET active = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	return nil
}

func (r *PGRepository) DeletePermanently(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	return nil
}

func (r *PGRepository) MostSold(ctx context.Context, userID int64, limit int) ([]SoldProduct, error) {
	query := `
		SELECT` + orderedColumns + `, COALESCE(sold.total, 0) AS total_sold
		FROM products p
		JOIN (
			SELECT si.product_id, SUM(si.quantity) AS total
			FROM sale_items si
			JOIN sales s ON s.id = si.sale_id
			WHERE s.user_id = $1
			GROUP BY si.product_id
		) sold ON sold.product_id = p.id
		WHERE p.user_id = $1 AND p.active
		ORDER BY sold.total DESC, p.name ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SoldProduct
	for rows.Next() {
		var sp SoldProduct
		var salePrice, costPrice, stockQty, totalSold pgtype.Numeric
		err := rows.Scan(
			&sp.ID, &sp.UserID, &sp.CategoryID, &sp.ProviderID, &sp.Name, &sp.Description,
			&salePrice, &costPrice, &stockQty, &sp.MinimumStock,
			&sp.UnitOfSale, &sp.ManagesStock, &sp.Active, &sp.CreatedAt, &sp.UpdatedAt,
			&totalSold,
		)
		if err != nil {
			return nil, err
		}
		sp.SalePrice = db.DecimalFromNumeric(salePrice)
		sp.CostPrice = db.DecimalPtrFromNumeric(costPrice)
		sp.StockQuantity = db.DecimalFromNumeric(stockQty)
		sp.TotalSold = db.DecimalFromNumeric(totalSold)
		result = append(result, sp)
	}
	return result, rows.Err()
}

func (r *PGRepository) LowStock(ctx context.Context, userID int64) ([]Product, error) {
	query := `
		SELECT` + orderedColumns + `
		FROM products p
		WHERE p.user_id = $1
		  AND p.active
		  AND p.manages_stock
		  AND p.minimum_stock IS NOT NULL
		  AND p.stock_quantity <= p.minimum_stock
		ORDER BY p.stock_quantity ASC, p.name ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
