package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/platform/db"
	"github.com/flick-business/flick-business/internal/sales"
	"github.com/flick-business/flick-business/internal/shared"
)

// Repository defines the aggregate queries behind the dashboard.
type Repository interface {
	PeriodTotals(ctx context.Context, userID int64, from, to time.Time) (PeriodTotals, error)
	Receivables(ctx context.Context, userID int64) (decimal.Decimal, error)
	SalesByMethod(ctx context.Context, userID int64, from, to time.Time) ([]MethodTotal, error)
	TopProducts(ctx context.Context, userID int64, from, to time.Time, limit int) ([]ProductRevenue, error)
	DailyTrend(ctx context.Context, userID int64, from, to time.Time) ([]DailyPoint, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) PeriodTotals(ctx context.Context, userID int64, from, to time.Time) (PeriodTotals, error) {
	const query = `
		SELECT
			COALESCE((SELECT SUM(total_amount) FROM sales
			          WHERE user_id = $1 AND created_at >= $2 AND created_at < $3), 0),
			COALESCE((SELECT count(*) FROM sales
			          WHERE user_id = $1 AND created_at >= $2 AND created_at < $3), 0),
			COALESCE((SELECT SUM(value) FROM expenses
			          WHERE user_id = $1 AND expense_date >= $2 AND expense_date < $3), 0)
	`
	var revenue, expenses pgtype.Numeric
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&revenue, &count, &expenses); err != nil {
		return PeriodTotals{}, err
	}
	return PeriodTotals{
		GrossRevenue:  db.DecimalFromNumeric(revenue),
		TotalExpenses: db.DecimalFromNumeric(expenses),
		SalesCount:    count,
	}, nil
}

func (r *PGRepository) Receivables(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE user_id = $1 AND payment_status = $2
	`
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, userID, sales.StatusPending).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return db.DecimalFromNumeric(total), nil
}

func (r *PGRepository) SalesByMethod(ctx context.Context, userID int64, from, to time.Time) ([]MethodTotal, error) {
	const query = `
		SELECT payment_method, COALESCE(SUM(total_amount), 0), count(*)
		FROM sales
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY payment_method
		ORDER BY 2 DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MethodTotal
	for rows.Next() {
		var mt MethodTotal
		var method shared.PaymentMethod
		var total pgtype.Numeric
		if err := rows.Scan(&method, &total, &mt.Count); err != nil {
			return nil, err
		}
		mt.PaymentMethod = method
		mt.Total = db.DecimalFromNumeric(total)
		result = append(result, mt)
	}
	return result, rows.Err()
}

func (r *PGRepository) TopProducts(ctx context.Context, userID int64, from, to time.Time, limit int) ([]ProductRevenue, error) {
	const query = `
		SELECT si.product_id, si.product_name, SUM(si.quantity), SUM(si.subtotal)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.user_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		GROUP BY si.product_id, si.product_name
		ORDER BY SUM(si.subtotal) DESC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductRevenue
	for rows.Next() {
		var pr ProductRevenue
		var qty, revenue pgtype.Numeric
		if err := rows.Scan(&pr.ProductID, &pr.ProductName, &qty, &revenue); err != nil {
			return nil, err
		}
		pr.Quantity = db.DecimalFromNumeric(qty)
		pr.Revenue = db.DecimalFromNumeric(revenue)
		result = append(result, pr)
	}
	return result, rows.Err()
}

func (r *PGRepository) DailyTrend(ctx context.Context, userID int64, from, to time.Time) ([]DailyPoint, error) {
	const query = `
		SELECT day,
		       COALESCE((SELECT SUM(total_amount) FROM sales
		                 WHERE user_id = $1 AND created_at >= day AND created_at < day + interval '1 day'), 0),
		       COALESCE((SELECT SUM(value) FROM expenses
		                 WHERE user_id = $1 AND expense_date >= day AND expense_date < day + interval '1 day'), 0)
		FROM generate_series($2::timestamptz, $3::timestamptz - interval '1 day', interval '1 day') AS day
		ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyPoint
	for rows.Next() {
		var dp DailyPoint
		var revenue, expenses pgtype.Numeric
		if err := rows.Scan(&dp.Day, &revenue, &expenses); err != nil {
			return nil, err
		}
		dp.Revenue = db.DecimalFromNumeric(revenue)
		dp.Expenses = db.DecimalFromNumeric(expenses)
		result = append(result, dp)
	}
	return result, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
