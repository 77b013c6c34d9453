package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/catalog/products"
)

// LowStockScanJob reports products at or below their minimum stock so
// owners can restock before running out.
type LowStockScanJob struct {
	Products *products.Service
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(productsSvc *products.Service, pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Products: productsSvc, Pool: pool, Logger: logger}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Products == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	started := time.Now()
	logger.Info("starting low stock scan")

	userIDs, err := j.resolveUsers(ctx, payload.UserID)
	if err != nil {
		logger.Error("load accounts for scan", slog.Any("error", err))
		return err
	}

	flagged := 0
	for _, userID := range userIDs {
		low, err := j.Products.LowStock(ctx, userID)
		if err != nil {
			logger.Error("scan account", slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}
		if len(low) == 0 {
			continue
		}
		flagged++
		for _, p := range low {
			logger.Warn("product below minimum stock",
				slog.Int64("user_id", userID),
				slog.Int64("product_id", p.ID),
				slog.String("product", p.Name),
				slog.String("stock", p.StockQuantity.String()),
				slog.Int("minimum", derefInt(p.MinimumStock)),
			)
		}
	}

	logger.Info("completed low stock scan",
		slog.Int("accounts", len(userIDs)),
		slog.Int("accounts_flagged", flagged),
		slog.Duration("duration", time.Since(started)),
	)
	return nil
}

func (j *LowStockScanJob) resolveUsers(ctx context.Context, userID int64) ([]int64, error) {
	if userID > 0 {
		return []int64{userID}, nil
	}
	if j.Pool == nil {
		return nil, errors.New("low stock scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
