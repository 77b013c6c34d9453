package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flick-business/flick-business/internal/reports"
)

// SummaryWarmupJob pre-populates the dashboard summary cache so the
// first dashboard load of the day does not pay the aggregation cost.
type SummaryWarmupJob struct {
	Summaries *reports.CachedSummaries
	Pool      *pgxpool.Pool
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(summaries *reports.CachedSummaries, pool *pgxpool.Pool, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Summaries: summaries,
		Pool:      pool,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Summaries == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	now := j.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	logger.Info("starting summary warmup", slog.Time("period_start", from))

	userIDs, err := j.resolveUsers(ctx, payload.UserID)
	if err != nil {
		logger.Error("load accounts for warmup", slog.Any("error", err))
		return err
	}

	warmed := 0
	for _, userID := range userIDs {
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		_, err := j.Summaries.Summary(warmCtx, userID, from, to)
		cancel()
		if err != nil {
			logger.Error("warm account", slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed summary warmup", slog.Int("accounts", warmed), slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *SummaryWarmupJob) resolveUsers(ctx context.Context, userID int64) ([]int64, error) {
	if userID > 0 {
		return []int64{userID}, nil
	}
	if j.Pool == nil {
		return nil, errors.New("summary warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT DISTINCT user_id FROM sales ORDER BY user_id`)
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

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSummaryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskSummaryWarmup))
}

func (j *SummaryWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
