package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan is the task type for the nightly low stock report.
	TaskLowStockScan = "catalog:low_stock_scan"
	// TaskSummaryWarmup is the task type for pre-warming dashboard summaries.
	TaskSummaryWarmup = "reports:summary_warmup"
)

// LowStockScanPayload configures a low stock scan run.
type LowStockScanPayload struct {
	// UserID limits the scan to a single account. Zero scans every account.
	UserID int64 `json:"user_id,omitempty"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// SummaryWarmupPayload configures a dashboard warmup run.
type SummaryWarmupPayload struct {
	// UserID limits the warmup to a single account. Zero warms every
	// account with recorded sales.
	UserID int64 `json:"user_id,omitempty"`
}

// NewSummaryWarmupTask constructs an Asynq task.
func NewSummaryWarmupTask(payload SummaryWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSummaryWarmup, data), nil
}
