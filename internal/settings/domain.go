// Package settings stores per-user general settings, most importantly the
// stock-control mode consumed by the sale and expense workflows.
package settings

import "time"

// StockControlMode governs whether sales and restocks adjust product stock.
type StockControlMode string

const (
	// StockControlPerItem defers to each product's own manages-stock flag.
	StockControlPerItem StockControlMode = "PER_ITEM"
	// StockControlGlobal tracks stock for every product regardless of flag.
	StockControlGlobal StockControlMode = "GLOBAL"
	// StockControlNone disables stock tracking entirely.
	StockControlNone StockControlMode = "NONE"
)

// Valid reports whether the value is a known mode.
func (m StockControlMode) Valid() bool {
	switch m {
	case StockControlPerItem, StockControlGlobal, StockControlNone:
		return true
	}
	return false
}

// GeneralSettings holds one row per user, created lazily with defaults on
// first access.
type GeneralSettings struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"-"`
	StockControlType StockControlMode `json:"stock_control_type"`
	BusinessName     *string          `json:"business_name,omitempty"`
	BusinessField    *string          `json:"business_field,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
