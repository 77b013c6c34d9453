// Package reports computes dashboard and financial summary aggregates.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// PeriodTotals are the raw aggregates of one time window.
type PeriodTotals struct {
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	SalesCount    int64           `json:"sales_count"`
}

// MethodTotal is revenue grouped by payment method.
type MethodTotal struct {
	PaymentMethod shared.PaymentMethod `json:"payment_method"`
	Total         decimal.Decimal      `json:"total"`
	Count         int64                `json:"count"`
}

// ProductRevenue is one row of the top-products ranking.
type ProductRevenue struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailyPoint is one day of the revenue/expense trend.
type DailyPoint struct {
	Day      time.Time       `json:"day"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Summary is the full dashboard payload. Change percentages compare the
// requested window against the previous window of equal length; they are
// nil when the previous window had nothing to compare against.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Receivables   decimal.Decimal `json:"receivables"`
	SalesCount    int64           `json:"sales_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`

	RevenueChangePct  *decimal.Decimal `json:"revenue_change_pct,omitempty"`
	ExpensesChangePct *decimal.Decimal `json:"expenses_change_pct,omitempty"`
	ProfitChangePct   *decimal.Decimal `json:"profit_change_pct,omitempty"`

	SalesByMethod []MethodTotal    `json:"sales_by_method"`
	TopProducts   []ProductRevenue `json:"top_products"`
	DailyTrend    []DailyPoint     `json:"daily_trend"`
}
