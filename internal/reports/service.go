package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

const topProductLimit = 5

var hundred = decimal.NewFromInt(100)

// Service assembles dashboard summaries.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// percentChange returns (current-previous)/previous*100 rounded to two
// places, or nil when the previous value is zero.
func percentChange(previous, current decimal.Decimal) *decimal.Decimal {
	if previous.IsZero() {
		return nil
	}
	change := current.Sub(previous).Div(previous).Mul(hundred).Round(2)
	return &change
}

// Summary computes the dashboard for [from, to). Percent changes compare
// against the previous window of equal length ending at from.
func (s *Service) Summary(ctx context.Context, userID int64, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: period end must be after start", shared.ErrValidation)
	}

	current, err := s.repo.PeriodTotals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: period totals: %w", err)
	}
	window := to.Sub(from)
	previous, err := s.repo.PeriodTotals(ctx, userID, from.Add(-window), from)
	if err != nil {
		return nil, fmt.Errorf("reports: previous period totals: %w", err)
	}

	receivables, err := s.repo.Receivables(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reports: receivables: %w", err)
	}
	byMethod, err := s.repo.SalesByMethod(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: sales by method: %w", err)
	}
	topProducts, err := s.repo.TopProducts(ctx, userID, from, to, topProductLimit)
	if err != nil {
		return nil, fmt.Errorf("reports: top products: %w", err)
	}
	trend, err := s.repo.DailyTrend(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: daily trend: %w", err)
	}

	summary := &Summary{
		From:          from,
		To:            to,
		GrossRevenue:  current.GrossRevenue,
		TotalExpenses: current.TotalExpenses,
		NetProfit:     current.GrossRevenue.Sub(current.TotalExpenses),
		Receivables:   receivables,
		SalesCount:    current.SalesCount,
		SalesByMethod: byMethod,
		TopProducts:   topProducts,
		DailyTrend:    trend,
	}
	if current.SalesCount > 0 {
		summary.AverageTicket = current.GrossRevenue.Div(decimal.NewFromInt(current.SalesCount)).Round(2)
	}

	previousProfit := previous.GrossRevenue.Sub(previous.TotalExpenses)
	summary.RevenueChangePct = percentChange(previous.GrossRevenue, current.GrossRevenue)
	summary.ExpensesChangePct = percentChange(previous.TotalExpenses, current.TotalExpenses)
	summary.ProfitChangePct = percentChange(previousProfit, summary.NetProfit)

	return summary, nil
}
