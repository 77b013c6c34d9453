package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeRepo serves canned totals keyed by period start.
type fakeRepo struct {
	totals      map[time.Time]PeriodTotals
	receivables decimal.Decimal
	calls       int
}

func (f *fakeRepo) PeriodTotals(_ context.Context, _ int64, from, _ time.Time) (PeriodTotals, error) {
	f.calls++
	return f.totals[from], nil
}

func (f *fakeRepo) Receivables(context.Context, int64) (decimal.Decimal, error) {
	return f.receivables, nil
}

func (f *fakeRepo) SalesByMethod(context.Context, int64, time.Time, time.Time) ([]MethodTotal, error) {
	return []MethodTotal{{PaymentMethod: shared.PaymentCash, Total: dec("100"), Count: 2}}, nil
}

func (f *fakeRepo) TopProducts(context.Context, int64, time.Time, time.Time, int) ([]ProductRevenue, error) {
	return nil, nil
}

func (f *fakeRepo) DailyTrend(context.Context, int64, time.Time, time.Time) ([]DailyPoint, error) {
	return nil, nil
}

var _ Repository = (*fakeRepo)(nil)

func TestSummary(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	previousFrom := from.Add(-to.Sub(from))

	t.Run("computes profit, ticket and change percentages", func(t *testing.T) {
		repo := &fakeRepo{
			totals: map[time.Time]PeriodTotals{
				from:         {GrossRevenue: dec("3000"), TotalExpenses: dec("1000"), SalesCount: 8},
				previousFrom: {GrossRevenue: dec("2000"), TotalExpenses: dec("800"), SalesCount: 5},
			},
			receivables: dec("450.50"),
		}
		svc := NewService(repo)

		summary, err := svc.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)

		require.True(t, summary.NetProfit.Equal(dec("2000")))
		require.True(t, summary.Receivables.Equal(dec("450.50")))
		require.True(t, summary.AverageTicket.Equal(dec("375")))
		require.NotNil(t, summary.RevenueChangePct)
		require.True(t, summary.RevenueChangePct.Equal(dec("50")), "2000 -> 3000 is +50%%")
		require.NotNil(t, summary.ExpensesChangePct)
		require.True(t, summary.ExpensesChangePct.Equal(dec("25")))
		require.NotNil(t, summary.ProfitChangePct)
		require.True(t, summary.ProfitChangePct.Equal(dec("66.67")), "1200 -> 2000 rounded to 2 places")
	})

	t.Run("empty previous period yields nil percentages", func(t *testing.T) {
		repo := &fakeRepo{
			totals: map[time.Time]PeriodTotals{
				from: {GrossRevenue: dec("3000"), TotalExpenses: dec("1000"), SalesCount: 8},
			},
		}
		svc := NewService(repo)

		summary, err := svc.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		require.Nil(t, summary.RevenueChangePct)
		require.Nil(t, summary.ExpensesChangePct)
		require.Nil(t, summary.ProfitChangePct)
	})

	t.Run("zero sales leaves average ticket zero", func(t *testing.T) {
		svc := NewService(&fakeRepo{totals: map[time.Time]PeriodTotals{}})
		summary, err := svc.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		require.True(t, summary.AverageTicket.IsZero())
	})

	t.Run("rejects inverted period", func(t *testing.T) {
		svc := NewService(&fakeRepo{})
		_, err := svc.Summary(context.Background(), 1, to, from)
		require.ErrorIs(t, err, shared.ErrValidation)
	})
}
