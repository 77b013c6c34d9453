package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/sales"
	"github.com/flick-business/flick-business/internal/shared"
)

// Settlement errors, all policy violations over well-formed requests.
var (
	ErrSaleNotSettleable = fmt.Errorf("%w: sale cannot be settled", shared.ErrPolicyViolation)
	ErrAmountMismatch    = fmt.Errorf("%w: amount does not match the selected sales", shared.ErrPolicyViolation)
)

// SummaryCache drops cached report aggregates after a write changes them.
// Implemented by reports.CachedSummaries; nil disables invalidation.
type SummaryCache interface {
	Invalidate(ctx context.Context, userID int64)
}

// Service implements payment settlement.
type Service struct {
	repo  Repository
	cache SummaryCache
	now   func() time.Time
}

// NewService constructs Service.
func NewService(repo Repository, cache SummaryCache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Record settles the selected pending on-credit sales in one transaction.
// Every sale must belong to the paying customer, be ON_CREDIT and still
// PENDING, and the amount must equal the exact sum of their totals.
// Settled sales flip to PAID and the amount is subtracted from the
// customer's debt.
func (s *Service) Record(ctx context.Context, userID int64, req RecordPaymentRequest) (*Payment, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() || req.PaymentMethod == shared.PaymentOnCredit {
		return nil, fmt.Errorf("%w: invalid settlement method %q", shared.ErrValidation, req.PaymentMethod)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	seen := make(map[int64]struct{}, len(req.SaleIDs))
	for _, id := range req.SaleIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate sale id %d", shared.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}

	paymentDate := s.now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment := &Payment{
		UserID:        userID,
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   paymentDate,
		SaleIDs:       req.SaleIDs,
	}

	err := s.repo.WithTx(ctx, func(tx Tx) error {
		customer, err := tx.GetCustomerForUpdate(ctx, userID, req.CustomerID)
		if err != nil {
			return err
		}

		due, err := tx.GetSalesForUpdate(ctx, userID, req.SaleIDs)
		if err != nil {
			return err
		}
		if len(due) != len(req.SaleIDs) {
			return fmt.Errorf("%w: one or more sales", shared.ErrNotFound)
		}

		expected := decimal.Zero
		for _, sale := range due {
			if sale.PaymentMethod != shared.PaymentOnCredit {
				return fmt.Errorf("%w: sale %d was not made on credit", ErrSaleNotSettleable, sale.ID)
			}
			if sale.PaymentStatus != sales.StatusPending {
				return fmt.Errorf("%w: sale %d is %s", ErrSaleNotSettleable, sale.ID, sale.PaymentStatus)
			}
			if sale.CustomerID == nil || *sale.CustomerID != req.CustomerID {
				return fmt.Errorf("%w: sale %d belongs to another customer", ErrSaleNotSettleable, sale.ID)
			}
			expected = expected.Add(sale.TotalAmount)
		}
		if !req.Amount.Equal(expected) {
			return fmt.Errorf("%w: got %s, sales total %s", ErrAmountMismatch, req.Amount, expected)
		}

		if err := tx.MarkSalesPaid(ctx, userID, req.SaleIDs); err != nil {
			return err
		}
		customer.SettleDebt(req.Amount)
		if err := tx.SaveCustomerCredit(ctx, customer); err != nil {
			return err
		}
		return tx.InsertPayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return payment, nil
}

// Get resolves one payment.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Payment, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a filtered page of payments.
func (s *Service) List(ctx context.Context, userID int64, f ListFilters) (*PaymentPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	return &PaymentPage{Items: items, Page: f.Page, PageSize: f.PageSize, TotalCount: total}, nil
}
