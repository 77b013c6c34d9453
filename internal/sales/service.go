package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/inventory"
	"github.com/flick-business/flick-business/internal/settings"
	"github.com/flick-business/flick-business/internal/shared"
)

// StockModeSource resolves the user's stock-control mode. Implemented by
// the settings service.
type StockModeSource interface {
	StockControlMode(ctx context.Context, userID int64) (settings.StockControlMode, error)
}

// SummaryCache drops cached report aggregates after a write changes them.
// Implemented by reports.CachedSummaries; nil disables invalidation.
type SummaryCache interface {
	Invalidate(ctx context.Context, userID int64)
}

// Service implements the sale workflows.
type Service struct {
	repo  Repository
	modes StockModeSource
	cache SummaryCache
	now   func() time.Time
}

// NewService constructs Service.
func NewService(repo Repository, modes StockModeSource, cache SummaryCache) *Service {
	return &Service{repo: repo, modes: modes, cache: cache, now: time.Now}
}

func (s *Service) invalidateSummaries(ctx context.Context, userID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

// Register validates and books a sale atomically. Prices are snapshotted
// from the catalog, stock is decremented per the stock-control mode and
// on-credit sales book debt against the customer. Any failure rolls the
// whole transaction back.
func (s *Service) Register(ctx context.Context, userID int64, req RegisterSaleRequest) (*Sale, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, req.PaymentMethod)
	}
	onCredit := req.PaymentMethod == shared.PaymentOnCredit
	if onCredit && req.CustomerID == nil {
		return nil, fmt.Errorf("%w: on-credit sale requires a customer", shared.ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
	}

	mode, err := s.modes.StockControlMode(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sales: resolve stock mode: %w", err)
	}

	sale := &Sale{
		UserID:        userID,
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: StatusNotApplicable,
		Notes:         req.Notes,
	}
	if onCredit {
		sale.PaymentStatus = StatusPending
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		// Resolve the customer first so a bad id fails before any stock
		// moves. The row lock also serializes concurrent credit sales.
		var customer *customers.Customer
		if req.CustomerID != nil {
			customer, err = tx.GetCustomerForUpdate(ctx, userID, *req.CustomerID)
			if err != nil {
				return err
			}
		}

		// Items are processed in request order, fail fast on the first
		// bad line.
		total := decimal.Zero
		for _, item := range req.Items {
			product, err := tx.GetProductForUpdate(ctx, userID, item.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: product %q is inactive", shared.ErrPolicyViolation, product.Name)
			}

			subtotal := product.SalePrice.Mul(item.Quantity)
			sale.Items = append(sale.Items, SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.SalePrice,
				Subtotal:    subtotal,
			})
			total = total.Add(subtotal)

			if inventory.IsStockManaged(mode, product) {
				if err := inventory.Decrement(product, item.Quantity); err != nil {
					return err
				}
				if err := tx.SaveProductStock(ctx, product); err != nil {
					return err
				}
			}
		}
		sale.TotalAmount = total

		// Credit is applied once against the full total, never against a
		// running partial sum.
		if onCredit {
			if err := customer.ApplyCreditSale(total, s.now()); err != nil {
				return err
			}
			if err := tx.SaveCustomerCredit(ctx, customer); err != nil {
				return err
			}
		}

		return tx.InsertSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx, userID)
	return sale, nil
}

// Get resolves one sale with its items.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Sale, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a filtered page of sales.
func (s *Service) List(ctx context.Context, userID int64, f ListFilters) (*SalePage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("sales: list: %w", err)
	}
	return &SalePage{Items: items, Page: f.Page, PageSize: f.PageSize, TotalCount: total}, nil
}

// DeletePermanently removes a sale and compensates its side effects.
// Stock restoration follows the product's current manage-stock state, not
// the state at registration time. Products deleted since the sale are
// skipped. On-credit totals are subtracted from the customer's balance
// even when the sale was already settled.
func (s *Service) DeletePermanently(ctx context.Context, userID, id int64) error {
	mode, err := s.modes.StockControlMode(ctx, userID)
	if err != nil {
		return fmt.Errorf("sales: resolve stock mode: %w", err)
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		sale, err := tx.GetSale(ctx, userID, id)
		if err != nil {
			return err
		}

		for _, item := range sale.Items {
			product, err := tx.GetProductForUpdate(ctx, userID, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					continue
				}
				return err
			}
			if !inventory.IsStockManaged(mode, product) {
				continue
			}
			if err := inventory.Increment(product, item.Quantity); err != nil {
				return err
			}
			if err := tx.SaveProductStock(ctx, product); err != nil {
				return err
			}
		}

		if sale.PaymentMethod == shared.PaymentOnCredit && sale.CustomerID != nil {
			customer, err := tx.GetCustomerForUpdate(ctx, userID, *sale.CustomerID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
			} else {
				customer.ReverseCreditSale(sale.TotalAmount)
				if err := tx.SaveCustomerCredit(ctx, customer); err != nil {
					return err
				}
			}
		}

		return tx.DeleteSale(ctx, userID, id)
	})
	if err != nil {
		return err
	}
	s.invalidateSummaries(ctx, userID)
	return nil
}
