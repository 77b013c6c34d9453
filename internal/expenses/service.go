package expenses

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/inventory"
	"github.com/flick-business/flick-business/internal/shared"
)

// SummaryCache drops cached report aggregates after a write changes them.
// Implemented by reports.CachedSummaries; nil disables invalidation.
type SummaryCache interface {
	Invalidate(ctx context.Context, userID int64)
}

// Service implements the expense workflows.
type Service struct {
	repo  Repository
	cache SummaryCache
}

// NewService constructs Service.
func NewService(repo Repository, cache SummaryCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) invalidateSummaries(ctx context.Context, userID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func validateRequest(req ExpenseRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown expense type %q", shared.ErrValidation, req.Type)
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, req.PaymentMethod)
	}
	if req.Type == TypeRestocking {
		if len(req.RestockItems) == 0 {
			return fmt.Errorf("%w: restocking expense requires restock items", shared.ErrValidation)
		}
		for _, item := range req.RestockItems {
			if item.Quantity.LessThanOrEqual(decimal.Zero) {
				return fmt.Errorf("%w: restock quantity must be positive", shared.ErrValidation)
			}
			if item.UnitCost.LessThanOrEqual(decimal.Zero) {
				return fmt.Errorf("%w: restock unit cost must be positive", shared.ErrValidation)
			}
		}
		return nil
	}
	if req.Value == nil || req.Value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: expense value must be positive", shared.ErrValidation)
	}
	if len(req.RestockItems) > 0 {
		return fmt.Errorf("%w: only restocking expenses may carry restock items", shared.ErrValidation)
	}
	return nil
}

// applyRequest fills the expense from the request inside tx. For
// RESTOCKING it increments each product's stock, overwrites its cost price
// and derives the value from the items; touched products are persisted in
// one batch. For simple expenses it copies the caller's value.
func applyRequest(ctx context.Context, tx Tx, e *Expense, req ExpenseRequest) error {
	e.Name = req.Name
	e.ExpenseDate = req.ExpenseDate
	e.Type = req.Type
	e.PaymentMethod = req.PaymentMethod
	e.Description = req.Description
	e.Items = nil

	if req.Type != TypeRestocking {
		e.Value = *req.Value
		return nil
	}

	value := decimal.Zero
	touched := make([]*products.Product, 0, len(req.RestockItems))
	for _, item := range req.RestockItems {
		product, err := tx.GetProductForUpdate(ctx, e.UserID, item.ProductID)
		if err != nil {
			return err
		}
		if err := inventory.Increment(product, item.Quantity); err != nil {
			return err
		}
		cost := item.UnitCost
		product.CostPrice = &cost
		touched = append(touched, product)

		value = value.Add(item.Quantity.Mul(item.UnitCost))
		e.Items = append(e.Items, RestockItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}
	e.Value = value
	return tx.SaveProducts(ctx, touched)
}

// reverseRestock subtracts each recorded quantity from its product's
// stock. Cost prices are left at their overwritten values and products
// deleted since the restock are skipped.
func reverseRestock(ctx context.Context, tx Tx, e *Expense) error {
	touched := make([]*products.Product, 0, len(e.Items))
	for _, item := range e.Items {
		product, err := tx.GetProductForUpdate(ctx, e.UserID, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return err
		}
		if err := inventory.Decrement(product, item.Quantity); err != nil {
			return err
		}
		touched = append(touched, product)
	}
	if len(touched) == 0 {
		return nil
	}
	return tx.SaveProducts(ctx, touched)
}

// Create validates and books an expense atomically.
func (s *Service) Create(ctx context.Context, userID int64, req ExpenseRequest) (*Expense, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	expense := &Expense{UserID: userID}
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		if err := applyRequest(ctx, tx, expense, req); err != nil {
			return err
		}
		return tx.InsertExpense(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx, userID)
	return expense, nil
}

// Update replaces an expense using reverse-then-reapply: any restock
// effects of the stored expense are undone first, then the new request is
// applied exactly like a create. Prior cost prices are not restored.
func (s *Service) Update(ctx context.Context, userID, id int64, req ExpenseRequest) (*Expense, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated *Expense
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		existing, err := tx.GetExpense(ctx, userID, id)
		if err != nil {
			return err
		}
		if existing.Type == TypeRestocking {
			if err := reverseRestock(ctx, tx, existing); err != nil {
				return err
			}
			existing.Items = nil
		}
		if err := applyRequest(ctx, tx, existing, req); err != nil {
			return err
		}
		if err := tx.ReplaceExpense(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx, userID)
	return updated, nil
}

// Delete removes an expense, reversing its restock effects so stock stays
// consistent with the remaining history.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		existing, err := tx.GetExpense(ctx, userID, id)
		if err != nil {
			return err
		}
		if existing.Type == TypeRestocking {
			if err := reverseRestock(ctx, tx, existing); err != nil {
				return err
			}
		}
		return tx.DeleteExpense(ctx, userID, id)
	})
	if err != nil {
		return err
	}
	s.invalidateSummaries(ctx, userID)
	return nil
}

// Get resolves one expense with its restock items.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Expense, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a filtered page of expenses.
func (s *Service) List(ctx context.Context, userID int64, f ListFilters) (*ExpensePage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("expenses: list: %w", err)
	}
	return &ExpensePage{Items: items, Page: f.Page, PageSize: f.PageSize, TotalCount: total}, nil
}
