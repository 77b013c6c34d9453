package products

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

const suggestionLimit = 3

// Service wraps catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validatePrices(salePrice decimal.Decimal, costPrice *decimal.Decimal) error {
	if salePrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: sale price must be positive", shared.ErrValidation)
	}
	if costPrice != nil && costPrice.IsNegative() {
		return fmt.Errorf("%w: cost price must not be negative", shared.ErrValidation)
	}
	return nil
}

// Create validates and persists a new product. Stock management defaults
// to on and new products start active.
func (s *Service) Create(ctx context.Context, userID int64, req CreateProductRequest) (*Product, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if !req.UnitOfSale.Valid() {
		return nil, fmt.Errorf("%w: unknown unit of sale %q", shared.ErrValidation, req.UnitOfSale)
	}
	if err := validatePrices(req.SalePrice, req.CostPrice); err != nil {
		return nil, err
	}

	stock := decimal.Zero
	if req.StockQuantity != nil {
		if req.StockQuantity.IsNegative() {
			return nil, fmt.Errorf("%w: stock quantity must not be negative", shared.ErrValidation)
		}
		stock = *req.StockQuantity
	}
	managesStock := true
	if req.ManagesStock != nil {
		managesStock = *req.ManagesStock
	}

	product := Product{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		ProviderID:    req.ProviderID,
		Name:          req.Name,
		Description:   req.Description,
		SalePrice:     req.SalePrice,
		CostPrice:     req.CostPrice,
		StockQuantity: stock,
		MinimumStock:  req.MinimumStock,
		UnitOfSale:    req.UnitOfSale,
		ManagesStock:  managesStock,
		Active:        true,
	}
	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}

// Update replaces the editable attributes of a product. Stock quantity is
// never touched here, it moves only through sales and restocking.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateProductRequest) (*Product, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if !req.UnitOfSale.Valid() {
		return nil, fmt.Errorf("%w: unknown unit of sale %q", shared.ErrValidation, req.UnitOfSale)
	}
	if err := validatePrices(req.SalePrice, req.CostPrice); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	current.CategoryID = req.CategoryID
	current.ProviderID = req.ProviderID
	current.Name = req.Name
	current.Description = req.Description
	current.SalePrice = req.SalePrice
	current.CostPrice = req.CostPrice
	current.MinimumStock = req.MinimumStock
	current.UnitOfSale = req.UnitOfSale
	if req.ManagesStock != nil {
		current.ManagesStock = *req.ManagesStock
	}

	if err := s.repo.Update(ctx, *current); err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}

// Get resolves one product within the user's ownership scope.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Product, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a filtered, ordered page of products.
func (s *Service) List(ctx context.Context, userID int64, f ListFilters) (*ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	return &ProductPage{Items: items, Page: f.Page, PageSize: f.PageSize, TotalCount: total}, nil
}

// Copy duplicates an existing product under a new name. The copy starts
// with zero stock so counted inventory is never double-booked.
func (s *Service) Copy(ctx context.Context, userID, id int64) (*Product, error) {
	src, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dup := *src
	dup.ID = 0
	dup.Name = src.Name + " (copy)"
	dup.StockQuantity = decimal.Zero
	dup.Active = true

	newID, err := s.repo.Create(ctx, dup)
	if err != nil {
		return nil, fmt.Errorf("products: copy: %w", err)
	}
	return s.repo.Get(ctx, userID, newID)
}

// ToggleActive flips the product's active flag.
func (s *Service) ToggleActive(ctx context.Context, userID, id int64) (*Product, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, userID, id, !current.Active); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, id)
}

// Deactivate retires a product from sale without losing its history.
func (s *Service) Deactivate(ctx context.Context, userID, id int64) error {
	return s.repo.SetActive(ctx, userID, id, false)
}

// DeletePermanently removes the product row. Fails with a conflict when
// sales still reference the product.
func (s *Service) DeletePermanently(ctx context.Context, userID, id int64) error {
	return s.repo.DeletePermanently(ctx, userID, id)
}

// Suggestions returns the user's best selling active products.
func (s *Service) Suggestions(ctx context.Context, userID int64) ([]SoldProduct, error) {
	return s.repo.MostSold(ctx, userID, suggestionLimit)
}

// LowStock returns managed products at or below their minimum stock.
func (s *Service) LowStock(ctx context.Context, userID int64) ([]Product, error) {
	return s.repo.LowStock(ctx, userID)
}
