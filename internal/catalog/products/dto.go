package products

import "github.com/shopspring/decimal"

// CreateProductRequest carries a new catalog item.
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,min=2,max=150"`
	Description   *string          `json:"description" validate:"omitempty,max=500"`
	CategoryID    int64            `json:"category_id" validate:"required,gt=0"`
	ProviderID    *int64           `json:"provider_id" validate:"omitempty,gt=0"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	StockQuantity *decimal.Decimal `json:"stock_quantity"`
	MinimumStock  *int             `json:"minimum_stock" validate:"omitempty,gte=0"`
	UnitOfSale    UnitOfSale       `json:"unit_of_sale" validate:"required"`
	ManagesStock  *bool            `json:"manages_stock"`
}

// UpdateProductRequest carries a full product replacement. Stock quantity
// is absent on purpose, stock moves only through sales and restocking.
type UpdateProductRequest struct {
	Name         string           `json:"name" validate:"required,min=2,max=150"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	CategoryID   int64            `json:"category_id" validate:"required,gt=0"`
	ProviderID   *int64           `json:"provider_id" validate:"omitempty,gt=0"`
	SalePrice    decimal.Decimal  `json:"sale_price"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	MinimumStock *int             `json:"minimum_stock" validate:"omitempty,gte=0"`
	UnitOfSale   UnitOfSale       `json:"unit_of_sale" validate:"required"`
	ManagesStock *bool            `json:"manages_stock"`
}

// ListFilters narrows and orders a product listing.
type ListFilters struct {
	Name       string
	CategoryID *int64
	Active     *bool
	OrderBy    string
	Page       int
	PageSize   int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}
