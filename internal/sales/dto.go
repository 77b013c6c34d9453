package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// SaleItemRequest is one requested line of a sale.
type SaleItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RegisterSaleRequest carries a new sale.
type RegisterSaleRequest struct {
	CustomerID    *int64               `json:"customer_id" validate:"omitempty,gt=0"`
	PaymentMethod shared.PaymentMethod `json:"payment_method" validate:"required"`
	Notes         *string              `json:"notes" validate:"omitempty,max=500"`
	Items         []SaleItemRequest    `json:"items" validate:"required,min=1,dive"`
}

// ListFilters narrows a sale listing.
type ListFilters struct {
	CustomerID    *int64
	ProductID     *int64
	PaymentMethod shared.PaymentMethod
	Status        PaymentStatus
	From          *time.Time
	To            *time.Time
	OrderBy       string
	Page          int
	PageSize      int
}

// SalePage is one page of a sale listing.
type SalePage struct {
	Items      []Sale `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalCount int64  `json:"total_count"`
}
