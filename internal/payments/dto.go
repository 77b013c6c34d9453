package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// RecordPaymentRequest carries one settlement.
type RecordPaymentRequest struct {
	CustomerID    int64                `json:"customer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod shared.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate   *time.Time           `json:"payment_date"`
	SaleIDs       []int64              `json:"sale_ids" validate:"required,min=1,dive,gt=0"`
}

// ListFilters narrows a payment listing.
type ListFilters struct {
	CustomerID *int64
	Page       int
	PageSize   int
}

// PaymentPage is one page of a payment listing.
type PaymentPage struct {
	Items      []Payment `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}
