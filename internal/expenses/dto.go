package expenses

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// RestockItemRequest is one requested restock line.
type RestockItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ExpenseRequest carries a new expense or a full replacement on update.
// Value is ignored for RESTOCKING and required otherwise.
type ExpenseRequest struct {
	Name          string               `json:"name" validate:"required,min=2,max=150"`
	Value         *decimal.Decimal     `json:"value"`
	ExpenseDate   time.Time            `json:"expense_date" validate:"required"`
	Type          ExpenseType          `json:"type" validate:"required"`
	PaymentMethod shared.PaymentMethod `json:"payment_method" validate:"required"`
	Description   *string              `json:"description" validate:"omitempty,max=500"`
	RestockItems  []RestockItemRequest `json:"restock_items" validate:"omitempty,dive"`
}

// ListFilters narrows an expense listing.
type ListFilters struct {
	Name     string
	Type     ExpenseType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ExpensePage is one page of an expense listing.
type ExpensePage struct {
	Items      []Expense `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}
