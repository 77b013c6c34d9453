// Package sales implements sale registration and permanent deletion, the
// workflows that keep stock and customer credit consistent.
package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// PaymentStatus tracks settlement of a sale's receivable.
type PaymentStatus string

const (
	// StatusPending marks an on-credit sale awaiting payment.
	StatusPending PaymentStatus = "PENDING"
	// StatusPaid marks an on-credit sale settled through a payment.
	StatusPaid PaymentStatus = "PAID"
	// StatusNotApplicable marks sales paid upfront.
	StatusNotApplicable PaymentStatus = "NOT_APPLICABLE"
)

// Sale is a registered transaction. TotalAmount is the sum of item
// subtotals computed at registration time.
type Sale struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"-"`
	CustomerID    *int64               `json:"customer_id,omitempty"`
	PaymentMethod shared.PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus        `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Notes         *string              `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Items         []SaleItem           `json:"items,omitempty"`
}

// SaleItem is one line of a sale. ProductName and UnitPrice are snapshots
// taken at registration so later catalog edits never rewrite history.
type SaleItem struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"-"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
