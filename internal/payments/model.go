// Package payments settles outstanding on-credit sales against customer
// debt balances.
package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// Payment is one settlement received from a customer. It covers one or
// more pending on-credit sales in full.
type Payment struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"-"`
	CustomerID    int64                `json:"customer_id"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod shared.PaymentMethod `json:"payment_method"`
	PaymentDate   time.Time            `json:"payment_date"`
	CreatedAt     time.Time            `json:"created_at"`
	SaleIDs       []int64              `json:"sale_ids"`
}
