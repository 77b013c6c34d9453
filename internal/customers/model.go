// Package customers manages the customer base and its store-credit ledger.
package customers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a buyer tracked per user. CreditBalance is the outstanding
// debt accumulated through on-credit sales.
type Customer struct {
	ID                   int64            `json:"id"`
	UserID               int64            `json:"-"`
	Name                 string           `json:"name"`
	Email                *string          `json:"email,omitempty"`
	Phone                *string          `json:"phone,omitempty"`
	TaxID                *string          `json:"tax_id,omitempty"`
	CreditEnabled        bool             `json:"credit_enabled"`
	CreditLimit          *decimal.Decimal `json:"credit_limit,omitempty"`
	CreditBalance        decimal.Decimal  `json:"credit_balance"`
	LastCreditPurchaseAt *time.Time       `json:"last_credit_purchase_at,omitempty"`
	Active               bool             `json:"active"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
