// Package expenses implements expense tracking, including restocking
// expenses that feed purchased quantities back into product stock.
package expenses

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// ExpenseType classifies an expense. RESTOCKING is the distinguished type
// whose value is derived from its restock items.
type ExpenseType string

const (
	TypeRestocking  ExpenseType = "RESTOCKING"
	TypeBusiness    ExpenseType = "BUSINESS"
	TypeMaintenance ExpenseType = "MAINTENANCE"
	TypeSalary      ExpenseType = "SALARY"
	TypeTaxes       ExpenseType = "TAXES"
	TypeOther       ExpenseType = "OTHER"
)

// Valid reports whether the value is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case TypeRestocking, TypeBusiness, TypeMaintenance, TypeSalary, TypeTaxes, TypeOther:
		return true
	}
	return false
}

// Expense is one outgoing payment. For RESTOCKING the value is always
// derived from the items, never taken from the caller.
type Expense struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"-"`
	Name          string               `json:"name"`
	Value         decimal.Decimal      `json:"value"`
	ExpenseDate   time.Time            `json:"expense_date"`
	Type          ExpenseType          `json:"type"`
	PaymentMethod shared.PaymentMethod `json:"payment_method"`
	Description   *string              `json:"description,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Items         []RestockItem        `json:"restock_items,omitempty"`
}

// RestockItem is one purchased line of a restocking expense. UnitCost also
// overwrites the product's stored cost price when the expense is applied.
type RestockItem struct {
	ID        int64           `json:"id"`
	ExpenseID int64           `json:"-"`
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}
