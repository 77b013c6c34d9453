// Package products manages the product catalog and its stock attributes.
package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitOfSale is the unit a product is sold in.
type UnitOfSale string

const (
	UnitPiece    UnitOfSale = "UNIT"
	UnitKilogram UnitOfSale = "KILOGRAM"
	UnitLiter    UnitOfSale = "LITER"
	UnitMeter    UnitOfSale = "METER"
	UnitBox      UnitOfSale = "BOX"
)

// Valid reports whether u is a known unit.
func (u UnitOfSale) Valid() bool {
	switch u {
	case UnitPiece, UnitKilogram, UnitLiter, UnitMeter, UnitBox:
		return true
	}
	return false
}

// Product is a sellable catalog item. StockQuantity and prices are
// decimals so fractional units (kilograms, liters) round-trip exactly.
type Product struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"-"`
	CategoryID    int64            `json:"category_id"`
	ProviderID    *int64           `json:"provider_id,omitempty"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity decimal.Decimal  `json:"stock_quantity"`
	MinimumStock  *int             `json:"minimum_stock,omitempty"`
	UnitOfSale    UnitOfSale       `json:"unit_of_sale"`
	ManagesStock  bool             `json:"manages_stock"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SoldProduct pairs a product with its accumulated sold quantity.
type SoldProduct struct {
	Product
	TotalSold decimal.Decimal `json:"total_sold"`
}
