package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/shared"
)

// Sentinel stock errors. Both carry the policy-violation kind so the HTTP
// layer maps them to 422.
var (
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", shared.ErrPolicyViolation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
)

// Decrement subtracts qty from the product's stock. Draining stock to
// exactly zero is allowed, going below zero is not.
func Decrement(p *products.Product, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	if p.StockQuantity.LessThan(qty) {
		return fmt.Errorf("%w: product %q has %s, requested %s",
			ErrInsufficientStock, p.Name, p.StockQuantity, qty)
	}
	p.StockQuantity = p.StockQuantity.Sub(qty)
	return nil
}

// Increment adds qty to the product's stock. Restocks and sale reversals
// are never blocked, only the quantity sign is checked.
func Increment(p *products.Product, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	p.StockQuantity = p.StockQuantity.Add(qty)
	return nil
}
