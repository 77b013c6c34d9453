// Package inventory holds the stock policy and the stock mutation rules
// shared by the sale and expense workflows.
package inventory

import (
	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/settings"
)

// IsStockManaged decides whether stock mutations apply to a product under
// the user's stock-control mode. GLOBAL tracks everything, NONE tracks
// nothing, PER_ITEM defers to the product's own flag.
func IsStockManaged(mode settings.StockControlMode, p *products.Product) bool {
	switch mode {
	case settings.StockControlGlobal:
		return true
	case settings.StockControlNone:
		return false
	default:
		return p.ManagesStock
	}
}
