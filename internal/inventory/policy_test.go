package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/settings"
)

func TestIsStockManaged(t *testing.T) {
	cases := []struct {
		name    string
		mode    settings.StockControlMode
		manages bool
		want    bool
	}{
		{"global overrides flag off", settings.StockControlGlobal, false, true},
		{"global keeps flag on", settings.StockControlGlobal, true, true},
		{"none overrides flag on", settings.StockControlNone, true, false},
		{"none keeps flag off", settings.StockControlNone, false, false},
		{"per item follows flag on", settings.StockControlPerItem, true, true},
		{"per item follows flag off", settings.StockControlPerItem, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &products.Product{ManagesStock: tc.manages}
			require.Equal(t, tc.want, IsStockManaged(tc.mode, p))
		})
	}
}
