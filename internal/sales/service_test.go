package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/inventory"
	"github.com/flick-business/flick-business/internal/settings"
	"github.com/flick-business/flick-business/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fixedMode settings.StockControlMode

func (m fixedMode) StockControlMode(context.Context, int64) (settings.StockControlMode, error) {
	return settings.StockControlMode(m), nil
}

// fakeStore is an in-memory Repository whose WithTx restores a deep copy
// of all state when fn fails, mirroring a database rollback.
type fakeStore struct {
	products   map[int64]*products.Product
	customers  map[int64]*customers.Customer
	sales      map[int64]*Sale
	nextSaleID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   map[int64]*products.Product{},
		customers:  map[int64]*customers.Customer{},
		sales:      map[int64]*Sale{},
		nextSaleID: 1,
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	cp.nextSaleID = f.nextSaleID
	for id, p := range f.products {
		v := *p
		cp.products[id] = &v
	}
	for id, c := range f.customers {
		v := *c
		cp.customers[id] = &v
	}
	for id, s := range f.sales {
		v := *s
		v.Items = append([]SaleItem(nil), s.Items...)
		cp.sales[id] = &v
	}
	return cp
}

func (f *fakeStore) WithTx(_ context.Context, fn func(Tx) error) error {
	saved := f.snapshot()
	if err := fn(&fakeTx{store: f}); err != nil {
		*f = *saved
		return err
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, userID, id int64) (*Sale, error) {
	s, ok := f.sales[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("%w: sale %d", shared.ErrNotFound, id)
	}
	out := *s
	return &out, nil
}

func (f *fakeStore) List(_ context.Context, userID int64, _ ListFilters) ([]Sale, int64, error) {
	var result []Sale
	for _, s := range f.sales {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	return result, int64(len(result)), nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetProductForUpdate(_ context.Context, userID, productID int64) (*products.Product, error) {
	p, ok := t.store.products[productID]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
	}
	out := *p
	return &out, nil
}

func (t *fakeTx) SaveProductStock(_ context.Context, p *products.Product) error {
	stored := t.store.products[p.ID]
	stored.StockQuantity = p.StockQuantity
	return nil
}

func (t *fakeTx) GetCustomerForUpdate(_ context.Context, userID, customerID int64) (*customers.Customer, error) {
	c, ok := t.store.customers[customerID]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, customerID)
	}
	out := *c
	return &out, nil
}

func (t *fakeTx) SaveCustomerCredit(_ context.Context, c *customers.Customer) error {
	stored := t.store.customers[c.ID]
	stored.CreditBalance = c.CreditBalance
	stored.LastCreditPurchaseAt = c.LastCreditPurchaseAt
	return nil
}

func (t *fakeTx) InsertSale(_ context.Context, s *Sale) error {
	s.ID = t.store.nextSaleID
	t.store.nextSaleID++
	s.CreatedAt = time.Now()
	for i := range s.Items {
		s.Items[i].SaleID = s.ID
		s.Items[i].ID = int64(i + 1)
	}
	stored := *s
	stored.Items = append([]SaleItem(nil), s.Items...)
	t.store.sales[s.ID] = &stored
	return nil
}

func (t *fakeTx) GetSale(_ context.Context, userID, id int64) (*Sale, error) {
	return t.store.Get(context.Background(), userID, id)
}

func (t *fakeTx) DeleteSale(_ context.Context, userID, id int64) error {
	s, ok := t.store.sales[id]
	if !ok || s.UserID != userID {
		return fmt.Errorf("%w: sale %d", shared.ErrNotFound, id)
	}
	delete(t.store.sales, id)
	return nil
}

var _ Repository = (*fakeStore)(nil)
var _ Tx = (*fakeTx)(nil)

func seedProduct(store *fakeStore, id int64, name, price, stock string, manages bool) {
	store.products[id] = &products.Product{
		ID:            id,
		UserID:        1,
		Name:          name,
		SalePrice:     dec(price),
		StockQuantity: dec(stock),
		ManagesStock:  manages,
		Active:        true,
	}
}

func seedCustomer(store *fakeStore, id int64, name string, enabled bool, limit *decimal.Decimal, balance string) {
	store.customers[id] = &customers.Customer{
		ID:            id,
		UserID:        1,
		Name:          name,
		CreditEnabled: enabled,
		CreditLimit:   limit,
		CreditBalance: dec(balance),
		Active:        true,
	}
}

func TestRegisterCashSale(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
	seedProduct(store, 11, "beans 1kg", "9.10", "4", true)
	svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

	sale, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
		PaymentMethod: shared.PaymentCash,
		Items: []SaleItemRequest{
			{ProductID: 10, Quantity: dec("2")},
			{ProductID: 11, Quantity: dec("3")},
		},
	})
	require.NoError(t, err)

	require.True(t, sale.TotalAmount.Equal(dec("79.10")), "2*25.90 + 3*9.10")
	require.Equal(t, StatusNotApplicable, sale.PaymentStatus)
	require.Len(t, sale.Items, 2)
	require.True(t, store.products[10].StockQuantity.Equal(dec("6")))
	require.True(t, store.products[11].StockQuantity.Equal(dec("1")))
}

func TestRegisterSnapshotsPrice(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
	svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

	sale, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
		PaymentMethod: shared.PaymentPix,
		Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
	})
	require.NoError(t, err)

	store.products[10].SalePrice = dec("99.99")
	store.products[10].Name = "renamed"

	stored, err := svc.Get(context.Background(), 1, sale.ID)
	require.NoError(t, err)
	require.True(t, stored.Items[0].UnitPrice.Equal(dec("25.90")))
	require.Equal(t, "rice 5kg", stored.Items[0].ProductName)
}

func TestRegisterRollsBackOnInsufficientStock(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
	seedProduct(store, 11, "beans 1kg", "9.10", "2", true)
	svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

	_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
		PaymentMethod: shared.PaymentCash,
		Items: []SaleItemRequest{
			{ProductID: 10, Quantity: dec("1")},
			{ProductID: 11, Quantity: dec("5")},
		},
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	require.True(t, store.products[10].StockQuantity.Equal(dec("8")), "first decrement must be rolled back")
	require.True(t, store.products[11].StockQuantity.Equal(dec("2")))
	require.Empty(t, store.sales)
}

func TestRegisterAllowsDrainingToZero(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 10, "rice 5kg", "25.90", "3", true)
	svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

	_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
		PaymentMethod: shared.PaymentCash,
		Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("3")}},
	})
	require.NoError(t, err)
	require.True(t, store.products[10].StockQuantity.IsZero())
}

func TestRegisterStockModes(t *testing.T) {
	t.Run("none mode ignores stock entirely", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "1", true)
		svc := NewService(store, fixedMode(settings.StockControlNone), nil)

		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("50")}},
		})
		require.NoError(t, err, "selling past stock is fine when tracking is off")
		require.True(t, store.products[10].StockQuantity.Equal(dec("1")))
	})

	t.Run("global mode overrides the product flag", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "5", false)
		svc := NewService(store, fixedMode(settings.StockControlGlobal), nil)

		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("2")}},
		})
		require.NoError(t, err)
		require.True(t, store.products[10].StockQuantity.Equal(dec("3")))
	})

	t.Run("per item mode skips unmanaged products", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "service fee", "100", "0", false)
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.NoError(t, err)
		require.True(t, store.products[10].StockQuantity.IsZero())
	})
}

func TestRegisterOnCredit(t *testing.T) {
	t.Run("requires a customer", func(t *testing.T) {
		svc := NewService(newFakeStore(), fixedMode(settings.StockControlPerItem), nil)
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentOnCredit,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("books debt and marks pending", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		seedCustomer(store, 7, "Ana", true, decPtr("500"), "100")
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		customerID := int64(7)
		sale, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			CustomerID:    &customerID,
			PaymentMethod: shared.PaymentOnCredit,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("2")}},
		})
		require.NoError(t, err)
		require.Equal(t, StatusPending, sale.PaymentStatus)
		require.True(t, store.customers[7].CreditBalance.Equal(dec("151.80")))
		require.NotNil(t, store.customers[7].LastCreditPurchaseAt)
	})

	t.Run("credit failure rolls back stock", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		seedCustomer(store, 7, "Ana", true, decPtr("120"), "100")
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		customerID := int64(7)
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			CustomerID:    &customerID,
			PaymentMethod: shared.PaymentOnCredit,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, customers.ErrCreditLimitExceeded)
		require.True(t, store.products[10].StockQuantity.Equal(dec("8")), "stock decrement must be rolled back")
		require.True(t, store.customers[7].CreditBalance.Equal(dec("100")))
		require.Empty(t, store.sales)
	})

	t.Run("credit disabled rejects the sale", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		seedCustomer(store, 7, "Bruno", false, nil, "0")
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		customerID := int64(7)
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			CustomerID:    &customerID,
			PaymentMethod: shared.PaymentOnCredit,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, customers.ErrCreditDisabled)
	})
}

func TestDeletePermanently(t *testing.T) {
	register := func(t *testing.T, store *fakeStore, svc *Service, customerID *int64, method shared.PaymentMethod) *Sale {
		t.Helper()
		sale, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			CustomerID:    customerID,
			PaymentMethod: method,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("2")}},
		})
		require.NoError(t, err)
		return sale
	}

	t.Run("restores stock and reverses credit", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		seedCustomer(store, 7, "Ana", true, nil, "0")
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		customerID := int64(7)
		sale := register(t, store, svc, &customerID, shared.PaymentOnCredit)
		require.True(t, store.products[10].StockQuantity.Equal(dec("6")))

		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.True(t, store.products[10].StockQuantity.Equal(dec("8")))
		require.True(t, store.customers[7].CreditBalance.IsZero())
		require.Empty(t, store.sales)
	})

	t.Run("stock restore follows the current flag, not the one at sale time", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		sale := register(t, store, svc, nil, shared.PaymentCash)
		require.True(t, store.products[10].StockQuantity.Equal(dec("6")))

		store.products[10].ManagesStock = false

		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.True(t, store.products[10].StockQuantity.Equal(dec("6")), "unmanaged products are not restored")
	})

	t.Run("reversal after settlement may leave negative balance", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		seedCustomer(store, 7, "Ana", true, nil, "0")
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		customerID := int64(7)
		sale := register(t, store, svc, &customerID, shared.PaymentOnCredit)

		// Customer settles the debt, then the sale itself is deleted.
		store.customers[7].CreditBalance = decimal.Zero
		store.sales[sale.ID].PaymentStatus = StatusPaid

		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.True(t, store.customers[7].CreditBalance.Equal(dec("-51.80")))
	})

	t.Run("products deleted since the sale are skipped", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		sale := register(t, store, svc, nil, shared.PaymentCash)
		delete(store.products, 10)

		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.Empty(t, store.sales)
	})

	t.Run("unknown sale is not found", func(t *testing.T) {
		svc := NewService(newFakeStore(), fixedMode(settings.StockControlPerItem), nil)
		err := svc.DeletePermanently(context.Background(), 1, 404)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleting the same sale twice fails and restores stock once", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

		sale := register(t, store, svc, nil, shared.PaymentCash)
		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.True(t, store.products[10].StockQuantity.Equal(dec("8")))

		err := svc.DeletePermanently(context.Background(), 1, sale.ID)
		require.ErrorIs(t, err, shared.ErrNotFound)
		require.True(t, store.products[10].StockQuantity.Equal(dec("8")))
	})
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
	svc := NewService(store, fixedMode(settings.StockControlPerItem), nil)

	t.Run("empty items", func(t *testing.T) {
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: "BARTER",
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("0")}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown customer fails even off credit", func(t *testing.T) {
		customerID := int64(999)
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			CustomerID:    &customerID,
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inactive product", func(t *testing.T) {
		store.products[10].Active = false
		defer func() { store.products[10].Active = true }()
		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("1")}},
		})
		require.ErrorIs(t, err, shared.ErrPolicyViolation)
	})
}

type recordingCache struct {
	calls []int64
}

func (r *recordingCache) Invalidate(_ context.Context, userID int64) {
	r.calls = append(r.calls, userID)
}

func TestSummaryInvalidation(t *testing.T) {
	t.Run("register drops the cache once", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		cache := &recordingCache{}
		svc := NewService(store, fixedMode(settings.StockControlPerItem), cache)

		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("2")}},
		})
		require.NoError(t, err)
		require.Equal(t, []int64{1}, cache.calls)
	})

	t.Run("delete drops the cache", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		cache := &recordingCache{}
		svc := NewService(store, fixedMode(settings.StockControlPerItem), cache)

		sale, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("2")}},
		})
		require.NoError(t, err)
		require.NoError(t, svc.DeletePermanently(context.Background(), 1, sale.ID))
		require.Equal(t, []int64{1, 1}, cache.calls)
	})

	t.Run("rolled back register leaves the cache alone", func(t *testing.T) {
		store := newFakeStore()
		seedProduct(store, 10, "rice 5kg", "25.90", "8", true)
		cache := &recordingCache{}
		svc := NewService(store, fixedMode(settings.StockControlPerItem), cache)

		_, err := svc.Register(context.Background(), 1, RegisterSaleRequest{
			PaymentMethod: shared.PaymentCash,
			Items:         []SaleItemRequest{{ProductID: 10, Quantity: dec("100")}},
		})
		require.ErrorIs(t, err, inventory.ErrInsufficientStock)
		require.Empty(t, cache.calls)
	})
}
