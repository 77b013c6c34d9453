package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/shared"
)

type fakeRepo struct {
	products map[int64]*Product
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[int64]*Product{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, p Product) (int64, error) {
	p.ID = f.nextID
	f.nextID++
	f.products[p.ID] = &p
	return p.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, p Product) error {
	existing, ok := f.products[p.ID]
	if !ok || existing.UserID != p.UserID {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, p.ID)
	}
	keep := existing.StockQuantity
	*existing = p
	existing.StockQuantity = keep
	return nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id int64) (*Product, error) {
	p, ok := f.products[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, userID int64, _ ListFilters) ([]Product, int64, error) {
	var out []Product
	for _, p := range f.products {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) SetActive(_ context.Context, userID, id int64, active bool) error {
	p, ok := f.products[id]
	if !ok || p.UserID != userID {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	p.Active = active
	return nil
}

func (f *fakeRepo) DeletePermanently(_ context.Context, userID, id int64) error {
	p, ok := f.products[id]
	if !ok || p.UserID != userID {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	delete(f.products, id)
	return nil
}

func (f *fakeRepo) MostSold(context.Context, int64, int) ([]SoldProduct, error) {
	return nil, nil
}

func (f *fakeRepo) LowStock(context.Context, int64) ([]Product, error) {
	return nil, nil
}

var _ Repository = (*fakeRepo)(nil)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validCreate() CreateProductRequest {
	return CreateProductRequest{
		Name:       "Rice 5kg",
		CategoryID: 1,
		SalePrice:  dec("28.90"),
		UnitOfSale: UnitBox,
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newFakeRepo())

	p, err := svc.Create(context.Background(), 1, validCreate())
	require.NoError(t, err)
	require.True(t, p.Active)
	require.True(t, p.ManagesStock)
	require.True(t, p.StockQuantity.IsZero())
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeRepo())

	t.Run("non positive sale price", func(t *testing.T) {
		req := validCreate()
		req.SalePrice = decimal.Zero
		_, err := svc.Create(context.Background(), 1, req)
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("negative stock", func(t *testing.T) {
		req := validCreate()
		neg := dec("-1")
		req.StockQuantity = &neg
		_, err := svc.Create(context.Background(), 1, req)
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown unit of sale", func(t *testing.T) {
		req := validCreate()
		req.UnitOfSale = "PALLET"
		_, err := svc.Create(context.Background(), 1, req)
		require.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestUpdateNeverTouchesStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	req := validCreate()
	stock := dec("40")
	req.StockQuantity = &stock
	p, err := svc.Create(context.Background(), 1, req)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 1, p.ID, UpdateProductRequest{
		Name:       "Rice 5kg premium",
		CategoryID: 1,
		SalePrice:  dec("31.50"),
		UnitOfSale: UnitBox,
	})
	require.NoError(t, err)
	require.Equal(t, "Rice 5kg premium", updated.Name)
	require.True(t, updated.StockQuantity.Equal(dec("40")), "stock must survive catalog edits")
}

func TestCopyStartsWithZeroStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	req := validCreate()
	stock := dec("12")
	req.StockQuantity = &stock
	src, err := svc.Create(context.Background(), 1, req)
	require.NoError(t, err)

	dup, err := svc.Copy(context.Background(), 1, src.ID)
	require.NoError(t, err)
	require.NotEqual(t, src.ID, dup.ID)
	require.Equal(t, "Rice 5kg (copy)", dup.Name)
	require.True(t, dup.StockQuantity.IsZero())
	require.True(t, dup.SalePrice.Equal(src.SalePrice))
}

func TestToggleActive(t *testing.T) {
	svc := NewService(newFakeRepo())

	p, err := svc.Create(context.Background(), 1, validCreate())
	require.NoError(t, err)

	off, err := svc.ToggleActive(context.Background(), 1, p.ID)
	require.NoError(t, err)
	require.False(t, off.Active)

	on, err := svc.ToggleActive(context.Background(), 1, p.ID)
	require.NoError(t, err)
	require.True(t, on.Active)
}

func TestOwnershipScope(t *testing.T) {
	svc := NewService(newFakeRepo())

	p, err := svc.Create(context.Background(), 1, validCreate())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.DeletePermanently(context.Background(), 2, p.ID), shared.ErrNotFound)
}
