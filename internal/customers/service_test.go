package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/shared"
)

type fakeRepo struct {
	nextID    int64
	customers map[int64]Customer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, customers: map[int64]Customer{}}
}

func (f *fakeRepo) Create(_ context.Context, c Customer) (int64, error) {
	for _, existing := range f.customers {
		if existing.UserID == c.UserID && existing.TaxID != nil && c.TaxID != nil && *existing.TaxID == *c.TaxID {
			return 0, fmt.Errorf("%w: tax id already registered", shared.ErrConflict)
		}
	}
	c.ID = f.nextID
	f.nextID++
	f.customers[c.ID] = c
	return c.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, c Customer) error {
	existing, ok := f.customers[c.ID]
	if !ok || existing.UserID != c.UserID {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, c.ID)
	}
	c.CreditBalance = existing.CreditBalance
	f.customers[c.ID] = c
	return nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id int64) (*Customer, error) {
	c, ok := f.customers[id]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	out := c
	return &out, nil
}

func (f *fakeRepo) List(_ context.Context, userID int64, _ ListFilters) ([]Customer, int64, error) {
	var result []Customer
	for _, c := range f.customers {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRepo) SetActive(_ context.Context, userID, id int64, active bool) error {
	c, ok := f.customers[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	c.Active = active
	f.customers[id] = c
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id int64) error {
	c, ok := f.customers[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	delete(f.customers, id)
	return nil
}

func (f *fakeRepo) TopBuyers(_ context.Context, _ int64, _ int) ([]Customer, error) {
	return nil, nil
}

func TestServiceCreate(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	t.Run("new customers start active with zero balance", func(t *testing.T) {
		c, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Ana Souza", CreditEnabled: true})
		require.NoError(t, err)
		require.True(t, c.Active)
		require.True(t, c.CreditBalance.IsZero())
	})

	t.Run("rejects short names", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "A"})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects negative credit limit", func(t *testing.T) {
		limit := decimal.RequireFromString("-1")
		_, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Bruno Dias", CreditLimit: &limit})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("duplicate tax id conflicts", func(t *testing.T) {
		taxID := "12345678900"
		_, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Carla Lima", TaxID: &taxID})
		require.NoError(t, err)
		_, err = svc.Create(ctx, 1, CreateCustomerRequest{Name: "Carla Duplicada", TaxID: &taxID})
		require.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestServiceUpdateKeepsBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Davi Rocha", CreditEnabled: true})
	require.NoError(t, err)

	stored := repo.customers[created.ID]
	stored.CreditBalance = decimal.RequireFromString("42.42")
	repo.customers[created.ID] = stored

	updated, err := svc.Update(ctx, 1, created.ID, UpdateCustomerRequest{Name: "Davi R. Rocha", CreditEnabled: true})
	require.NoError(t, err)
	require.Equal(t, "Davi R. Rocha", updated.Name)
	require.True(t, updated.CreditBalance.Equal(decimal.RequireFromString("42.42")))
}

func TestServiceDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Elisa Prado", CreditEnabled: true})
	require.NoError(t, err)

	t.Run("blocked while debt is outstanding", func(t *testing.T) {
		stored := repo.customers[created.ID]
		stored.CreditBalance = decimal.RequireFromString("10")
		repo.customers[created.ID] = stored

		err := svc.Delete(ctx, 1, created.ID)
		require.ErrorIs(t, err, shared.ErrPolicyViolation)
	})

	t.Run("allowed once settled", func(t *testing.T) {
		stored := repo.customers[created.ID]
		stored.CreditBalance = decimal.Zero
		repo.customers[created.ID] = stored

		require.NoError(t, svc.Delete(ctx, 1, created.ID))
		_, err := svc.Get(ctx, 1, created.ID)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestServiceOwnershipScope(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateCustomerRequest{Name: "Fabio Nunes"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound, "another user's customer reads as not found")
}
