package settings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/shared"
)

type fakeRepo struct {
	rows   map[int64]*GeneralSettings
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]*GeneralSettings{}, nextID: 1}
}

func (f *fakeRepo) GetByUser(_ context.Context, userID int64) (*GeneralSettings, error) {
	s, ok := f.rows[userID]
	if !ok {
		return nil, fmt.Errorf("%w: settings for user", shared.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeRepo) CreateDefault(_ context.Context, userID int64) error {
	if _, ok := f.rows[userID]; ok {
		return nil
	}
	f.rows[userID] = &GeneralSettings{
		ID:               f.nextID,
		UserID:           userID,
		StockControlType: StockControlPerItem,
		UpdatedAt:        time.Now(),
	}
	f.nextID++
	return nil
}

func (f *fakeRepo) Update(_ context.Context, s *GeneralSettings) error {
	existing, ok := f.rows[s.UserID]
	if !ok {
		return fmt.Errorf("%w: settings for user", shared.ErrNotFound)
	}
	existing.StockControlType = s.StockControlType
	existing.BusinessName = s.BusinessName
	existing.BusinessField = s.BusinessField
	existing.UpdatedAt = time.Now()
	return nil
}

func TestGetCreatesDefaultRow(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, StockControlPerItem, got.StockControlType)
	require.Nil(t, got.BusinessName)

	again, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, got.ID, again.ID)
}

func TestUpdateSettings(t *testing.T) {
	svc := NewService(newFakeRepo())

	name := "Corner Shop"
	field := "Groceries"
	updated, err := svc.Update(context.Background(), 7, UpdateSettingsRequest{
		StockControlType: StockControlGlobal,
		BusinessName:     &name,
		BusinessField:    &field,
	})
	require.NoError(t, err)
	require.Equal(t, StockControlGlobal, updated.StockControlType)
	require.Equal(t, "Corner Shop", *updated.BusinessName)

	mode, err := svc.StockControlMode(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, StockControlGlobal, mode)
}

func TestUpdateRejectsUnknownMode(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Update(context.Background(), 7, UpdateSettingsRequest{StockControlType: "SOMETIMES"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestStockControlModeDefaultsPerItem(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	mode, err := svc.StockControlMode(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, StockControlPerItem, mode)

	// A stale row with an unknown value still resolves to the default.
	repo.rows[3].StockControlType = "LEGACY"
	mode, err = svc.StockControlMode(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, StockControlPerItem, mode)
}
