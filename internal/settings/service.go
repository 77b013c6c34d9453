package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/flick-business/flick-business/internal/shared"
)

// Service exposes settings reads and updates. It also serves as the
// stock-control-mode lookup consumed by the sale and expense workflows.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's settings, creating the default row on first access.
func (s *Service) Get(ctx context.Context, userID int64) (*GeneralSettings, error) {
	existing, err := s.repo.GetByUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("settings: get: %w", err)
	}
	if err := s.repo.CreateDefault(ctx, userID); err != nil {
		return nil, fmt.Errorf("settings: create default: %w", err)
	}
	return s.repo.GetByUser(ctx, userID)
}

// StockControlMode resolves the user's mode, defaulting to PER_ITEM.
func (s *Service) StockControlMode(ctx context.Context, userID int64) (StockControlMode, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !settings.StockControlType.Valid() {
		return StockControlPerItem, nil
	}
	return settings.StockControlType, nil
}

// Update overwrites the writable settings fields.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateSettingsRequest) (*GeneralSettings, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing.StockControlType = req.StockControlType
	existing.BusinessName = req.BusinessName
	existing.BusinessField = req.BusinessField
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("settings: update: %w", err)
	}
	return s.repo.GetByUser(ctx, userID)
}
