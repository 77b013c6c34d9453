package providers

import (
	"context"
	"fmt"

	"github.com/flick-business/flick-business/internal/shared"
)

// Service wraps provider business rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all providers owned by the user, sorted by name.
func (s *Service) List(ctx context.Context, userID int64) ([]Provider, error) {
	return s.repo.List(ctx, userID)
}

// Get resolves one provider within the user's ownership scope.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Provider, error) {
	return s.repo.Get(ctx, userID, id)
}

// Create validates and persists a new provider.
func (s *Service) Create(ctx context.Context, userID int64, req CreateProviderRequest) (*Provider, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	provider := Provider{UserID: userID, Name: req.Name, Email: req.Email, Phone: req.Phone}
	id, err := s.repo.Create(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("providers: create: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}
