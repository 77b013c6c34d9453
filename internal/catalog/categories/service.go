package categories

import (
	"context"
	"fmt"

	"github.com/flick-business/flick-business/internal/shared"
)

// Service wraps category business rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all categories owned by the user, sorted by name.
func (s *Service) List(ctx context.Context, userID int64) ([]Category, error) {
	return s.repo.List(ctx, userID)
}

// Get resolves one category within the user's ownership scope.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Category, error) {
	return s.repo.Get(ctx, userID, id)
}

// Create validates and persists a new category.
func (s *Service) Create(ctx context.Context, userID int64, req CreateCategoryRequest) (*Category, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	category := Category{UserID: userID, Name: req.Name}
	id, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("categories: create: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}
