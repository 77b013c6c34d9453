package customers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

const suggestionLimit = 3

// Service wraps customer business rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateCreditLimit(limit *decimal.Decimal) error {
	if limit != nil && limit.IsNegative() {
		return fmt.Errorf("%w: credit limit must not be negative", shared.ErrValidation)
	}
	return nil
}

// Create validates and persists a new customer with a zero credit balance.
func (s *Service) Create(ctx context.Context, userID int64, req CreateCustomerRequest) (*Customer, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if err := validateCreditLimit(req.CreditLimit); err != nil {
		return nil, err
	}
	customer := Customer{
		UserID:        userID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		TaxID:         req.TaxID,
		CreditEnabled: req.CreditEnabled,
		CreditLimit:   req.CreditLimit,
		CreditBalance: decimal.Zero,
		Active:        true,
	}
	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("customers: create: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}

// Update replaces the editable attributes of a customer. The credit
// balance is never touched here.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if err := validateCreditLimit(req.CreditLimit); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	current.Name = req.Name
	current.Email = req.Email
	current.Phone = req.Phone
	current.TaxID = req.TaxID
	current.CreditEnabled = req.CreditEnabled
	current.CreditLimit = req.CreditLimit

	if err := s.repo.Update(ctx, *current); err != nil {
		return nil, fmt.Errorf("customers: update: %w", err)
	}
	return s.repo.Get(ctx, userID, id)
}

// Get resolves one customer within the user's ownership scope.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Customer, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a filtered page of customers.
func (s *Service) List(ctx context.Context, userID int64, f ListFilters) (*CustomerPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	return &CustomerPage{Items: items, Page: f.Page, PageSize: f.PageSize, TotalCount: total}, nil
}

// ToggleActive flips the customer's active flag.
func (s *Service) ToggleActive(ctx context.Context, userID, id int64) (*Customer, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, userID, id, !current.Active); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a customer. Customers with outstanding debt are kept so
// the receivable is not silently erased.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if current.CreditBalance.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: customer %q still owes %s",
			shared.ErrPolicyViolation, current.Name, current.CreditBalance)
	}
	return s.repo.Delete(ctx, userID, id)
}

// Suggestions returns the user's most frequent buyers.
func (s *Service) Suggestions(ctx context.Context, userID int64) ([]Customer, error) {
	return s.repo.TopBuyers(ctx, userID, suggestionLimit)
}
