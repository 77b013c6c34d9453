package customers

import "github.com/shopspring/decimal"

// CreateCustomerRequest carries a new customer.
type CreateCustomerRequest struct {
	Name          string           `json:"name" validate:"required,min=2,max=150"`
	Email         *string          `json:"email" validate:"omitempty,email"`
	Phone         *string          `json:"phone" validate:"omitempty,max=30"`
	TaxID         *string          `json:"tax_id" validate:"omitempty,min=5,max=30"`
	CreditEnabled bool             `json:"credit_enabled"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
}

// UpdateCustomerRequest carries a full customer replacement. The credit
// balance is absent on purpose, it moves only through sales and payments.
type UpdateCustomerRequest struct {
	Name          string           `json:"name" validate:"required,min=2,max=150"`
	Email         *string          `json:"email" validate:"omitempty,email"`
	Phone         *string          `json:"phone" validate:"omitempty,max=30"`
	TaxID         *string          `json:"tax_id" validate:"omitempty,min=5,max=30"`
	CreditEnabled bool             `json:"credit_enabled"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
}

// ListFilters narrows a customer listing.
type ListFilters struct {
	Name     string
	Active   *bool
	Page     int
	PageSize int
}

// CustomerPage is one page of a customer listing.
type CustomerPage struct {
	Items      []Customer `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int64      `json:"total_count"`
}
