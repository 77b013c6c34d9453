package providers

// CreateProviderRequest carries a new provider.
type CreateProviderRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=150"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
}
