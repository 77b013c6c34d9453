package settings

// UpdateSettingsRequest carries the writable settings fields.
type UpdateSettingsRequest struct {
	StockControlType StockControlMode `json:"stock_control_type" validate:"required,oneof=PER_ITEM GLOBAL NONE"`
	BusinessName     *string          `json:"business_name,omitempty" validate:"omitempty,max=100"`
	BusinessField    *string          `json:"business_field,omitempty" validate:"omitempty,max=100"`
}
