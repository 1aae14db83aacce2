package fournisseurs

// CreateRequest carries the fields for a new supplier.
type CreateRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateRequest carries a partial update. Empty strings mean "not supplied";
// unsupplied fields keep their stored value.
type UpdateRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
}
