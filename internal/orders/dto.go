package orders

// CreateRequest carries the fields for a new order.
type CreateRequest struct {
	ClientID    int64           `json:"client_id" validate:"required,gt=0"`
	ClientName  string          `json:"client_name" validate:"required"`
	Responsable string          `json:"responsable" validate:"required"`
	Items       []CreateItemReq `json:"items" validate:"required,min=1,dive"`
}

// CreateItemReq is one requested line.
type CreateItemReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateStatusRequest moves an order to a new lifecycle status. The payment
// method only applies to the DELIVERED transition and defaults to cash.
type UpdateStatusRequest struct {
	Status        Status   `json:"status" validate:"required"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
}

// ListRequest filters the order listing.
type ListRequest struct {
	Status  *Status `json:"status,omitempty"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}
