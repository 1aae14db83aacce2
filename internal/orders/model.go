// Package orders provides the order lifecycle. The transition into DELIVERED
// triggers the caisse settlement rule.
package orders

import "time"

// Status represents the order lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusReady, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition checks if a move from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusConfirmed:
		return s == StatusPending
	case StatusReady:
		return s == StatusConfirmed
	case StatusDelivered:
		return s == StatusReady
	case StatusCancelled:
		return true
	default:
		return false
	}
}

// Order represents a client purchase request.
type Order struct {
	ID         int64  `json:"id"`
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
	// Responsable is the free-text name or email of the agent credited
	// with fulfilling the order.
	Responsable string    `json:"responsable"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Items       []Item    `json:"items,omitempty"`
}

// Item is a line of an order. UnitPrice is the catalog price snapshotted at
// order creation; the settlement may bill it or the current price depending
// on the configured price source.
type Item struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
