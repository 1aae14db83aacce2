// Package caisse records the sale settled when an order is delivered.
// Each order settles at most once; the unique index on order_id is the
// source of truth for that rule.
package caisse

import "time"

// PaymentMethod is the settlement tender type.
type PaymentMethod string

const (
	PaymentEspece           PaymentMethod = "espece"
	PaymentCheque           PaymentMethod = "cheque"
	PaymentCredit           PaymentMethod = "credit"
	PaymentTicketRestaurant PaymentMethod = "ticket_restaurant"
)

// DefaultPaymentMethod applies when the caller supplies none.
const DefaultPaymentMethod = PaymentEspece

// IsValid checks if the payment method is a known value.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentEspece, PaymentCheque, PaymentCredit, PaymentTicketRestaurant:
		return true
	default:
		return false
	}
}

// Vente is the financial record of a delivered order.
type Vente struct {
	ID              int64         `json:"id"`
	OrderID         int64         `json:"order_id"`
	UserID          int64         `json:"user_id"`
	Montant         float64       `json:"montant"`
	MethodePaiement PaymentMethod `json:"methode_paiement"`
	Reduction       *float64      `json:"reduction,omitempty"`
	DateVente       time.Time     `json:"date_vente"`
	Description     string        `json:"description"`
}

// DailyTotal aggregates settlements per calendar day.
type DailyTotal struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
	Total float64   `json:"total"`
}
