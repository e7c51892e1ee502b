package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

type Customer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Order is an immutable snapshot of a confirmed purchase.
type Order struct {
	ID               string      `json:"id"` // ORD-<unix millis>
	Items            []CartItem  `json:"items"`
	Total            int64       `json:"total"`
	Customer         Customer    `json:"customer"`
	Date             time.Time   `json:"date"`
	Status           OrderStatus `json:"status"`
	PaymentReference string      `json:"payment_reference,omitempty"`
}

// CheckoutRequest carries what the checkout form collects once the payment
// widget reports success.
type CheckoutRequest struct {
	Customer         Customer `json:"customer"`
	PaymentReference string   `json:"payment_reference"`
}
