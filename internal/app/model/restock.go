package model

import "time"

// RestockRequest registers a customer's interest in an out-of-stock product.
type RestockRequest struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	CustomerEmail string    `json:"customer_email"`
	Date          time.Time `json:"date"`
}
