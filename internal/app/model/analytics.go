package model

import "time"

// ViewLog is one product-view impression.
type ViewLog struct {
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

type ProductViews struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Views     int    `json:"views"`
}
