package model

import "time"

// WishlistItem is a product snapshot saved by a shopper.
type WishlistItem struct {
	Product
	AddedAt time.Time `json:"added_at"`
}
