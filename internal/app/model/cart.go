package model

// LineKey identifies a cart line: the same product in another color or size
// is a separate line.
type LineKey struct {
	ProductID string `json:"product_id"`
	Color     string `json:"selected_color"`
	Size      string `json:"selected_size"`
}

// CartItem is a snapshot of a product taken when it was added to the cart.
type CartItem struct {
	Product
	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selected_color,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
}

func (c CartItem) Key() LineKey {
	return LineKey{ProductID: c.ID, Color: c.SelectedColor, Size: c.SelectedSize}
}

func (c CartItem) Subtotal() int64 {
	return c.Price * int64(c.Quantity)
}

// CartTotal sums the subtotals of items.
func CartTotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CartQuantity sums the quantities of items.
func CartQuantity(items []CartItem) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
