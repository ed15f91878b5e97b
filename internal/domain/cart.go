package domain

// CartItem is a product paired with the requested quantity. Its identity is
// the product ID.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}
