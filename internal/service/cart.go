package service

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single cart entry. Adds and positive deltas saturate
// at this value.
const MaxQuantity = 1_000_000

// Cart is an ordered list of cart entries, unique by product ID. It never
// holds an entry with a non-positive quantity. Cart is not safe for
// concurrent use; Session serialises access to it.
type Cart struct {
	items []domain.CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add increments the entry for p, or appends p with quantity one.
func (c *Cart) Add(p domain.Product) domain.Notification {
	if i := c.indexOf(p.ID); i >= 0 {
		if c.items[i].Quantity < MaxQuantity {
			c.items[i].Quantity++
		}
	} else {
		c.items = append(c.items, domain.CartItem{Product: p, Quantity: 1})
	}
	return domain.Notification{
		Title:       "Added to cart!",
		Description: fmt.Sprintf("%s has been added to your cart.", p.Name),
		Variant:     domain.VariantDefault,
	}
}

// UpdateQuantity applies delta to the entry for id. The entry is dropped when
// the result is not positive and capped at MaxQuantity. Returns false if id is
// not in the cart.
func (c *Cart) UpdateQuantity(id string, delta int) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	q := c.items[i].Quantity
	if delta > MaxQuantity-q {
		c.items[i].Quantity = MaxQuantity
		return true
	}
	if q += delta; q > 0 {
		c.items[i].Quantity = q
	} else {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return true
}

// Remove deletes the entry for id regardless of quantity. A missing id leaves
// the cart unchanged.
func (c *Cart) Remove(id string) domain.Notification {
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return domain.Notification{
		Title:       "Removed from cart",
		Description: "Item has been removed from your cart.",
		Variant:     domain.VariantDefault,
	}
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

// TotalPrice sums price times quantity over all entries.
func (c *Cart) TotalPrice() float64 {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.InexactFloat64()
}

// TotalItems sums quantities over all entries.
func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
