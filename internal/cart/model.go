package cart

import (
	"errors"
	"fmt"
	"strings"
)

type ProductID int64

// Product is the catalog view of a product, copied into a LineItem the first
// time it enters the cart.
type Product struct {
	ID         ProductID `json:"id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
	Image      string    `json:"image"`
}

var ErrInvalidProduct = errors.New("invalid product")

// validateFor rejects catalog answers that cannot become a line item.
func (p Product) validateFor(id ProductID) error {
	switch {
	case p.ID != id:
		return fmt.Errorf("%w: id=%d want=%d", ErrInvalidProduct, p.ID, id)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: id=%d missing title", ErrInvalidProduct, id)
	case p.PriceCents < 0:
		return fmt.Errorf("%w: id=%d negative price", ErrInvalidProduct, id)
	}
	return nil
}

type LineItem struct {
	ID         ProductID `json:"id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
	Image      string    `json:"image"`
	Quantity   int       `json:"quantity"`
}

func (it LineItem) SubtotalCents() int64 {
	return it.PriceCents * int64(it.Quantity)
}

// Cart is an immutable snapshot. The engine never mutates a *Cart after it has
// been published, so pointer identity tells two snapshots apart.
type Cart struct {
	items []LineItem
}

func newCart(items []LineItem) *Cart {
	if len(items) == 0 {
		return &Cart{}
	}
	return &Cart{items: items}
}

func (c *Cart) Len() int { return len(c.items) }

// Items returns a copy; callers may modify it freely.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Item(id ProductID) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Quantities is the per-product quantity index, rebuilt on every call.
func (c *Cart) Quantities() map[ProductID]int {
	out := make(map[ProductID]int, len(c.items))
	for _, it := range c.items {
		out[it.ID] = it.Quantity
	}
	return out
}

func (c *Cart) TotalCents() int64 {
	var total int64
	for _, it := range c.items {
		total += it.SubtotalCents()
	}
	return total
}

// Equal compares contents, not identity.
func (c *Cart) Equal(o *Cart) bool {
	if len(c.items) != len(o.items) {
		return false
	}
	for i := range c.items {
		if c.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

func (c *Cart) index(id ProductID) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) withQuantity(i, qty int) *Cart {
	next := c.Items()
	next[i].Quantity = qty
	return newCart(next)
}

func (c *Cart) withAppended(it LineItem) *Cart {
	next := make([]LineItem, len(c.items), len(c.items)+1)
	copy(next, c.items)
	return newCart(append(next, it))
}

func (c *Cart) without(i int) *Cart {
	next := make([]LineItem, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	return newCart(next)
}
