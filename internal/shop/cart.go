package shop

import "github.com/shopspring/decimal"

// Cart is an ordered list of cart lines keyed by toy id.
// The zero value is an empty cart ready to use.
type Cart struct {
	items []CartItem
}

// Add puts one unit of t into the cart, incrementing the line if present.
func (c *Cart) Add(t Toy) {
	c.AddQuantity(t, 1)
}

// AddQuantity puts qty units of t into the cart. Non-positive qty counts as 1.
func (c *Cart) AddQuantity(t Toy, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].ID == t.ID {
			c.items[i].Quantity += qty
			return
		}
	}
	c.items = append(c.items, CartItem{Toy: t.Clone(), Quantity: qty})
}

// UpdateQuantity changes a line's quantity by delta, never going below 1.
func (c *Cart) UpdateQuantity(toyID string, delta int) {
	for i := range c.items {
		if c.items[i].ID == toyID {
			c.items[i].Quantity = max(1, c.items[i].Quantity+delta)
			return
		}
	}
}

// Remove drops the line for toyID.
func (c *Cart) Remove(toyID string) {
	for i := range c.items {
		if c.items[i].ID == toyID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	for i, it := range c.items {
		out[i] = CartItem{Toy: it.Toy.Clone(), Quantity: it.Quantity}
	}
	return out
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.items) }

// Count is the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total sums effective price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return ItemsTotal(c.items)
}

// ItemsTotal sums effective price times quantity.
func ItemsTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
