// Package cart holds a shopper's staged order lines. It is local
// bookkeeping only: nothing here reads or reserves stock.
package cart

import (
	"fmt"

	"storefront-orders/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart keeps at most one line per product, in order of addition.
type Cart struct {
	lines []model.CartLine
}

func New(lines ...model.CartLine) *Cart {
	c := &Cart{}
	for _, l := range lines {
		_ = c.Add(l)
	}
	return c
}

// Add stages a line. If the product is already staged its quantity is
// replaced and the line keeps its position.
func (c *Cart) Add(line model.CartLine) error {
	if line.Quantity <= 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must be > 0"}
	}
	if line.ProductID == uuid.Nil {
		return &model.ValidationError{Field: "product_id", Reason: "is required"}
	}
	if i := c.index(line.ProductID); i >= 0 {
		c.lines[i].Quantity = line.Quantity
		return nil
	}
	c.lines = append(c.lines, line)
	return nil
}

// UpdateQuantity has no upper bound; live stock is checked at checkout.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must be > 0"}
	}
	i := c.index(productID)
	if i < 0 {
		return fmt.Errorf("cart line %s: %w", productID, model.ErrNotFound)
	}
	c.lines[i].Quantity = quantity
	return nil
}

// Remove drops the product's line and reports whether one existed.
func (c *Cart) Remove(productID uuid.UUID) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Len() int { return len(c.lines) }

// List returns a copy of the lines in addition order.
func (c *Cart) List() []model.CartLine {
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c *Cart) index(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
