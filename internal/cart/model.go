package cart

import "time"

type Line struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Cart is the per-session basket. Lines keep the order products were first added in.
type Cart struct {
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cart) index(product string) int {
	for i, l := range c.Lines {
		if l.Product == product {
			return i
		}
	}
	return -1
}

// Quantity returns how many of product are in the cart.
func (c *Cart) Quantity(product string) int {
	if i := c.index(product); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Add merges qty into the line for product. A non-negative limit caps the resulting quantity.
// It returns the line quantity after the change.
func (c *Cart) Add(product string, qty, limit int) int {
	i := c.index(product)
	if i < 0 {
		c.Lines = append(c.Lines, Line{Product: product})
		i = len(c.Lines) - 1
	}
	next := c.Lines[i].Quantity + qty
	if limit >= 0 && next > limit {
		next = limit
	}
	c.Lines[i].Quantity = next
	return next
}

func (c *Cart) Remove(product string) {
	if i := c.index(product); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}
