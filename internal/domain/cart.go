package domain

// CartLine is a product and how many of it were ordered
type CartLine struct {
	ProductID string
	Quantity  int
}

// Cart maps product IDs to quantities, remembering the order in which
// products were first added
type Cart struct {
	order []string
	qty   map[string]int
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// Add changes a product's quantity by delta, never going below zero, and
// returns the new quantity
func (c *Cart) Add(productID string, delta int) int {
	return c.Set(productID, c.Quantity(productID)+delta)
}

// Set overwrites a product's quantity; negative values become zero
func (c *Cart) Set(productID string, quantity int) int {
	if c.qty == nil {
		c.qty = make(map[string]int)
	}
	if quantity < 0 {
		quantity = 0
	}
	if _, ok := c.qty[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.qty[productID] = quantity
	return quantity
}

// Quantity returns the quantity for a product (0 if absent)
func (c *Cart) Quantity(productID string) int {
	return c.qty[productID]
}

// Lines returns the products with a positive quantity in insertion order
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		if q := c.qty[id]; q > 0 {
			lines = append(lines, CartLine{ProductID: id, Quantity: q})
		}
	}
	return lines
}

// IsEmpty reports whether no product has a positive quantity
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines()) == 0
}

// Count returns the total number of units in the cart
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines() {
		n += l.Quantity
	}
	return n
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.order = nil
	c.qty = make(map[string]int)
}
