package models

// CartItem is one requested line in a cart. The embedded product carries the
// live name/price used for snapshots at assembly time.
type CartItem struct {
	Product  *Product `json:"product"`
	Size     string   `json:"size"`
	Quantity int      `json:"quantity"`
}

// Subtotal is the live price times the requested quantity.
func (ci *CartItem) Subtotal() float64 {
	return ci.Product.Price * float64(ci.Quantity)
}

// Cart is the transient per-user collection of requested lines. Items are
// keyed by (product id, size): adding the same pair again merges quantities.
type Cart struct {
	UserID int64      `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// NewCart returns an empty cart for the user.
func NewCart(userID int64) *Cart {
	return &Cart{UserID: userID}
}

// AddItem adds qty units of the product in the given size. If the cart
// already holds that (product, size) pair the quantities merge into the
// existing item.
func (c *Cart) AddItem(product *Product, size string, qty int) {
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID && c.Items[i].Size == size {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, CartItem{Product: product, Size: size, Quantity: qty})
}

// RemoveItem deletes the (product, size) item. Returns false when the cart
// holds no such item.
func (c *Cart) RemoveItem(productID int64, size string) bool {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID && c.Items[i].Size == size {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity replaces the quantity of the (product, size) item. Returns
// false when the cart holds no such item.
func (c *Cart) UpdateQuantity(productID int64, size string, qty int) bool {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID && c.Items[i].Size == size {
			c.Items[i].Quantity = qty
			return true
		}
	}
	return false
}

// Clear empties the cart. Callers invoke this explicitly after a successful
// placement; the orchestrator never clears a cart on its own.
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems returns the total number of units across all items.
func (c *Cart) TotalItems() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// Total sums the live subtotals of all items.
func (c *Cart) Total() float64 {
	total := 0.0
	for i := range c.Items {
		total += c.Items[i].Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
