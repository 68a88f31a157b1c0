package models

import "time"

// Product represents a catalog item. Price and name are the live values; an
// order keeps its own snapshot of both (see OrderLine).
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	Team        string    `db:"team" json:"team,omitempty"`
	League      string    `db:"league" json:"league,omitempty"`
	Season      string    `db:"season" json:"season,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Inventory is the per-product document from the inventory store: size label
// to available count. It lives independently of the Product row.
type Inventory struct {
	ProductID int64          `json:"product_id"`
	Counts    map[string]int `json:"inventory"`
}

// Available returns the count for a size, treating an absent size as zero.
func (inv *Inventory) Available(size string) int {
	if inv == nil || inv.Counts == nil {
		return 0
	}
	return inv.Counts[size]
}

// HasStock reports whether at least qty units of the size are available.
func (inv *Inventory) HasStock(size string, qty int) bool {
	return inv.Available(size) >= qty
}

// TotalStock sums the counts across all sizes.
func (inv *Inventory) TotalStock() int {
	total := 0
	for _, c := range inv.Counts {
		total += c
	}
	return total
}

// User represents a registered customer.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	Address      string    `db:"address" json:"address,omitempty"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// Order is the persisted purchase aggregate. Mutable only through status
// transitions once created.
type Order struct {
	ID        int64       `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Status    OrderStatus `db:"status" json:"status"`
	Total     float64     `db:"total" json:"total"`
	Address   string      `db:"shipping_address" json:"shipping_address"`
	Phone     string      `db:"phone" json:"phone"`
	Notes     string      `db:"notes" json:"notes,omitempty"`
	Lines     []OrderLine `db:"-" json:"lines"`
}

// OrderLine is one line of an order. Name and UnitPrice are snapshots taken at
// assembly time and never change afterwards, even if the catalog does.
type OrderLine struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Name      string  `db:"name_snapshot" json:"name"`
	Size      string  `db:"size" json:"size"`
	Quantity  int     `db:"qty" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// Subtotal is quantity times the unit-price snapshot.
func (l *OrderLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// AddLine appends a line and recomputes the total so it never diverges from
// the sum of line subtotals.
func (o *Order) AddLine(line OrderLine) {
	o.Lines = append(o.Lines, line)
	o.RecalculateTotal()
}

// RecalculateTotal resets Total to the sum of line subtotals.
func (o *Order) RecalculateTotal() {
	total := 0.0
	for i := range o.Lines {
		total += o.Lines[i].Subtotal()
	}
	o.Total = total
}

// ItemCount returns the total number of units across all lines.
func (o *Order) ItemCount() int {
	count := 0
	for i := range o.Lines {
		count += o.Lines[i].Quantity
	}
	return count
}
