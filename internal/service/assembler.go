package service

import (
	"time"

	"storefront-orders/internal/models"
)

// Assembler builds order aggregates. All constructors are pure: they snapshot
// product names and prices from their inputs and perform no store I/O. Every
// assembled order starts in PENDING with total = sum of line subtotals.
type Assembler struct {
	defaultSize string
}

func NewAssembler(defaultSize string) *Assembler {
	if defaultSize == "" {
		defaultSize = "M"
	}
	return &Assembler{defaultSize: defaultSize}
}

// LineSpec describes one raw line for a custom order.
type LineSpec struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// FromCart builds an order from a cart, one line per cart item. Shipping
// address and phone fall back to the user's profile values when not supplied.
// Every line quantity must be at least one.
func (a *Assembler) FromCart(cart *models.Cart, user *models.User, address, phone, notes string) (*models.Order, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	for i := range cart.Items {
		if cart.Items[i].Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	if address == "" {
		address = user.Address
	}
	if phone == "" {
		phone = user.Phone
	}

	order := a.newOrder(user.ID, address, phone, notes)
	for i := range cart.Items {
		item := &cart.Items[i]
		order.AddLine(models.OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}
	return order, nil
}

// Express builds a single-line order from explicit values. No profile
// defaulting: address and phone must be supplied.
func (a *Assembler) Express(userID, productID int64, name, size string, qty int, unitPrice float64, address, phone string) (*models.Order, error) {
	if address == "" || phone == "" {
		return nil, ErrMissingContact
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	order := a.newOrder(userID, address, phone, "")
	order.AddLine(models.OrderLine{
		ProductID: productID,
		Name:      name,
		Size:      size,
		Quantity:  qty,
		UnitPrice: unitPrice,
	})
	return order, nil
}

// Custom builds an order from raw line descriptors. A line without a size
// gets the default; address and phone are required, notes optional.
func (a *Assembler) Custom(userID int64, lines []LineSpec, address, phone, notes string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if address == "" || phone == "" {
		return nil, ErrMissingContact
	}

	order := a.newOrder(userID, address, phone, notes)
	for _, spec := range lines {
		if spec.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		size := spec.Size
		if size == "" {
			size = a.defaultSize
		}
		order.AddLine(models.OrderLine{
			ProductID: spec.ProductID,
			Name:      spec.Name,
			Size:      size,
			Quantity:  spec.Quantity,
			UnitPrice: spec.UnitPrice,
		})
	}
	return order, nil
}

func (a *Assembler) newOrder(userID int64, address, phone, notes string) *models.Order {
	return &models.Order{
		UserID:    userID,
		CreatedAt: time.Now(),
		Status:    models.StatusPending,
		Address:   address,
		Phone:     phone,
		Notes:     notes,
	}
}
