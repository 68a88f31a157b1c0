package service

import (
	"context"
	"time"

	"storefront-orders/internal/models"
)

// Store handles are constructed once at process start and passed in by
// reference; nothing in this package reaches for globals.

// OrderStore is the relational side: order headers and lines, written in a
// single transaction per order.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

// InventoryStore is the document side: one size-to-count document per
// product. DecrementStock must be a single conditional write that fails
// without mutating when the count does not cover qty.
type InventoryStore interface {
	GetInventory(ctx context.Context, productID int64) (map[string]int, error)
	DecrementStock(ctx context.Context, productID int64, size string, qty int) (int, error)
	IncrementStock(ctx context.Context, productID int64, size string, qty int) error
	InitInventory(ctx context.Context, productID int64, counts map[string]int) error
}

// CatalogStore exposes the product master records.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context, category string, activeOnly bool) ([]models.Product, error)
}

// UserStore exposes user profiles for contact defaulting and notification
// addressing.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Locker provides advisory locks for operations that must not run twice
// concurrently, such as inventory sync.
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}
