package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-orders/internal/models"
	"storefront-orders/internal/redisclient"
	"storefront-orders/internal/store"
)

// fakeInventory is an in-memory InventoryStore with the same conditional
// decrement contract as the Redis client.
type fakeInventory struct {
	docs         map[int64]map[string]int
	failProducts map[int64]error // force DecrementStock errors per product
	getErr       error
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		docs:         make(map[int64]map[string]int),
		failProducts: make(map[int64]error),
	}
}

func (f *fakeInventory) GetInventory(_ context.Context, productID int64) (map[string]int, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	counts := make(map[string]int, len(f.docs[productID]))
	for size, n := range f.docs[productID] {
		counts[size] = n
	}
	return counts, nil
}

func (f *fakeInventory) DecrementStock(_ context.Context, productID int64, size string, qty int) (int, error) {
	if err := f.failProducts[productID]; err != nil {
		return 0, err
	}
	doc := f.docs[productID]
	if doc[size] < qty {
		return 0, redisclient.ErrInsufficientStock
	}
	doc[size] -= qty
	return doc[size], nil
}

func (f *fakeInventory) IncrementStock(_ context.Context, productID int64, size string, qty int) error {
	if f.docs[productID] == nil {
		f.docs[productID] = make(map[string]int)
	}
	f.docs[productID][size] += qty
	return nil
}

func (f *fakeInventory) InitInventory(_ context.Context, productID int64, counts map[string]int) error {
	doc := make(map[string]int, len(counts))
	for size, n := range counts {
		doc[size] = n
	}
	f.docs[productID] = doc
	return nil
}

func (f *fakeInventory) snapshot() map[int64]map[string]int {
	snap := make(map[int64]map[string]int, len(f.docs))
	for id, doc := range f.docs {
		copied := make(map[string]int, len(doc))
		for size, n := range doc {
			copied[size] = n
		}
		snap[id] = copied
	}
	return snap
}

// fakeOrders is an in-memory OrderStore.
type fakeOrders struct {
	orders    map[int64]*models.Order
	nextID    int64
	createErr error
	updateErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[int64]*models.Order), nextID: 1}
}

func cloneOrder(o *models.Order) *models.Order {
	clone := *o
	clone.Lines = append([]models.OrderLine(nil), o.Lines...)
	return &clone
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = f.nextID
	f.nextID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		order.Lines[i].ID = int64(i + 1)
	}
	f.orders[order.ID] = cloneOrder(order)
	return nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	return cloneOrder(order), nil
}

func (f *fakeOrders) GetOrdersByUser(_ context.Context, userID int64) ([]models.Order, error) {
	var result []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			result = append(result, *cloneOrder(order))
		}
	}
	sortByRecency(result)
	return result, nil
}

func (f *fakeOrders) GetOrders(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	var result []models.Order
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			result = append(result, *cloneOrder(order))
		}
	}
	sortByRecency(result)
	return result, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, orderID int64, status models.OrderStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	order.Status = status
	return nil
}

func sortByRecency(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// fakeCatalog is an in-memory CatalogStore.
type fakeCatalog struct {
	products map[int64]*models.Product
	nextID   int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[int64]*models.Product), nextID: 1}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, product *models.Product) error {
	product.ID = f.nextID
	f.nextID++
	product.CreatedAt = time.Now()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCatalog) GetProducts(_ context.Context, category string, activeOnly bool) ([]models.Product, error) {
	var result []models.Product
	for _, product := range f.products {
		if activeOnly && !product.Active {
			continue
		}
		if category != "" && product.Category != category {
			continue
		}
		result = append(result, *product)
	}
	return result, nil
}

// fakeLocker always grants the lock unless told otherwise.
type fakeLocker struct {
	denied   bool
	acquired int
	released int
}

func (f *fakeLocker) AcquireLock(context.Context, string, time.Duration) (bool, error) {
	if f.denied {
		return false, nil
	}
	f.acquired++
	return true, nil
}

func (f *fakeLocker) ReleaseLock(context.Context, string) error {
	f.released++
	return nil
}
