package service

import (
	"context"
	"fmt"
	"time"

	"storefront-orders/internal/models"
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// CatalogService keeps product master records and their inventory documents
// in step: the relational row is the source of truth for name/price, the
// document store for per-size counts.
type CatalogService struct {
	catalog CatalogStore
	inv     InventoryStore
	locker  Locker
	logger  *zap.Logger
}

func NewCatalogService(catalog CatalogStore, inv InventoryStore, locker Locker) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		inv:     inv,
		locker:  locker,
		logger:  util.GetLogger(),
	}
}

// StandardSizes are the size labels a new product's inventory document starts
// with.
var StandardSizes = []string{"S", "M", "L", "XL"}

// CreateProduct inserts the catalog row and creates the product's inventory
// document. A nil counts map starts every standard size at zero.
func (cs *CatalogService) CreateProduct(ctx context.Context, product *models.Product, counts map[string]int) error {
	if err := cs.catalog.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if counts == nil {
		counts = make(map[string]int, len(StandardSizes))
		for _, size := range StandardSizes {
			counts[size] = 0
		}
	}

	if err := cs.inv.InitInventory(ctx, product.ID, counts); err != nil {
		// The row is committed; the missing document reads as zero stock
		// until the next sync repairs it.
		return fmt.Errorf("product %d created but inventory init failed: %w", product.ID, err)
	}
	return nil
}

// GetProduct returns the product with its current inventory document.
func (cs *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, *models.Inventory, error) {
	product, err := cs.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	counts, err := cs.inv.GetInventory(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory for product %d: %w", productID, err)
	}

	return product, &models.Inventory{ProductID: productID, Counts: counts}, nil
}

// SyncInventory ensures every active product has an inventory document,
// creating zeroed ones where missing. An advisory lock keeps concurrent
// replicas from running the sweep at the same time.
func (cs *CatalogService) SyncInventory(ctx context.Context) error {
	const lockKey = "inventory-sync"

	acquired, err := cs.locker.AcquireLock(ctx, lockKey, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !acquired {
		cs.logger.Info("Inventory sync already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := cs.locker.ReleaseLock(ctx, lockKey); err != nil {
			cs.logger.Error("Failed to release sync lock", zap.Error(err))
		}
	}()

	products, err := cs.catalog.GetProducts(ctx, "", true)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	created := 0
	for i := range products {
		counts, err := cs.inv.GetInventory(ctx, products[i].ID)
		if err != nil {
			cs.logger.Error("Failed to read inventory during sync",
				zap.Int64("product_id", products[i].ID),
				zap.Error(err))
			continue
		}
		if len(counts) > 0 {
			continue
		}

		zeroed := make(map[string]int, len(StandardSizes))
		for _, size := range StandardSizes {
			zeroed[size] = 0
		}
		if err := cs.inv.InitInventory(ctx, products[i].ID, zeroed); err != nil {
			cs.logger.Error("Failed to create inventory document during sync",
				zap.Int64("product_id", products[i].ID),
				zap.Error(err))
			continue
		}
		created++
	}

	cs.logger.Info("Inventory sync completed",
		zap.Int("products", len(products)),
		zap.Int("documents_created", created))
	return nil
}
