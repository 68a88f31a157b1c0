package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

//go:embed scripts/increment_stock.lua
var incrementStockScript string

// ErrInsufficientStock is returned when a conditional decrement finds fewer
// units than requested. The document is left untouched in that case.
var ErrInsufficientStock = errors.New("insufficient stock")

// Client wraps the Redis connection holding the per-product inventory
// documents: one hash per product, one field per size.
type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
	incrementScript *redis.Script
}

// NewClient creates a client with the stock scripts loaded.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:             rdb,
		decrementScript: redis.NewScript(decrementStockScript),
		incrementScript: redis.NewScript(incrementStockScript),
	}, nil
}

// GetClient returns the underlying Redis client.
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func inventoryKey(productID int64) string {
	return fmt.Sprintf("inventory:%d", productID)
}

// DecrementStock atomically decrements the size count if and only if the
// current count covers qty. Returns the remaining count on success and
// ErrInsufficientStock when the condition fails; the check and the write run
// as one script, so concurrent callers cannot both pass on the same stock.
func (c *Client) DecrementStock(ctx context.Context, productID int64, size string, qty int) (int, error) {
	result, err := c.decrementScript.Run(ctx, c.rdb, []string{inventoryKey(productID)}, size, qty).Result()
	if err != nil {
		return 0, fmt.Errorf("decrement stock script failed: %w", err)
	}

	remaining, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type %T", result)
	}
	if remaining < 0 {
		return 0, ErrInsufficientStock
	}
	return int(remaining), nil
}

// IncrementStock adds qty units back to the size count, creating the field
// when absent.
func (c *Client) IncrementStock(ctx context.Context, productID int64, size string, qty int) error {
	_, err := c.incrementScript.Run(ctx, c.rdb, []string{inventoryKey(productID)}, size, qty).Result()
	if err != nil {
		return fmt.Errorf("increment stock script failed: %w", err)
	}
	return nil
}

// GetInventory retrieves the full size-to-count document for a product. A
// missing document yields an empty map, not an error: absent means zero stock.
func (c *Client) GetInventory(ctx context.Context, productID int64) (map[string]int, error) {
	result, err := c.rdb.HGetAll(ctx, inventoryKey(productID)).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(result))
	for size, raw := range result {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt inventory count for product %d size %s: %w", productID, size, err)
		}
		counts[size] = n
	}
	return counts, nil
}

// InitInventory replaces the inventory document for a product with the given
// size counts.
func (c *Client) InitInventory(ctx context.Context, productID int64, counts map[string]int) error {
	key := inventoryKey(productID)

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for size, count := range counts {
		pipe.HSet(ctx, key, size, count)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// AcquireLock acquires an advisory lock, e.g. around inventory sync.
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases an advisory lock.
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
