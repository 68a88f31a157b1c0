package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-orders/internal/models"
)

// CreateOrder writes the order header and all its lines in one transaction.
// On success the order's ID, line IDs and creation timestamp are filled in;
// on failure nothing is committed.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	headerQuery := `
		INSERT INTO orders (user_id, status, total, shipping_address, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := tx.QueryRowxContext(ctx, headerQuery,
		order.UserID, order.Status, order.Total, order.Address, order.Phone, order.Notes)
	if err := row.Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order header: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (order_id, product_id, name_snapshot, size, qty, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		err := tx.QueryRowxContext(ctx, lineQuery,
			line.OrderID, line.ProductID, line.Name, line.Size, line.Quantity, line.UnitPrice,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with its lines.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadLines(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUser retrieves a user's orders with lines, most recent first.
func (s *Store) GetOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := s.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetOrders retrieves all orders with lines, most recent first, optionally
// filtered by status.
func (s *Store) GetOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	var err error

	if status != "" {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC", status)
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := s.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus persists a new status for the order.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

func (s *Store) loadLines(ctx context.Context, order *models.Order) error {
	return s.db.SelectContext(ctx, &order.Lines,
		"SELECT * FROM order_lines WHERE order_id = $1 ORDER BY id", order.ID)
}
