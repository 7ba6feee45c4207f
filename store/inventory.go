package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-orders/model"

	"github.com/google/uuid"
)

const (
	availableSQL = `SELECT current_stock FROM products WHERE id = $1`

	// The precondition lives in the WHERE clause so check and decrement are
	// one statement; concurrent callers serialize on the row lock.
	reserveSQL = `UPDATE products SET current_stock = current_stock - $1 WHERE id = $2 AND current_stock >= $1 RETURNING current_stock`

	restoreSQL = `UPDATE products SET current_stock = LEAST(stock, current_stock + $1) WHERE id = $2 RETURNING current_stock`
)

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func validQuantity(quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must be > 0"}
	}
	return nil
}

// GetAvailable returns current_stock for a product.
func (s *PostgresStore) GetAvailable(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := s.DB.QueryRowContext(ctx, availableSQL, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	if err != nil {
		return 0, model.Persistence("read available stock", err)
	}
	return stock, nil
}

func (s *PostgresStore) TryReserve(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	if err := validQuantity(quantity); err != nil {
		return 0, err
	}
	remaining, err := reserve(ctx, s.DB, productID, quantity)
	return remaining, model.Persistence("reserve stock", err)
}

func (s *PostgresStore) Restore(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	if err := validQuantity(quantity); err != nil {
		return 0, err
	}
	var stock int
	err := s.DB.QueryRowContext(ctx, restoreSQL, quantity, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	if err != nil {
		return 0, model.Persistence("restore stock", err)
	}
	return stock, nil
}

// reserve runs the conditional decrement on q. When no row matched, a
// read-only lookup tells a missing product apart from a shortage.
func reserve(ctx context.Context, q queryRower, productID uuid.UUID, quantity int) (int, error) {
	var remaining int
	err := q.QueryRowContext(ctx, reserveSQL, quantity, productID).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var available int
	err = q.QueryRowContext(ctx, availableSQL, productID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return 0, &model.StockError{ProductID: productID, Requested: quantity, Available: available}
}
