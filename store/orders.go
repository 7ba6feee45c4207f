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
	orderColumns = `id, product_id, product_name, quantity, unit_price, total_price, buyer_email, buyer_name, status, created_at, updated_at`

	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	selectOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersSQL  = `SELECT ` + orderColumns + ` FROM orders WHERE ($1 = '' OR buyer_email = $1) AND ($2 = '' OR status = $2) ORDER BY created_at DESC`
	orderStatusSQL = `SELECT status FROM orders WHERE id = $1`
	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	// Status compare-and-set: only a pending row is moved.
	transitionOrderSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 AND status = 'pending' RETURNING ` + orderColumns
)

func scanOrder(r rowScanner) (model.Order, error) {
	var o model.Order
	err := r.Scan(
		&o.ID,
		&o.ProductID,
		&o.ProductName,
		&o.Quantity,
		&o.UnitPrice,
		&o.TotalPrice,
		&o.BuyerEmail,
		&o.BuyerName,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// InsertOrders writes every order in one transaction. Each referenced
// product is share-locked first, so a concurrent DeleteProduct either runs
// before (and the insert fails) or waits and then sees the pending orders.
func (s *PostgresStore) InsertOrders(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked := make(map[uuid.UUID]bool, len(orders))
		for _, o := range orders {
			if locked[o.ProductID] {
				continue
			}
			var id uuid.UUID
			err := tx.QueryRowContext(ctx, shareProductSQL, o.ProductID).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %s: %w", o.ProductID, model.ErrNotFound)
			}
			if err != nil {
				return err
			}
			locked[o.ProductID] = true
		}

		stmt, err := tx.PrepareContext(ctx, insertOrderSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range orders {
			if _, err := stmt.ExecContext(ctx,
				o.ID, o.ProductID, o.ProductName, o.Quantity, o.UnitPrice, o.TotalPrice,
				o.BuyerEmail, o.BuyerName, string(o.Status), o.CreatedAt, o.UpdatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return model.Persistence("insert orders", err)
}

func (s *PostgresStore) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, selectOrderSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Order{}, model.Persistence("get order", err)
	}
	return o, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	rows, err := s.DB.QueryContext(ctx, listOrdersSQL, filter.BuyerEmail, string(filter.Status))
	if err != nil {
		return nil, model.Persistence("list orders", err)
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, model.Persistence("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence("list orders", err)
	}
	return out, nil
}

// ConfirmOrder marks the order completed and decrements stock in the same
// transaction. If either statement matches nothing the transaction is rolled
// back, so stock and status never diverge.
func (s *PostgresStore) ConfirmOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	var confirmed model.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		o, err := scanOrder(tx.QueryRowContext(ctx, transitionOrderSQL, id, string(model.OrderStatusCompleted)))
		if errors.Is(err, sql.ErrNoRows) {
			return transitionConflict(ctx, tx, id, model.OrderStatusCompleted)
		}
		if err != nil {
			return err
		}
		if _, err := reserve(ctx, tx, o.ProductID, o.Quantity); err != nil {
			return err
		}
		confirmed = o
		return nil
	})
	if err != nil {
		return model.Order{}, model.Persistence("confirm order", err)
	}
	return confirmed, nil
}

func (s *PostgresStore) RefundOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, transitionOrderSQL, id, string(model.OrderStatusRefunded)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, model.Persistence("refund order",
			transitionConflict(ctx, s.DB, id, model.OrderStatusRefunded))
	}
	if err != nil {
		return model.Order{}, model.Persistence("refund order", err)
	}
	return o, nil
}

// DeleteOrder removes the row. It never touches stock.
func (s *PostgresStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx, deleteOrderSQL, id)
	if err != nil {
		return model.Persistence("delete order", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return model.Persistence("delete order", err)
	}
	if ra == 0 {
		return fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// transitionConflict explains why a status compare-and-set matched no row.
func transitionConflict(ctx context.Context, q queryRower, id uuid.UUID, want model.OrderStatus) error {
	var status model.OrderStatus
	err := q.QueryRowContext(ctx, orderStatusSQL, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return &model.ConflictError{OrderID: id, Status: status, Want: want}
}
