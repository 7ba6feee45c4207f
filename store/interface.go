package store

import (
	"context"

	"storefront-orders/model"

	"github.com/google/uuid"
)

// Ledger is the only path that mutates a product's current_stock. Every
// mutation is a single conditional update applied atomically by the store.
type Ledger interface {
	// GetAvailable is an advisory read; it holds nothing.
	GetAvailable(ctx context.Context, productID uuid.UUID) (int, error)
	// TryReserve decrements current_stock by quantity only if enough is
	// available, returning the new value. On shortage it returns a
	// *model.StockError and stock is unchanged.
	TryReserve(ctx context.Context, productID uuid.UUID, quantity int) (int, error)
	// Restore increments current_stock, clamped to stock.
	Restore(ctx context.Context, productID uuid.UUID, quantity int) (int, error)
}

type Store interface {
	Ledger

	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	// UpdateProduct applies u in one step; omitted fields keep their stored
	// values, so concurrent confirms are never overwritten by a stale read.
	UpdateProduct(ctx context.Context, id uuid.UUID, u model.ProductUpdate) (model.Product, error)
	// DeleteProduct refuses while pending orders reference the product.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// InsertOrders writes all orders or none. Every referenced product must
	// still exist when the write happens.
	InsertOrders(ctx context.Context, orders []model.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// ConfirmOrder moves a pending order to completed and reserves its
	// quantity in one transaction.
	ConfirmOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	// RefundOrder moves a pending order to refunded. Stock is not touched.
	RefundOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	Close() error
}
