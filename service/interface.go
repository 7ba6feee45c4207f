package service

import (
	"context"

	"storefront-orders/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	CreateProduct(ctx context.Context, who model.Identity, p model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, who model.Identity, id uuid.UUID, u model.ProductUpdate) (model.Product, error)
	RestockProduct(ctx context.Context, who model.Identity, id uuid.UUID, quantity int) (int, error)
	DiscontinueProduct(ctx context.Context, who model.Identity, id uuid.UUID) error

	AddToCart(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error
	UpdateCartQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error
	RemoveFromCart(ctx context.Context, sessionID string, productID uuid.UUID) error
	GetCart(ctx context.Context, sessionID string) ([]model.CartLine, decimal.Decimal, error)
	Checkout(ctx context.Context, buyer model.Identity, sessionID string) ([]model.Order, error)

	GetOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, who model.Identity, status model.OrderStatus) ([]model.Order, error)
	ConfirmOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error)
	RefundOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error)
	DeleteOrder(ctx context.Context, who model.Identity, id uuid.UUID) error
}
