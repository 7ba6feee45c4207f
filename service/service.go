package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront-orders/cart"
	"storefront-orders/model"
	"storefront-orders/notify"
	"storefront-orders/store"

	"github.com/google/uuid"
)

type Service struct {
	store    store.Store
	carts    cart.Storage
	notifier *notify.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(s store.Store, carts cart.Storage, notifier *notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		store:    s,
		carts:    carts,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func requireAdmin(who model.Identity) error {
	if !who.IsAdmin() {
		return fmt.Errorf("admin role required: %w", model.ErrForbidden)
	}
	return nil
}

// CreateProduct starts the product with current_stock equal to stock.
func (s *Service) CreateProduct(ctx context.Context, who model.Identity, p model.Product) (model.Product, error) {
	if err := requireAdmin(who); err != nil {
		return model.Product{}, err
	}
	p.ID = uuid.New()
	p.CurrentStock = p.Stock
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return model.Product{}, err
	}
	s.logger.Info("product created", "product_id", created.ID, "stock", created.Stock)
	return created, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.store.ListProducts(ctx)
}

// UpdateProduct edits an existing product. Fields left nil in u keep
// their stored values.
func (s *Service) UpdateProduct(ctx context.Context, who model.Identity, id uuid.UUID, u model.ProductUpdate) (model.Product, error) {
	if err := requireAdmin(who); err != nil {
		return model.Product{}, err
	}
	if err := u.Validate(); err != nil {
		return model.Product{}, err
	}
	p, err := s.store.UpdateProduct(ctx, id, u)
	if err != nil {
		return model.Product{}, err
	}
	s.logger.Info("product updated", "product_id", p.ID, "stock", p.Stock, "current_stock", p.CurrentStock)
	return p, nil
}

// RestockProduct returns units to the shelf through the ledger. The result
// never exceeds the product's stock.
func (s *Service) RestockProduct(ctx context.Context, who model.Identity, id uuid.UUID, quantity int) (int, error) {
	if err := requireAdmin(who); err != nil {
		return 0, err
	}
	current, err := s.store.Restore(ctx, id, quantity)
	if err != nil {
		return 0, err
	}
	s.logger.Info("product restocked", "product_id", id, "quantity", quantity, "current_stock", current)
	return current, nil
}

func (s *Service) DiscontinueProduct(ctx context.Context, who model.Identity, id uuid.UUID) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product discontinued", "product_id", id)
	return nil
}
