package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-orders/cart"
	"storefront-orders/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddToCart snapshots the product's name and price into the session cart.
// Stock is not checked while staging.
func (s *Service) AddToCart(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error {
	if sessionID == "" {
		return &model.ValidationError{Field: "session", Reason: "is required"}
	}
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	line := model.CartLine{ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: qty}
	return s.carts.Update(ctx, sessionID, func(c *cart.Cart) error {
		return c.Add(line)
	})
}

func (s *Service) UpdateCartQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error {
	if sessionID == "" {
		return &model.ValidationError{Field: "session", Reason: "is required"}
	}
	return s.carts.Update(ctx, sessionID, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, qty)
	})
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID uuid.UUID) error {
	if sessionID == "" {
		return &model.ValidationError{Field: "session", Reason: "is required"}
	}
	return s.carts.Update(ctx, sessionID, func(c *cart.Cart) error {
		if !c.Remove(productID) {
			return fmt.Errorf("cart line %s: %w", productID, model.ErrNotFound)
		}
		return nil
	})
}

func (s *Service) GetCart(ctx context.Context, sessionID string) ([]model.CartLine, decimal.Decimal, error) {
	if sessionID == "" {
		return nil, decimal.Zero, &model.ValidationError{Field: "session", Reason: "is required"}
	}
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return c.List(), c.Total(), nil
}

// Checkout commits the session cart and empties it once the orders exist.
// A failed commit leaves the cart as it was.
func (s *Service) Checkout(ctx context.Context, buyer model.Identity, sessionID string) ([]model.Order, error) {
	if sessionID == "" {
		return nil, &model.ValidationError{Field: "session", Reason: "is required"}
	}
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	orders, err := s.Commit(ctx, buyer, c.List())
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		// the orders are already written; a stale cart is only a nuisance
		s.logger.Warn("failed to clear cart after checkout", "session", sessionID, "error", err)
	}
	return orders, nil
}

// Commit turns staged lines into pending orders, one per line, written in
// a single unit. Availability is checked per product against the summed
// request but nothing is reserved; the hard reservation happens on confirm.
func (s *Service) Commit(ctx context.Context, buyer model.Identity, lines []model.CartLine) ([]model.Order, error) {
	if !buyer.Authenticated() {
		return nil, fmt.Errorf("checkout requires a signed-in buyer: %w", model.ErrForbidden)
	}
	if len(lines) == 0 {
		return nil, &model.ValidationError{Field: "cart", Reason: "is empty"}
	}

	var order []uuid.UUID
	requested := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "must be > 0"}
		}
		if _, seen := requested[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		requested[l.ProductID] += l.Quantity
	}

	for _, id := range order {
		available, err := s.store.GetAvailable(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return nil, &model.ValidationError{Field: "product_id", Reason: fmt.Sprintf("unknown product %s", id)}
		}
		if err != nil {
			return nil, err
		}
		if requested[id] > available {
			return nil, &model.StockError{ProductID: id, Requested: requested[id], Available: available}
		}
	}

	now := s.now()
	orders := make([]model.Order, 0, len(lines))
	for _, l := range lines {
		orders = append(orders, model.NewPendingOrder(buyer, l, now))
	}
	if err := s.store.InsertOrders(ctx, orders); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// discontinued after the availability read
			return nil, &model.ValidationError{Field: "product_id", Reason: err.Error()}
		}
		return nil, model.Persistence("insert orders", err)
	}

	s.logger.Info("checkout committed", "buyer", buyer.Email, "orders", len(orders))
	return orders, nil
}
