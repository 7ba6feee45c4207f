package service

import (
	"context"
	"fmt"

	"storefront-orders/model"
	"storefront-orders/notify"

	"github.com/google/uuid"
)

func (s *Service) GetOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error) {
	if !who.Authenticated() {
		return model.Order{}, fmt.Errorf("sign-in required: %w", model.ErrForbidden)
	}
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	if !who.IsAdmin() && o.BuyerEmail != who.Email {
		return model.Order{}, fmt.Errorf("order %s belongs to another buyer: %w", id, model.ErrForbidden)
	}
	return o, nil
}

// ListOrders returns every order for an admin and only the caller's own
// orders otherwise, newest first.
func (s *Service) ListOrders(ctx context.Context, who model.Identity, status model.OrderStatus) ([]model.Order, error) {
	if !who.Authenticated() {
		return nil, fmt.Errorf("sign-in required: %w", model.ErrForbidden)
	}
	if status != "" && !status.Valid() {
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	filter := model.OrderFilter{Status: status}
	if !who.IsAdmin() {
		filter.BuyerEmail = who.Email
	}
	return s.store.ListOrders(ctx, filter)
}

// ConfirmOrder completes a pending order and takes its quantity off the
// shelf in the same unit. On a shortage the order stays pending.
func (s *Service) ConfirmOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error) {
	if err := requireAdmin(who); err != nil {
		return model.Order{}, err
	}
	o, err := s.store.ConfirmOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	s.logger.Info("order confirmed", "order_id", o.ID, "product_id", o.ProductID, "quantity", o.Quantity)
	s.notifier.Dispatch(o, notify.KindConfirmed)
	return o, nil
}

// RefundOrder cancels a pending order. Pending orders hold no stock, so
// nothing is returned to the shelf.
func (s *Service) RefundOrder(ctx context.Context, who model.Identity, id uuid.UUID) (model.Order, error) {
	if !who.Authenticated() {
		return model.Order{}, fmt.Errorf("sign-in required: %w", model.ErrForbidden)
	}
	if !who.IsAdmin() {
		current, err := s.store.GetOrder(ctx, id)
		if err != nil {
			return model.Order{}, err
		}
		if current.BuyerEmail != who.Email {
			return model.Order{}, fmt.Errorf("order %s belongs to another buyer: %w", id, model.ErrForbidden)
		}
	}
	o, err := s.store.RefundOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	s.logger.Info("order refunded", "order_id", o.ID, "by", who.Email)
	s.notifier.Dispatch(o, notify.KindRefunded)
	return o, nil
}

// DeleteOrder removes the order record. Stock is not touched.
func (s *Service) DeleteOrder(ctx context.Context, who model.Identity, id uuid.UUID) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.logger.Info("order deleted", "order_id", id)
	return nil
}
