package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront-orders/model"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store. A single mutex makes every
// operation atomic, which gives the same compare-and-set semantics as the
// conditional statements in PostgresStore.
type MemoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	orders   map[uuid.UUID]model.Order
	now      func() time.Time

	// FailInsertAfter makes InsertOrders fail once this many orders of a
	// batch were staged. Zero disables it.
	FailInsertAfter int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: map[uuid.UUID]model.Product{},
		orders:   map[uuid.UUID]model.Order{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CurrentStock = p.Stock
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return model.Product{}, model.Persistence("insert product", fmt.Errorf("duplicate id %s", p.ID))
	}
	p.CreatedAt = s.now()
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id uuid.UUID, u model.ProductUpdate) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	p, err := u.Apply(cur)
	if err != nil {
		return model.Product{}, err
	}
	s.products[id] = p
	return p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	for _, o := range s.orders {
		if o.ProductID == id && o.Status == model.OrderStatusPending {
			return fmt.Errorf("product %s has pending orders: %w", id, model.ErrStateConflict)
		}
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) GetAvailable(_ context.Context, productID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	return p.CurrentStock, nil
}

func (s *MemoryStore) TryReserve(_ context.Context, productID uuid.UUID, quantity int) (int, error) {
	if err := validQuantity(quantity); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserveLocked(productID, quantity)
}

func (s *MemoryStore) reserveLocked(productID uuid.UUID, quantity int) (int, error) {
	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	if p.CurrentStock < quantity {
		return 0, &model.StockError{ProductID: productID, Requested: quantity, Available: p.CurrentStock}
	}
	p.CurrentStock -= quantity
	s.products[productID] = p
	return p.CurrentStock, nil
}

func (s *MemoryStore) Restore(_ context.Context, productID uuid.UUID, quantity int) (int, error) {
	if err := validQuantity(quantity); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	p.CurrentStock = min(p.Stock, p.CurrentStock+quantity)
	s.products[productID] = p
	return p.CurrentStock, nil
}

func (s *MemoryStore) InsertOrders(_ context.Context, orders []model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := make(map[uuid.UUID]model.Order, len(orders))
	for i, o := range orders {
		if s.FailInsertAfter > 0 && i >= s.FailInsertAfter {
			return model.Persistence("insert orders", fmt.Errorf("injected failure at row %d", i))
		}
		if _, dup := s.orders[o.ID]; dup {
			return model.Persistence("insert orders", fmt.Errorf("duplicate id %s", o.ID))
		}
		if _, dup := staged[o.ID]; dup {
			return model.Persistence("insert orders", fmt.Errorf("duplicate id %s", o.ID))
		}
		if _, ok := s.products[o.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", o.ProductID, model.ErrNotFound)
		}
		staged[o.ID] = o
	}
	for id, o := range staged {
		s.orders[id] = o
	}
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	return o, nil
}

func (s *MemoryStore) ListOrders(_ context.Context, filter model.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if filter.Match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ConfirmOrder checks the order status and the stock under one lock and
// applies both changes or neither.
func (s *MemoryStore) ConfirmOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.pendingLocked(id, model.OrderStatusCompleted)
	if err != nil {
		return model.Order{}, err
	}
	if _, err := s.reserveLocked(o.ProductID, o.Quantity); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatusCompleted
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return o, nil
}

func (s *MemoryStore) RefundOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.pendingLocked(id, model.OrderStatusRefunded)
	if err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatusRefunded
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return o, nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) pendingLocked(id uuid.UUID, want model.OrderStatus) (model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	if !model.CanTransition(o.Status, want) {
		return model.Order{}, &model.ConflictError{OrderID: id, Status: o.Status, Want: want}
	}
	return o, nil
}
