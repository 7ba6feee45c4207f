package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusRefunded:
		return true
	}
	return false
}

// Terminal statuses accept no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRefunded
}

// CanTransition reports whether the lifecycle allows from -> to.
// Only pending orders move, and nothing moves back into pending.
func CanTransition(from, to OrderStatus) bool {
	if from != OrderStatusPending {
		return false
	}
	return to == OrderStatusCompleted || to == OrderStatusRefunded
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	BuyerEmail  string          `json:"buyer_email"`
	BuyerName   string          `json:"buyer_name"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewPendingOrder builds a pending order from a staged line for buyer.
func NewPendingOrder(buyer Identity, line CartLine, now time.Time) Order {
	return Order{
		ID:          uuid.New(),
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		TotalPrice:  line.LineTotal(),
		BuyerEmail:  buyer.Email,
		BuyerName:   buyer.Name,
		Status:      OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// OrderFilter narrows ListOrders. Zero values match everything.
type OrderFilter struct {
	BuyerEmail string
	Status     OrderStatus
}

func (f OrderFilter) Match(o Order) bool {
	if f.BuyerEmail != "" && o.BuyerEmail != f.BuyerEmail {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
