package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CurrentStock int             `json:"current_stock"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Validate checks the fields an admin may set, including 0 <= current_stock <= stock.
func (p Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must be >= 0"}
	}
	if p.CurrentStock < 0 {
		return &ValidationError{Field: "current_stock", Reason: "must be >= 0"}
	}
	if p.CurrentStock > p.Stock {
		return &ValidationError{Field: "current_stock", Reason: "must not exceed stock"}
	}
	return nil
}

// ProductUpdate carries an admin edit. Nil fields keep their stored value.
// An omitted CurrentStock keeps the shelf count, clamped to the new stock.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	CurrentStock *int
}

func (u ProductUpdate) Validate() error {
	if u.Name != nil && *u.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if u.Price != nil && u.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if u.Stock != nil && *u.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must be >= 0"}
	}
	if u.CurrentStock != nil && *u.CurrentStock < 0 {
		return &ValidationError{Field: "current_stock", Reason: "must be >= 0"}
	}
	if u.Stock != nil && u.CurrentStock != nil && *u.CurrentStock > *u.Stock {
		return &ValidationError{Field: "current_stock", Reason: "must not exceed stock"}
	}
	return nil
}

// Apply returns p with the update applied, checking the stock invariant
// against the merged result.
func (u ProductUpdate) Apply(p Product) (Product, error) {
	if err := u.Validate(); err != nil {
		return Product{}, err
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.CurrentStock != nil {
		p.CurrentStock = *u.CurrentStock
	} else {
		p.CurrentStock = min(p.CurrentStock, p.Stock)
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}
