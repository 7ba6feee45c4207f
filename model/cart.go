package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a staged order line. Name and price are snapshots taken when
// the shopper added the product.
type CartLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
