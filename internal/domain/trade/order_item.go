// Package trade holds sales (POS) orders and purchase orders.
package trade

import (
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderItem is one product line of a sales or purchase order
type OrderItem struct {
	ProductID     shared.ID       `json:"product_id" validate:"required"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int64           `json:"quantity" validate:"gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}

// LineTotal returns quantity * unit price minus the line discount
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity)).Sub(i.Discount)
}

// SumLines totals every line of an order
func SumLines(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
