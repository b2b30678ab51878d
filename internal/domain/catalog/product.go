// Package catalog holds the product catalog records.
package catalog

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the sale status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a catalog item. Stock and serial counts are computed by the server.
type Product struct {
	ID             shared.ID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	CategoryID     shared.ID       `json:"category_id,omitempty"`
	CategoryName   string          `json:"category_name,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	Stock          int64           `json:"stock"`
	SerialCount    int64           `json:"serial_count"`
	WarrantyMonths int             `json:"warranty_months"`
	HasSerial      bool            `json:"has_serial"`
	Status         ProductStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RecordID returns the product id
func (p Product) RecordID() string { return p.ID.String() }

// RecordStatus returns the product status
func (p Product) RecordStatus() string { return string(p.Status) }

// DependentCount returns the number of serials registered for the product
func (p Product) DependentCount() int64 { return p.SerialCount }

// Margin returns the gross margin per unit
func (p Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.CostPrice)
}

// MarginPercent returns the margin as a percentage of the price, rounded to 2 places
func (p Product) MarginPercent() decimal.Decimal {
	if p.Price.IsZero() {
		return decimal.Zero
	}
	return p.Margin().Div(p.Price).Mul(decimal.NewFromInt(100)).Round(2)
}

// StockValue returns stock on hand valued at cost
func (p Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(p.Stock))
}

// ProductDeletePolicy rejects deleting products that still have serials
var ProductDeletePolicy = shared.DeletePolicy{
	Resource:           "product",
	RejectIfDependents: true,
}

// ProductDraft is the create/update form for a product
type ProductDraft struct {
	SKU            string          `json:"sku" validate:"required,max=50"`
	Name           string          `json:"name" validate:"required,max=200"`
	CategoryID     shared.ID       `json:"category_id,omitempty"`
	Brand          string          `json:"brand,omitempty" validate:"max=100"`
	Unit           string          `json:"unit,omitempty" validate:"max=20"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	WarrantyMonths int             `json:"warranty_months" validate:"gte=0,lte=120"`
	HasSerial      bool            `json:"has_serial"`
	Status         ProductStatus   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
