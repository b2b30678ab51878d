// Package inventory holds serial-number tracking records.
package inventory

import (
	"slices"
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SerialStatus represents the lifecycle state of a serialized unit
type SerialStatus string

const (
	SerialStatusInStock   SerialStatus = "in_stock"
	SerialStatusSold      SerialStatus = "sold"
	SerialStatusWarranty  SerialStatus = "warranty" // Currently at the service desk
	SerialStatusDefective SerialStatus = "defective"
	SerialStatusReturned  SerialStatus = "returned"
)

// SerialStatuses returns every serial status in display order
func SerialStatuses() []SerialStatus {
	return []SerialStatus{
		SerialStatusInStock,
		SerialStatusSold,
		SerialStatusWarranty,
		SerialStatusDefective,
		SerialStatusReturned,
	}
}

// IsValid reports whether s is a known serial status
func (s SerialStatus) IsValid() bool {
	return slices.Contains(SerialStatuses(), s)
}

// SerialNumber is one tracked unit of a serialized product.
// Product, branch and customer names are joined in by the server.
type SerialNumber struct {
	ID           shared.ID       `json:"id"`
	SerialNumber string          `json:"serial_number"`
	ProductID    shared.ID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSKU   string          `json:"product_sku,omitempty"`
	BranchID     shared.ID       `json:"branch_id,omitempty"`
	BranchName   string          `json:"branch_name,omitempty"`
	OrderID      shared.ID       `json:"order_id,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	Status       SerialStatus    `json:"status"`
	ImportPrice  decimal.Decimal `json:"import_price"`
	SoldAt       *time.Time      `json:"sold_at,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RecordID returns the serial record id
func (s SerialNumber) RecordID() string { return s.ID.String() }

// RecordStatus returns the serial status
func (s SerialNumber) RecordStatus() string { return string(s.Status) }

// IsInStock returns true if the unit has not left the shop
func (s SerialNumber) IsInStock() bool {
	return s.Status == SerialStatusInStock
}

// SerialDeletePolicy only permits deleting units that are still in stock
var SerialDeletePolicy = shared.DeletePolicy{
	Resource:        "serial number",
	AllowedStatuses: []string{string(SerialStatusInStock)},
}

// SerialDraft is the create/update form for a serial number
type SerialDraft struct {
	SerialNumber string          `json:"serial_number" validate:"required,max=100"`
	ProductID    shared.ID       `json:"product_id" validate:"required"`
	BranchID     shared.ID       `json:"branch_id,omitempty"`
	Status       SerialStatus    `json:"status,omitempty" validate:"omitempty,oneof=in_stock sold warranty defective returned"`
	ImportPrice  decimal.Decimal `json:"import_price"`
	Notes        string          `json:"notes,omitempty" validate:"max=500"`
}

// DraftFromSerial builds an edit draft pre-filled from an existing serial
func DraftFromSerial(s SerialNumber) SerialDraft {
	return SerialDraft{
		SerialNumber: s.SerialNumber,
		ProductID:    s.ProductID,
		BranchID:     s.BranchID,
		Status:       s.Status,
		ImportPrice:  s.ImportPrice,
		Notes:        s.Notes,
	}
}
