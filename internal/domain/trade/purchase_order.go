package trade

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// PurchaseOrder is a stock purchase from a distributor
type PurchaseOrder struct {
	ID              shared.ID           `json:"id"`
	Code            string              `json:"code"`
	DistributorID   shared.ID           `json:"distributor_id"`
	DistributorName string              `json:"distributor_name,omitempty"`
	BranchID        shared.ID           `json:"branch_id"`
	BranchName      string              `json:"branch_name,omitempty"`
	Items           []OrderItem         `json:"items,omitempty"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	Status          PurchaseOrderStatus `json:"status"`
	ExpectedDate    *time.Time          `json:"expected_date,omitempty"`
	ReceivedAt      *time.Time          `json:"received_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// RecordID returns the purchase order id
func (p PurchaseOrder) RecordID() string { return p.ID.String() }

// RecordStatus returns the purchase order status
func (p PurchaseOrder) RecordStatus() string { return string(p.Status) }

// Debt returns the unpaid amount of a received purchase
func (p PurchaseOrder) Debt() decimal.Decimal {
	if p.Status != PurchaseOrderStatusReceived {
		return decimal.Zero
	}
	return p.TotalAmount.Sub(p.PaidAmount)
}

// PurchaseOrderDeletePolicy only permits deleting drafts
var PurchaseOrderDeletePolicy = shared.DeletePolicy{
	Resource:        "purchase order",
	AllowedStatuses: []string{string(PurchaseOrderStatusDraft)},
}

// PurchaseOrderDraft is the create/update form for a purchase order
type PurchaseOrderDraft struct {
	DistributorID shared.ID           `json:"distributor_id" validate:"required"`
	BranchID      shared.ID           `json:"branch_id" validate:"required"`
	Items         []OrderItem         `json:"items" validate:"required,min=1,dive"`
	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	ExpectedDate  string              `json:"expected_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status        PurchaseOrderStatus `json:"status,omitempty" validate:"omitempty,oneof=draft ordered received cancelled"`
}
