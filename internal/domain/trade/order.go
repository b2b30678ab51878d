package trade

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod represents how a sales order was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Order is a POS sales order
type Order struct {
	ID            shared.ID       `json:"id"`
	OrderCode     string          `json:"order_code"`
	CustomerID    shared.ID       `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	BranchID      shared.ID       `json:"branch_id"`
	BranchName    string          `json:"branch_name,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Discount      decimal.Decimal `json:"discount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordID returns the order id
func (o Order) RecordID() string { return o.ID.String() }

// RecordStatus returns the order status
func (o Order) RecordStatus() string { return string(o.Status) }

// Outstanding returns what the customer still owes, never negative
func (o Order) Outstanding() decimal.Decimal {
	due := o.TotalAmount.Sub(o.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// OrderDeletePolicy permits deleting orders that were never fulfilled
var OrderDeletePolicy = shared.DeletePolicy{
	Resource:        "order",
	AllowedStatuses: []string{string(OrderStatusPending), string(OrderStatusCancelled)},
}

// OrderDraft is the create/update form for a sales order
type OrderDraft struct {
	CustomerID    shared.ID       `json:"customer_id,omitempty"`
	BranchID      shared.ID       `json:"branch_id" validate:"required"`
	Items         []OrderItem     `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Status        OrderStatus     `json:"status,omitempty" validate:"omitempty,oneof=pending processing completed cancelled"`
	Note          string          `json:"note,omitempty" validate:"max=500"`
}

// Total returns the draft total after the order-level discount
func (d OrderDraft) Total() decimal.Decimal {
	return SumLines(d.Items).Sub(d.Discount)
}
