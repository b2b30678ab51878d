// Package partner holds customers, branches and distributors.
package partner

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusBlocked  CustomerStatus = "blocked"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// Customer is a retail or business buyer
type Customer struct {
	ID         shared.ID       `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email,omitempty"`
	Address    string          `json:"address,omitempty"`
	Type       CustomerType    `json:"type"`
	Status     CustomerStatus  `json:"status"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordID returns the customer id
func (c Customer) RecordID() string { return c.ID.String() }

// RecordStatus returns the customer status
func (c Customer) RecordStatus() string { return string(c.Status) }

// DependentCount returns the number of orders placed by the customer
func (c Customer) DependentCount() int64 { return c.OrderCount }

// CustomerDeletePolicy rejects deleting customers with order history
var CustomerDeletePolicy = shared.DeletePolicy{
	Resource:           "customer",
	RejectIfDependents: true,
}

// CustomerDraft is the create/update form for a customer
type CustomerDraft struct {
	Name    string         `json:"name" validate:"required,max=200"`
	Phone   string         `json:"phone" validate:"required,max=20"`
	Email   string         `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Address string         `json:"address,omitempty" validate:"max=500"`
	Type    CustomerType   `json:"type,omitempty" validate:"omitempty,oneof=individual business"`
	Status  CustomerStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive blocked"`
}
