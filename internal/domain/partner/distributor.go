package partner

import (
	"fmt"
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DistributorStatus represents the status of a distributor
type DistributorStatus string

const (
	DistributorStatusActive   DistributorStatus = "active"
	DistributorStatusInactive DistributorStatus = "inactive"
)

// Distributor is a supplier the shop buys stock from
type Distributor struct {
	ID          shared.ID         `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	ContactName string            `json:"contact_name,omitempty"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email,omitempty"`
	Address     string            `json:"address,omitempty"`
	TaxCode     string            `json:"tax_code,omitempty"`
	Debt        decimal.Decimal   `json:"debt"` // Amount the shop still owes
	Status      DistributorStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// RecordID returns the distributor id
func (d Distributor) RecordID() string { return d.ID.String() }

// RecordStatus returns the distributor status
func (d Distributor) RecordStatus() string { return string(d.Status) }

// HasDebt returns true if the shop still owes the distributor
func (d Distributor) HasDebt() bool {
	return d.Debt.IsPositive()
}

// DistributorDeletePolicy rejects deleting distributors with outstanding debt
var DistributorDeletePolicy = shared.DeletePolicy{
	Resource: "distributor",
	Check: func(r shared.Record) error {
		d, ok := r.(Distributor)
		if ok && d.HasDebt() {
			return shared.NewDomainError(shared.ErrDeleteNotAllowed.Code,
				fmt.Sprintf("Cannot delete distributor %s with outstanding debt %s", d.ID, d.Debt.StringFixed(0)))
		}
		return nil
	},
}

// DistributorDraft is the create/update form for a distributor
type DistributorDraft struct {
	Name        string            `json:"name" validate:"required,max=200"`
	ContactName string            `json:"contact_name,omitempty" validate:"max=100"`
	Phone       string            `json:"phone" validate:"required,max=20"`
	Email       string            `json:"email,omitempty" validate:"omitempty,email"`
	Address     string            `json:"address,omitempty" validate:"max=500"`
	TaxCode     string            `json:"tax_code,omitempty" validate:"omitempty,numeric,max=14"`
	Status      DistributorStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
