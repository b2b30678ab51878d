// Package warranty holds warranty registrations and the claims filed against them.
package warranty

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
)

// RegistrationStatus represents the status of a warranty registration
type RegistrationStatus string

const (
	RegistrationStatusActive  RegistrationStatus = "active"
	RegistrationStatusExpired RegistrationStatus = "expired"
	RegistrationStatusVoid    RegistrationStatus = "void"
)

// Registration binds a sold serial to a customer for a warranty period
type Registration struct {
	ID             shared.ID          `json:"id"`
	WarrantyCode   string             `json:"warranty_code"`
	SerialID       shared.ID          `json:"serial_id,omitempty"`
	SerialNumber   string             `json:"serial_number"`
	ProductID      shared.ID          `json:"product_id,omitempty"`
	ProductName    string             `json:"product_name"`
	CustomerID     shared.ID          `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  string             `json:"customer_phone"`
	WarrantyMonths int                `json:"warranty_months"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	Status         RegistrationStatus `json:"status"`
	ClaimCount     int64              `json:"claim_count"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// RecordID returns the registration id
func (r Registration) RecordID() string { return r.ID.String() }

// RecordStatus returns the registration status
func (r Registration) RecordStatus() string { return string(r.Status) }

// DependentCount returns the number of claims filed against the registration
func (r Registration) DependentCount() int64 { return r.ClaimCount }

// IsCovered reports whether the warranty covers the given instant
func (r Registration) IsCovered(at time.Time) bool {
	if r.Status != RegistrationStatusActive {
		return false
	}
	return !at.Before(r.StartDate) && !at.After(r.EndDate)
}

// DaysRemaining returns the whole days left until EndDate, never negative
func (r Registration) DaysRemaining(now time.Time) int {
	if now.After(r.EndDate) {
		return 0
	}
	return int(r.EndDate.Sub(now).Hours() / 24)
}

// RegistrationDeletePolicy rejects deleting live registrations or ones with claims
var RegistrationDeletePolicy = shared.DeletePolicy{
	Resource:           "warranty registration",
	AllowedStatuses:    []string{string(RegistrationStatusExpired), string(RegistrationStatusVoid)},
	RejectIfDependents: true,
}

// RegistrationDraft is the create/update form for a registration
type RegistrationDraft struct {
	SerialNumber   string    `json:"serial_number" validate:"required"`
	CustomerID     shared.ID `json:"customer_id,omitempty"`
	CustomerName   string    `json:"customer_name" validate:"required,max=200"`
	CustomerPhone  string    `json:"customer_phone" validate:"required,max=20"`
	WarrantyMonths int       `json:"warranty_months" validate:"required,gt=0,lte=120"`
	StartDate      string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes          string    `json:"notes,omitempty" validate:"max=500"`
}
