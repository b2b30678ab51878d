package warranty

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClaimStatus represents the processing state of a warranty claim
type ClaimStatus string

const (
	ClaimStatusPending    ClaimStatus = "pending"
	ClaimStatusProcessing ClaimStatus = "processing"
	ClaimStatusCompleted  ClaimStatus = "completed"
	ClaimStatusRejected   ClaimStatus = "rejected"
)

// Claim is a repair/replacement request filed against a registration
type Claim struct {
	ID               shared.ID       `json:"id"`
	ClaimCode        string          `json:"claim_code"`
	RegistrationID   shared.ID       `json:"registration_id"`
	SerialNumber     string          `json:"serial_number"`
	ProductName      string          `json:"product_name"`
	CustomerName     string          `json:"customer_name"`
	IssueDescription string          `json:"issue_description"`
	Resolution       string          `json:"resolution,omitempty"`
	Cost             decimal.Decimal `json:"cost"`
	Status           ClaimStatus     `json:"status"`
	ReceivedAt       time.Time       `json:"received_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// RecordID returns the claim id
func (c Claim) RecordID() string { return c.ID.String() }

// RecordStatus returns the claim status
func (c Claim) RecordStatus() string { return string(c.Status) }

// IsOpen returns true while the claim still needs work
func (c Claim) IsOpen() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusProcessing
}

// ClaimDeletePolicy only permits deleting claims nobody has started on
var ClaimDeletePolicy = shared.DeletePolicy{
	Resource:        "warranty claim",
	AllowedStatuses: []string{string(ClaimStatusPending)},
}

// ClaimDraft is the create/update form for a claim
type ClaimDraft struct {
	RegistrationID   shared.ID       `json:"registration_id" validate:"required"`
	IssueDescription string          `json:"issue_description" validate:"required,max=1000"`
	Status           ClaimStatus     `json:"status,omitempty" validate:"omitempty,oneof=pending processing completed rejected"`
	Resolution       string          `json:"resolution,omitempty" validate:"max=1000"`
	Cost             decimal.Decimal `json:"cost"`
}
