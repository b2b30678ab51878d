package partner

import (
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
)

// BranchStatus represents the operating status of a branch
type BranchStatus string

const (
	BranchStatusActive   BranchStatus = "active"
	BranchStatusInactive BranchStatus = "inactive"
)

// Branch is a physical store
type Branch struct {
	ID            shared.ID    `json:"id"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Phone         string       `json:"phone,omitempty"`
	Manager       string       `json:"manager,omitempty"`
	EmployeeCount int64        `json:"employee_count"`
	Status        BranchStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// RecordID returns the branch id
func (b Branch) RecordID() string { return b.ID.String() }

// RecordStatus returns the branch status
func (b Branch) RecordStatus() string { return string(b.Status) }

// BranchDeletePolicy requires a branch to be closed before removal
var BranchDeletePolicy = shared.DeletePolicy{
	Resource:        "branch",
	AllowedStatuses: []string{string(BranchStatusInactive)},
}

// BranchDraft is the create/update form for a branch
type BranchDraft struct {
	Code    string       `json:"code,omitempty" validate:"max=20"`
	Name    string       `json:"name" validate:"required,max=200"`
	Address string       `json:"address" validate:"required,max=500"`
	Phone   string       `json:"phone,omitempty" validate:"max=20"`
	Manager string       `json:"manager,omitempty" validate:"max=100"`
	Status  BranchStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
