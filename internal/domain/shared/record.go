package shared

import (
	"fmt"
	"slices"
	"strings"
)

// Record is a domain record owned by the backend.
// The client only mirrors its shape for rendering and form binding.
type Record interface {
	RecordID() string
	RecordStatus() string
}

// DependentCounter is implemented by records that know how many dependent
// children (claims, orders, serials...) reference them
type DependentCounter interface {
	DependentCount() int64
}

// DeletePolicy decides client-side whether a record may be deleted.
// An empty AllowedStatuses set allows any status.
type DeletePolicy struct {
	Resource           string
	AllowedStatuses    []string
	RejectIfDependents bool
	// Check is an additional rule evaluated after the status and dependents checks
	Check func(record Record) error
}

// CheckDelete returns nil when the record may be deleted, otherwise a
// DELETE_NOT_ALLOWED domain error describing why
func (p DeletePolicy) CheckDelete(record Record) error {
	if len(p.AllowedStatuses) > 0 && !slices.Contains(p.AllowedStatuses, record.RecordStatus()) {
		return NewDomainError(ErrDeleteNotAllowed.Code, fmt.Sprintf(
			"Cannot delete %s %s with status %q (allowed: %s)",
			p.Resource, record.RecordID(), record.RecordStatus(), strings.Join(p.AllowedStatuses, ", ")))
	}
	if p.RejectIfDependents {
		if dc, ok := record.(DependentCounter); ok && dc.DependentCount() > 0 {
			return NewDomainError(ErrDeleteNotAllowed.Code, fmt.Sprintf(
				"Cannot delete %s %s: %d dependent records exist", p.Resource, record.RecordID(), dc.DependentCount()))
		}
	}
	if p.Check != nil {
		if err := p.Check(record); err != nil {
			return err
		}
	}
	return nil
}

// AllowsStatus reports whether the status alone permits deletion
func (p DeletePolicy) AllowsStatus(status string) bool {
	return len(p.AllowedStatuses) == 0 || slices.Contains(p.AllowedStatuses, status)
}
