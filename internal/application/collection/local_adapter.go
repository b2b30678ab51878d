package collection

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/erp/posconsole/internal/application/stats"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalConfig configures a LocalAdapter
type LocalConfig[T shared.Record, D any] struct {
	// Match filters records; nil matches everything
	Match Predicate[T]
	// Build turns a draft into a record with the given id
	Build func(id string, draft D) (T, error)
	// Merge carries the fields a draft does not own from the stored record
	// onto the one rebuilt by Update; nil replaces the record wholesale
	Merge func(existing, rebuilt T, draft D) T
	// Amount extracts the money field summed by LoadStats; optional
	Amount func(T) decimal.Decimal
	// NewID generates ids for created records; defaults to random UUIDs
	NewID func() string
}

// LocalAdapter serves a small, fully loaded collection from memory and filters
// it client-side. It satisfies Adapter, Getter and StatsLoader so a view does
// not know whether filtering happens locally or on the server.
type LocalAdapter[T shared.Record, D any] struct {
	mu      sync.RWMutex
	records []T
	cfg     LocalConfig[T, D]
}

// NewLocalAdapter creates an adapter over a copy of records
func NewLocalAdapter[T shared.Record, D any](records []T, cfg LocalConfig[T, D]) *LocalAdapter[T, D] {
	if cfg.Match == nil {
		cfg.Match = func(T, shared.ListQuery) bool { return true }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &LocalAdapter[T, D]{
		records: slices.Clone(records),
		cfg:     cfg,
	}
}

// List filters the records and returns the requested page
func (a *LocalAdapter[T, D]) List(ctx context.Context, q shared.ListQuery) (shared.Page[T], error) {
	if err := ctx.Err(); err != nil {
		return shared.Page[T]{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	matched := make([]T, 0, len(a.records))
	for _, r := range a.records {
		if a.cfg.Match(r, q) {
			matched = append(matched, r)
		}
	}
	total := int64(len(matched))
	start := min(q.Offset(), len(matched))
	end := len(matched)
	if q.PageSize > 0 {
		end = min(start+q.PageSize, len(matched))
	}
	return shared.Page[T]{Items: slices.Clone(matched[start:end]), TotalCount: total}, nil
}

// Get returns one record
func (a *LocalAdapter[T, D]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	idx := a.indexOf(id)
	if idx < 0 {
		return zero, fmt.Errorf("record %s: %w", id, shared.ErrNotFound)
	}
	return a.records[idx], nil
}

// Create builds a record from draft and appends it
func (a *LocalAdapter[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if a.cfg.Build == nil {
		return zero, fmt.Errorf("local adapter is read-only: %w", shared.ErrInvalidState)
	}
	record, err := a.cfg.Build(a.cfg.NewID(), draft)
	if err != nil {
		return zero, err
	}
	a.mu.Lock()
	a.records = append(a.records, record)
	a.mu.Unlock()
	return record, nil
}

// Update rebuilds record id from draft. Fields the draft does not carry are
// kept from the stored record through Merge.
func (a *LocalAdapter[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if a.cfg.Build == nil {
		return zero, fmt.Errorf("local adapter is read-only: %w", shared.ErrInvalidState)
	}
	record, err := a.cfg.Build(id, draft)
	if err != nil {
		return zero, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.indexOf(id)
	if idx < 0 {
		return zero, fmt.Errorf("record %s: %w", id, shared.ErrNotFound)
	}
	if a.cfg.Merge != nil {
		record = a.cfg.Merge(a.records[idx], record, draft)
	}
	a.records[idx] = record
	return record, nil
}

// Delete removes record id
func (a *LocalAdapter[T, D]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("record %s: %w", id, shared.ErrNotFound)
	}
	a.records = slices.Delete(a.records, idx, idx+1)
	return nil
}

// LoadStats summarizes all records regardless of the current filter
func (a *LocalAdapter[T, D]) LoadStats(ctx context.Context) (stats.Summary, error) {
	if err := ctx.Err(); err != nil {
		return stats.Summary{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return stats.Summarize(a.records, a.cfg.Amount), nil
}

// Len returns the number of records
func (a *LocalAdapter[T, D]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

func (a *LocalAdapter[T, D]) indexOf(id string) int {
	return slices.IndexFunc(a.records, func(r T) bool { return r.RecordID() == id })
}
