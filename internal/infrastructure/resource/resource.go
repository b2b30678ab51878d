package resource

import (
	"slices"
	"strings"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Spec describes how one resource is exposed by the backend
type Spec struct {
	Name       string
	Aliases    []string
	Title      string
	Path       string
	Params     ParamNames
	StatsPath  string
	ExportPath string
	Statuses   []string
	// Local resources are small enough to be filtered client-side
	Local        bool
	DeletePolicy shared.DeletePolicy
}

// Matches reports whether name is the resource's name or one of its aliases
func (s Spec) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == s.Name || slices.Contains(s.Aliases, name)
}

// HasStats reports whether the backend exposes a stats endpoint
func (s Spec) HasStats() bool { return s.StatsPath != "" }

// HasExport reports whether the backend exposes an export endpoint
func (s Spec) HasExport() bool { return s.ExportPath != "" }

// Column renders one table column
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Resource binds a Spec to its record and draft types
type Resource[T shared.Record, D any] struct {
	Spec    Spec
	Columns []Column[T]
	// Search lists the fields matched by client-side search
	Search []func(T) string
	// Filters maps logical filter keys to the field compared client-side
	Filters map[string]func(T) string
	// Dates extracts the date compared against date_from/date_to
	Dates  func(T) time.Time
	Amount func(T) decimal.Decimal
	// Build materializes a draft into a record for local collections
	Build func(id string, draft D) (T, error)
	// Merge keeps server-owned fields of the stored record when a local
	// collection rebuilds it from an update draft
	Merge func(existing, rebuilt T, draft D) T
	// EditDraft pre-fills an edit form
	EditDraft func(T) D
}

// Headers returns the column headers
func (r *Resource[T, D]) Headers() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Header
	}
	return out
}

// Row renders one record
func (r *Resource[T, D]) Row(record T) []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Value(record)
	}
	return out
}

// Match returns the client-side predicate equivalent to the server filters
func (r *Resource[T, D]) Match() collection.Predicate[T] {
	preds := []collection.Predicate[T]{collection.MatchStatus[T](), collection.MatchSearch(r.Search...)}
	keys := make([]string, 0, len(r.Filters))
	for k := range r.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		preds = append(preds, collection.MatchFilter(k, r.Filters[k]))
	}
	if r.Dates != nil {
		preds = append(preds, collection.MatchDateRange(FilterDateFrom, FilterDateTo, r.Dates))
	}
	return collection.All(preds...)
}

// REST returns an adapter backed by the API
func (r *Resource[T, D]) REST(client *apiclient.Client) *RESTAdapter[T, D] {
	return NewRESTAdapter[T, D](client, r.Spec)
}

// Local returns an in-memory adapter over records
func (r *Resource[T, D]) Local(records []T) *collection.LocalAdapter[T, D] {
	return collection.NewLocalAdapter(records, collection.LocalConfig[T, D]{
		Match:  r.Match(),
		Build:  r.Build,
		Merge:  r.Merge,
		Amount: r.Amount,
	})
}

// NewView creates a collection view configured with the resource's name and
// delete policy. The adapter's stats are used when it can load them.
func (r *Resource[T, D]) NewView(adapter collection.Adapter[T, D], opts ...collection.Option) *collection.View[T, D] {
	base := []collection.Option{
		collection.WithResource(r.Spec.Name),
		collection.WithDeletePolicy(r.Spec.DeletePolicy),
	}
	switch a := adapter.(type) {
	case *RESTAdapter[T, D]:
		if a.spec.HasStats() {
			base = append(base, collection.WithStats(a))
		}
	case collection.StatsLoader:
		base = append(base, collection.WithStats(a))
	}
	return collection.New(adapter, append(base, opts...)...)
}

var moneyPrinter = message.NewPrinter(language.Vietnamese)

// Money formats an amount in whole dong with Vietnamese digit grouping
func Money(d decimal.Decimal) string {
	return moneyPrinter.Sprintf("%d ₫", d.Round(0).IntPart())
}

// Date formats t as dd/mm/yyyy; the zero time renders empty
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// DatePtr formats an optional date
func DatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Date(*t)
}

func statusesOf[S ~string](all []S) []string {
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = string(s)
	}
	return out
}
