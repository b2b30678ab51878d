package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erp/posconsole/internal/application/stats"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/apiclient"
)

// ErrUnsupported is returned for operations a resource does not expose
var ErrUnsupported = errors.New("operation not supported by this resource")

// RESTAdapter implements the collection adapter over the REST backend
type RESTAdapter[T shared.Record, D any] struct {
	client *apiclient.Client
	spec   Spec
}

// NewRESTAdapter creates an adapter for spec
func NewRESTAdapter[T shared.Record, D any](client *apiclient.Client, spec Spec) *RESTAdapter[T, D] {
	return &RESTAdapter[T, D]{client: client, spec: spec}
}

// Spec returns the resource description
func (a *RESTAdapter[T, D]) Spec() Spec {
	return a.spec
}

// List fetches one page. Over-long server pages are truncated to the page size.
func (a *RESTAdapter[T, D]) List(ctx context.Context, q shared.ListQuery) (shared.Page[T], error) {
	page, err := apiclient.GetList[T](ctx, a.client, a.spec.Path, a.spec.Params.Encode(q))
	if err != nil {
		return shared.Page[T]{}, err
	}
	return shared.NewPage(page.Items, page.TotalCount, q.PageSize), nil
}

// Get fetches one record
func (a *RESTAdapter[T, D]) Get(ctx context.Context, id string) (T, error) {
	return apiclient.GetOne[T](ctx, a.client, a.recordPath(id))
}

// Create posts a draft
func (a *RESTAdapter[T, D]) Create(ctx context.Context, draft D) (T, error) {
	return apiclient.Send[T](ctx, a.client, http.MethodPost, a.spec.Path, draft)
}

// Update puts a draft
func (a *RESTAdapter[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	return apiclient.Send[T](ctx, a.client, http.MethodPut, a.recordPath(id), draft)
}

// Delete deletes a record
func (a *RESTAdapter[T, D]) Delete(ctx context.Context, id string) error {
	return apiclient.Exec(ctx, a.client, http.MethodDelete, a.recordPath(id), nil)
}

// LoadStats fetches the resource's stats endpoint
func (a *RESTAdapter[T, D]) LoadStats(ctx context.Context) (stats.Summary, error) {
	if a.spec.StatsPath == "" {
		return stats.Summary{}, fmt.Errorf("%s stats: %w", a.spec.Name, ErrUnsupported)
	}
	s, err := apiclient.GetOne[stats.Summary](ctx, a.client, a.spec.StatsPath)
	if err != nil {
		return stats.Summary{}, err
	}
	if s.ByStatus == nil {
		s.ByStatus = map[string]int64{}
	}
	return s, nil
}

// Export downloads the resource's export file for the current filters
func (a *RESTAdapter[T, D]) Export(ctx context.Context, q shared.ListQuery) (*apiclient.ExportResult, error) {
	if a.spec.ExportPath == "" {
		return nil, fmt.Errorf("%s export: %w", a.spec.Name, ErrUnsupported)
	}
	return a.client.Export(ctx, a.spec.ExportPath, a.spec.Params.EncodeFilters(q))
}

func (a *RESTAdapter[T, D]) recordPath(id string) string {
	return a.spec.Path + "/" + url.PathEscape(id)
}
