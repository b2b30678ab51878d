package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/application/stats"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/csvexport"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"github.com/erp/posconsole/internal/infrastructure/resource"
	"go.uber.org/zap"
)

// statsPageSize is the page size used when a collection has to be loaded in
// full to compute its stats locally
const statsPageSize = 100

// exportPreviewRows is the number of exported rows echoed to the terminal
const exportPreviewRows = 5

// errReported marks failures the view already showed to the user
var errReported = errors.New("reported")

type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() []error { return []error{e.err, errReported} }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// listArgs are the query flags shared by list, show-stats and export
type listArgs struct {
	search  string
	status  string
	filters map[string]string
	page    int
	limit   int
}

// query converts the flags into a ListQuery. Filter keys may be logical
// names or the resource's wire names.
func (l listArgs) query(spec resource.Spec) shared.ListQuery {
	v := url.Values{}
	for k, val := range l.filters {
		v.Set(k, val)
	}
	q := spec.Params.Decode(v, l.limit)
	q.SetSearch(l.search)
	q.SetFilter(resource.FilterStatus, l.status)
	q.Page = max(l.page, 1)
	return q
}

// screen is the console counterpart of one management screen
type screen interface {
	spec() resource.Spec
	list(ctx context.Context, a *App, args listArgs) error
	showStats(ctx context.Context, a *App) error
	create(ctx context.Context, a *App, data []byte) error
	update(ctx context.Context, a *App, id string, data []byte) error
	remove(ctx context.Context, a *App, id string) error
	export(ctx context.Context, a *App, args listArgs, out string, force bool) error
}

type typedScreen[T shared.Record, D any] struct {
	res *resource.Resource[T, D]
}

func newScreen[T shared.Record, D any](res *resource.Resource[T, D]) screen {
	return typedScreen[T, D]{res: res}
}

// screens lists every resource in menu order
func screens() []screen {
	return []screen{
		newScreen(resource.Serials),
		newScreen(resource.Registrations),
		newScreen(resource.Claims),
		newScreen(resource.Products),
		newScreen(resource.Customers),
		newScreen(resource.Branches),
		newScreen(resource.Distributors),
		newScreen(resource.Orders),
		newScreen(resource.PurchaseOrders),
	}
}

func lookupScreen(name string) (screen, error) {
	for _, s := range screens() {
		if s.spec().Matches(name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown resource %q: %w", name, shared.ErrInvalidInput)
}

func (s typedScreen[T, D]) spec() resource.Spec {
	return s.res.Spec
}

func (s typedScreen[T, D]) open(a *App, pageSize int) (*resource.RESTAdapter[T, D], *collection.View[T, D]) {
	adapter := s.res.REST(a.client)
	return adapter, s.res.NewView(adapter, a.viewOptions(pageSize)...)
}

func (s typedScreen[T, D]) list(ctx context.Context, a *App, args listArgs) error {
	_, view := s.open(a, args.limit)
	defer view.Close()

	q := args.query(s.res.Spec)
	view.SetSearch(q.Search)
	for key, value := range q.Filters {
		view.SetFilter(key, value)
	}
	// SetPage cancels the pending debounced fetch. A later page is only
	// requested once page 1 has reported the page count, so it is clamped first.
	if err := view.SetPage(ctx, 1); err != nil {
		return reported(err)
	}
	if target := shared.ClampPage(q.Page, view.Snapshot().TotalPages); target > 1 {
		if err := view.SetPage(ctx, target); err != nil {
			return reported(err)
		}
	}

	snap := view.Snapshot()
	if snap.IsEmpty() {
		fmt.Fprintln(a.stdout, a.loc.Message(i18n.KeyListEmpty))
		return nil
	}
	if err := s.writeRecords(a, snap.Items); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "\n%s\n", a.loc.Message(i18n.KeyPageFooter, snap.Query.Page, snap.TotalPages, snap.TotalCount))
	return nil
}

func (s typedScreen[T, D]) writeRecords(a *App, items []T) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, s.res.Row(item))
	}
	return writeTable(a.stdout, s.res.Headers(), rows)
}

func (s typedScreen[T, D]) showStats(ctx context.Context, a *App) error {
	adapter, view := s.open(a, statsPageSize)
	defer view.Close()

	var summary stats.Summary
	if s.res.Spec.HasStats() {
		if err := view.LoadStats(ctx); err != nil {
			return reported(err)
		}
		snap := view.Snapshot()
		if snap.Stats != nil {
			summary = *snap.Stats
		}
	} else {
		items, err := s.loadAll(ctx, adapter)
		if err != nil {
			return err
		}
		summary = stats.Summarize(items, s.res.Amount)
	}
	return writeSummary(a.stdout, a.loc, summary, s.res.Amount != nil)
}

// loadAll pages through the whole collection
func (s typedScreen[T, D]) loadAll(ctx context.Context, adapter collection.Adapter[T, D]) ([]T, error) {
	q := shared.NewListQuery(statsPageSize)
	var all []T
	for {
		page, err := adapter.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || q.Page >= page.TotalPages(q.PageSize) {
			return all, nil
		}
		q = q.WithPage(q.Page + 1)
	}
}

func (s typedScreen[T, D]) create(ctx context.Context, a *App, data []byte) error {
	var draft D
	if err := json.Unmarshal(data, &draft); err != nil {
		return fmt.Errorf("invalid -data JSON: %w", err)
	}
	_, view := s.open(a, a.cfg.View.PageSize)
	defer view.Close()

	created, err := view.Create(ctx, draft)
	if err != nil {
		return reported(err)
	}
	return s.writeRecords(a, []T{created})
}

// update overlays data on the edit draft of the current record, so only the
// fields present in data change
func (s typedScreen[T, D]) update(ctx context.Context, a *App, id string, data []byte) error {
	_, view := s.open(a, a.cfg.View.PageSize)
	defer view.Close()

	record, err := view.Find(ctx, id)
	if err != nil {
		return err
	}
	var draft D
	if s.res.EditDraft != nil {
		draft = s.res.EditDraft(record)
	}
	if err := json.Unmarshal(data, &draft); err != nil {
		return fmt.Errorf("invalid -data JSON: %w", err)
	}
	updated, err := view.Update(ctx, id, draft)
	if err != nil {
		return reported(err)
	}
	return s.writeRecords(a, []T{updated})
}

func (s typedScreen[T, D]) remove(ctx context.Context, a *App, id string) error {
	_, view := s.open(a, a.cfg.View.PageSize)
	defer view.Close()

	record, err := view.Find(ctx, id)
	if err != nil {
		return err
	}
	return reported(view.Delete(ctx, record))
}

func (s typedScreen[T, D]) export(ctx context.Context, a *App, args listArgs, out string, force bool) error {
	adapter := s.res.REST(a.client)
	q := args.query(s.res.Spec)
	result, err := adapter.Export(ctx, q)
	if err != nil {
		return err
	}
	doc, err := csvexport.Parse(result.Data)
	if err != nil {
		return err
	}
	path := csvexport.ResolvePath(out, result.Filename)
	if err := csvexport.Save(path, result.Data, force); err != nil {
		return err
	}
	a.log.Info("export saved",
		zap.String("resource", s.res.Spec.Name),
		zap.String("path", path),
		zap.String("shape", string(result.Shape)),
		zap.Int("rows", doc.RowCount()),
	)

	preview := doc.Preview(exportPreviewRows)
	if err := writeTable(a.stdout, doc.Headers, preview); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "\n%s\n", a.loc.Message(i18n.KeyExportPreview, len(preview), doc.RowCount()))
	a.notify(collection.LevelSuccess, a.loc.Message(i18n.KeyExportSuccess, doc.RowCount(), path))
	return nil
}
