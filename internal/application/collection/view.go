// Package collection implements the remote collection view: a generic view
// model that owns filter, search and pagination state for one REST collection,
// issues list requests through a resource adapter, mediates create, update and
// delete, and keeps aggregate counters in sync through a stats loader.
package collection

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/erp/posconsole/internal/application/stats"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period applied to search and filter edits
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrSuperseded is returned by FetchPage when a newer request was issued
	// before the response arrived; the response is discarded
	ErrSuperseded = errors.New("collection: response superseded by a newer request")
	// ErrClosed is returned by operations on a closed view
	ErrClosed = errors.New("collection: view closed")
)

// Adapter exposes the list and mutation operations of one backend collection
type Adapter[T shared.Record, D any] interface {
	List(ctx context.Context, q shared.ListQuery) (shared.Page[T], error)
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id string, draft D) (T, error)
	Delete(ctx context.Context, id string) error
}

// Getter is implemented by adapters that can load a single record
type Getter[T any] interface {
	Get(ctx context.Context, id string) (T, error)
}

// StatsLoader loads the aggregate counters of a collection
type StatsLoader interface {
	LoadStats(ctx context.Context) (stats.Summary, error)
}

// StatsLoaderFunc adapts a function to the StatsLoader interface
type StatsLoaderFunc func(ctx context.Context) (stats.Summary, error)

// LoadStats calls f(ctx)
func (f StatsLoaderFunc) LoadStats(ctx context.Context) (stats.Summary, error) { return f(ctx) }

// Status is the state of the most recent fetch. Success and Error are the
// resting states reached after a fetch completes.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ModalMode tells whether the create/edit form is open
type ModalMode string

const (
	ModalClosed ModalMode = ""
	ModalCreate ModalMode = "create"
	ModalEdit   ModalMode = "edit"
)

// ModalState is the create/edit form state
type ModalState[D any] struct {
	Mode      ModalMode
	EditingID string
	Draft     D
}

// Open reports whether the form is open
func (m ModalState[D]) Open() bool {
	return m.Mode != ModalClosed
}

// Snapshot is an immutable copy of the view state
type Snapshot[T shared.Record, D any] struct {
	Resource   string
	Query      shared.ListQuery
	Items      []T
	TotalCount int64
	TotalPages int
	Status     Status
	Err        error
	Stats      *stats.Summary
	Modal      ModalState[D]
}

// HasError reports whether the last fetch failed
func (s Snapshot[T, D]) HasError() bool {
	return s.Err != nil
}

// IsEmpty reports whether the current page has no rows
func (s Snapshot[T, D]) IsEmpty() bool {
	return len(s.Items) == 0
}

type options struct {
	resource     string
	pageSize     int
	debounce     time.Duration
	logger       *zap.Logger
	notifier     Notifier
	localizer    Localizer
	metrics      Metrics
	stats        StatsLoader
	deletePolicy *shared.DeletePolicy
}

// Option configures a View
type Option func(*options)

// WithResource names the collection in logs, metrics and notifications
func WithResource(name string) Option {
	return func(o *options) { o.resource = name }
}

// WithPageSize sets the initial page size
func WithPageSize(size int) Option {
	return func(o *options) { o.pageSize = size }
}

// WithDebounce sets the quiet period for search and filter edits; 0 fetches immediately
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier sets the notification sink
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithLocalizer sets the message localizer
func WithLocalizer(l Localizer) Option {
	return func(o *options) { o.localizer = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithStats sets the stats loader refreshed after every mutation
func WithStats(s StatsLoader) Option {
	return func(o *options) { o.stats = s }
}

// WithDeletePolicy sets the client-side delete guard
func WithDeletePolicy(p shared.DeletePolicy) Option {
	return func(o *options) { o.deletePolicy = &p }
}

// View is the state container behind one list screen
type View[T shared.Record, D any] struct {
	adapter   Adapter[T, D]
	opts      options
	log       *zap.Logger
	debouncer *Debouncer

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu             sync.Mutex
	query          shared.ListQuery
	page           shared.Page[T]
	totalPages     int
	fetched        bool
	status         Status
	err            error
	summary        *stats.Summary
	modal          ModalState[D]
	seq            uint64
	statsSeq       uint64
	cancelInflight context.CancelFunc
	closed         bool

	subMu      sync.Mutex
	subs       []chan Snapshot[T, D]
	subsClosed bool
}

// New creates a view over adapter
func New[T shared.Record, D any](adapter Adapter[T, D], opts ...Option) *View[T, D] {
	o := options{
		pageSize: shared.DefaultPageSize,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.notifier == nil {
		o.notifier = discardNotifier{}
	}
	if o.localizer == nil {
		o.localizer = i18n.New(i18n.DefaultLocale)
	}
	if o.metrics == nil {
		o.metrics = nopMetrics{}
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &View[T, D]{
		adapter:    adapter,
		opts:       o,
		log:        o.logger.Named("collection").With(zap.String("resource", o.resource)),
		debouncer:  NewDebouncer(o.debounce),
		baseCtx:    baseCtx,
		cancelBase: cancel,
		query:      shared.NewListQuery(o.pageSize),
		page:       shared.EmptyPage[T](),
		status:     StatusIdle,
	}
}

// Resource returns the collection name
func (v *View[T, D]) Resource() string {
	return v.opts.resource
}

// Query returns a copy of the current query
func (v *View[T, D]) Query() shared.ListQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query.Clone()
}

// SetFilter changes one filter, resets the page to 1 and schedules a fetch
// through the debouncer. No validation is applied to the value.
func (v *View[T, D]) SetFilter(key string, value any) {
	if !v.mutateQuery(func(q *shared.ListQuery) { q.SetFilter(key, value) }) {
		return
	}
	v.scheduleFetch()
}

// SetSearch changes the search text, resets the page to 1 and schedules a
// fetch through the debouncer
func (v *View[T, D]) SetSearch(text string) {
	if !v.mutateQuery(func(q *shared.ListQuery) { q.SetSearch(text) }) {
		return
	}
	v.scheduleFetch()
}

// SetPageSize changes the page size, resets the page to 1 and fetches
func (v *View[T, D]) SetPageSize(ctx context.Context, size int) error {
	if size <= 0 {
		return fmt.Errorf("page size must be positive: %w", shared.ErrInvalidInput)
	}
	if !v.mutateQuery(func(q *shared.ListQuery) { q.SetPageSize(size) }) {
		return ErrClosed
	}
	v.debouncer.Cancel()
	return v.FetchPage(ctx)
}

// SetPage moves to page n and fetches it. Once the page count is known the
// page is clamped to [1, totalPages] so an out-of-range page is never requested.
func (v *View[T, D]) SetPage(ctx context.Context, n int) error {
	ok := v.mutateQuery(func(q *shared.ListQuery) {
		if v.fetched {
			n = shared.ClampPage(n, v.totalPages)
		} else if n < 1 {
			n = 1
		}
		q.Page = n
	})
	if !ok {
		return ErrClosed
	}
	v.debouncer.Cancel()
	return v.FetchPage(ctx)
}

// NextPage moves one page forward, staying on the last page
func (v *View[T, D]) NextPage(ctx context.Context) error {
	return v.SetPage(ctx, v.Query().Page+1)
}

// PrevPage moves one page back, staying on the first page
func (v *View[T, D]) PrevPage(ctx context.Context) error {
	return v.SetPage(ctx, v.Query().Page-1)
}

func (v *View[T, D]) mutateQuery(fn func(q *shared.ListQuery)) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	fn(&v.query)
	v.mu.Unlock()
	v.publish()
	return true
}

func (v *View[T, D]) scheduleFetch() {
	v.debouncer.Trigger(func() {
		// failures are already reported through the notifier
		_ = v.FetchPage(v.baseCtx)
	})
}

// FetchPage issues a list request for the current query. Every request is
// tagged with a sequence number; a response that arrives after a newer request
// was issued is discarded and ErrSuperseded returned. The superseded request
// is also cancelled through its context. On success the page is replaced
// wholesale; on failure the error flag is set and a notification emitted.
// There is no automatic retry.
func (v *View[T, D]) FetchPage(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.seq++
	seq := v.seq
	if v.cancelInflight != nil {
		v.cancelInflight()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	stopOnClose := context.AfterFunc(v.baseCtx, cancel)
	v.cancelInflight = cancel
	q := v.query.Clone()
	v.status = StatusLoading
	v.mu.Unlock()
	v.publish()

	start := time.Now()
	page, err := v.adapter.List(reqCtx, q)
	stopOnClose()
	cancel()
	elapsed := time.Since(start)

	v.mu.Lock()
	if seq != v.seq || v.closed {
		v.mu.Unlock()
		v.log.Debug("discarding stale response",
			zap.Uint64("seq", seq),
			zap.Int("page", q.Page),
			zap.Duration("elapsed", elapsed),
		)
		v.opts.metrics.ObserveFetch(v.opts.resource, OutcomeStale, elapsed)
		return ErrSuperseded
	}
	v.cancelInflight = nil

	if err != nil {
		v.status = StatusError
		v.err = err
		v.mu.Unlock()
		v.log.Warn("fetch failed", zap.Int("page", q.Page), zap.Error(err))
		v.opts.metrics.ObserveFetch(v.opts.resource, OutcomeError, elapsed)
		v.notify(LevelError, i18n.KeyFetchFailed, Describe(v.opts.localizer, err, i18n.KeyFetchFailed))
		v.publish()
		return err
	}

	page = shared.NewPage(page.Items, page.TotalCount, q.PageSize)
	if page.Items == nil {
		page.Items = []T{}
	}
	v.page = page
	v.totalPages = page.TotalPages(q.PageSize)
	v.fetched = true
	v.status = StatusSuccess
	v.err = nil

	// the collection shrank under the current page, e.g. after a delete
	refetch := false
	if clamped := shared.ClampPage(q.Page, v.totalPages); clamped != q.Page && v.query.Page == q.Page {
		v.query.Page = clamped
		refetch = true
	}
	totalPages := v.totalPages
	v.mu.Unlock()

	v.log.Debug("fetched page",
		zap.Uint64("seq", seq),
		zap.Int("page", q.Page),
		zap.Int("items", len(page.Items)),
		zap.Int64("total", page.TotalCount),
		zap.Int("total_pages", totalPages),
		zap.Duration("elapsed", elapsed),
	)
	v.opts.metrics.ObserveFetch(v.opts.resource, OutcomeSuccess, elapsed)
	v.publish()

	if refetch {
		return v.FetchPage(ctx)
	}
	return nil
}

// LoadStats refreshes the aggregate counters. It is a no-op without a stats loader.
func (v *View[T, D]) LoadStats(ctx context.Context) error {
	if v.opts.stats == nil {
		return nil
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.statsSeq++
	seq := v.statsSeq
	v.mu.Unlock()

	summary, err := v.opts.stats.LoadStats(ctx)

	v.mu.Lock()
	if seq != v.statsSeq || v.closed {
		v.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		v.mu.Unlock()
		v.log.Warn("stats failed", zap.Error(err))
		v.notify(LevelWarning, i18n.KeyStatsFailed, Describe(v.opts.localizer, err, i18n.KeyStatsFailed))
		return err
	}
	v.summary = &summary
	v.mu.Unlock()
	v.publish()
	return nil
}

// Refresh fetches the current page and the stats
func (v *View[T, D]) Refresh(ctx context.Context) error {
	fetchErr := v.FetchPage(ctx)
	statsErr := v.LoadStats(ctx)
	return errors.Join(fetchErr, statsErr)
}

// Create validates the draft and creates a record. An invalid draft emits a
// warning and issues no request. On success the form is closed and the page
// and stats are re-fetched.
func (v *View[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	if err := v.validate("create", draft); err != nil {
		return zero, err
	}
	created, err := v.adapter.Create(ctx, draft)
	if err != nil {
		v.mutationFailed("create", i18n.KeyCreateFailed, err)
		return zero, err
	}
	v.log.Info("record created", zap.String("id", created.RecordID()))
	v.mutationSucceeded(ctx, "create", i18n.KeyCreateSuccess)
	return created, nil
}

// Update validates the draft and updates record id. Behaves like Create.
func (v *View[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var zero T
	if err := v.validate("update", draft); err != nil {
		return zero, err
	}
	updated, err := v.adapter.Update(ctx, id, draft)
	if err != nil {
		v.mutationFailed("update", i18n.KeyUpdateFailed, err)
		return zero, err
	}
	v.log.Info("record updated", zap.String("id", id))
	v.mutationSucceeded(ctx, "update", i18n.KeyUpdateSuccess)
	return updated, nil
}

// Delete deletes record after checking the delete policy. A rejected delete
// emits a warning and issues no request.
func (v *View[T, D]) Delete(ctx context.Context, record T) error {
	if p := v.opts.deletePolicy; p != nil {
		if err := p.CheckDelete(record); err != nil {
			msg := err.Error()
			if !p.AllowsStatus(record.RecordStatus()) {
				msg = v.opts.localizer.Message(i18n.KeyDeleteNotAllowed, record.RecordStatus())
			}
			v.log.Info("delete rejected",
				zap.String("id", record.RecordID()),
				zap.String("status", record.RecordStatus()),
				zap.Error(err),
			)
			v.opts.metrics.ObserveMutation(v.opts.resource, "delete", OutcomeRejected)
			v.notify(LevelWarning, i18n.KeyDeleteNotAllowed, msg)
			return err
		}
	}
	if err := v.adapter.Delete(ctx, record.RecordID()); err != nil {
		v.mutationFailed("delete", i18n.KeyDeleteFailed, err)
		return err
	}
	v.log.Info("record deleted", zap.String("id", record.RecordID()))
	v.mutationSucceeded(ctx, "delete", i18n.KeyDeleteSuccess)
	return nil
}

// DeleteID deletes the record with the given id. The record is taken from the
// current page, or loaded through the adapter when it implements Getter, so
// that the delete policy can be applied.
func (v *View[T, D]) DeleteID(ctx context.Context, id string) error {
	record, err := v.Find(ctx, id)
	if err != nil {
		return err
	}
	return v.Delete(ctx, record)
}

// Find returns the record with the given id from the current page or the adapter
func (v *View[T, D]) Find(ctx context.Context, id string) (T, error) {
	v.mu.Lock()
	idx := slices.IndexFunc(v.page.Items, func(r T) bool { return r.RecordID() == id })
	if idx >= 0 {
		record := v.page.Items[idx]
		v.mu.Unlock()
		return record, nil
	}
	v.mu.Unlock()

	var zero T
	getter, ok := v.adapter.(Getter[T])
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", v.opts.resource, id, shared.ErrNotFound)
	}
	record, err := getter.Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("load %s %s: %w", v.opts.resource, id, err)
	}
	return record, nil
}

func (v *View[T, D]) validate(op string, draft D) error {
	err := shared.ValidateDraft(draft)
	if err == nil {
		return nil
	}
	v.log.Info("draft rejected", zap.String("op", op), zap.Error(err))
	v.opts.metrics.ObserveMutation(v.opts.resource, op, OutcomeRejected)
	v.notify(LevelWarning, i18n.KeyValidationFailed, Describe(v.opts.localizer, err, i18n.KeyValidationFailed))
	return err
}

func (v *View[T, D]) mutationFailed(op, key string, err error) {
	v.log.Warn(op+" failed", zap.Error(err))
	v.opts.metrics.ObserveMutation(v.opts.resource, op, OutcomeError)
	v.notify(LevelError, key, Describe(v.opts.localizer, err, key))
}

func (v *View[T, D]) mutationSucceeded(ctx context.Context, op, key string) {
	v.opts.metrics.ObserveMutation(v.opts.resource, op, OutcomeSuccess)
	v.mu.Lock()
	v.modal = ModalState[D]{}
	v.mu.Unlock()
	v.notify(LevelSuccess, key, v.opts.localizer.Message(key))
	v.publish()
	// fetch failures are reported by the view itself
	_ = v.Refresh(ctx)
}

// OpenCreate opens the form with an empty draft
func (v *View[T, D]) OpenCreate() {
	var zero D
	v.OpenCreateWith(zero)
}

// OpenCreateWith opens the form with a prefilled draft
func (v *View[T, D]) OpenCreateWith(draft D) {
	v.setModal(ModalState[D]{Mode: ModalCreate, Draft: draft})
}

// OpenEdit opens the form for record with the given draft
func (v *View[T, D]) OpenEdit(record T, draft D) {
	v.setModal(ModalState[D]{Mode: ModalEdit, EditingID: record.RecordID(), Draft: draft})
}

// CancelEdit closes the form and discards the draft
func (v *View[T, D]) CancelEdit() {
	v.setModal(ModalState[D]{})
}

// Draft returns the current draft and whether the form is open
func (v *View[T, D]) Draft() (D, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modal.Draft, v.modal.Open()
}

// EditDraft applies fn to the open draft. It reports false when no form is open.
func (v *View[T, D]) EditDraft(fn func(d *D)) bool {
	v.mu.Lock()
	if !v.modal.Open() {
		v.mu.Unlock()
		return false
	}
	fn(&v.modal.Draft)
	v.mu.Unlock()
	v.publish()
	return true
}

// Submit creates or updates from the open form
func (v *View[T, D]) Submit(ctx context.Context) (T, error) {
	v.mu.Lock()
	modal := v.modal
	v.mu.Unlock()

	switch modal.Mode {
	case ModalCreate:
		return v.Create(ctx, modal.Draft)
	case ModalEdit:
		return v.Update(ctx, modal.EditingID, modal.Draft)
	default:
		var zero T
		return zero, fmt.Errorf("no form open: %w", shared.ErrInvalidState)
	}
}

func (v *View[T, D]) setModal(m ModalState[D]) {
	v.mu.Lock()
	v.modal = m
	v.mu.Unlock()
	v.publish()
}

// Snapshot returns a copy of the view state
func (v *View[T, D]) Snapshot() Snapshot[T, D] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View[T, D]) snapshotLocked() Snapshot[T, D] {
	s := Snapshot[T, D]{
		Resource:   v.opts.resource,
		Query:      v.query.Clone(),
		Items:      slices.Clone(v.page.Items),
		TotalCount: v.page.TotalCount,
		TotalPages: v.totalPages,
		Status:     v.status,
		Err:        v.err,
		Modal:      v.modal,
	}
	if v.summary != nil {
		sum := *v.summary
		sum.ByStatus = maps.Clone(v.summary.ByStatus)
		s.Stats = &sum
	}
	return s
}

// Subscribe returns a channel receiving a snapshot after every state change,
// starting with the current state. Delivery never blocks the view: a slow
// subscriber only sees the latest snapshot. The returned function unsubscribes.
func (v *View[T, D]) Subscribe() (<-chan Snapshot[T, D], func()) {
	ch := make(chan Snapshot[T, D], 1)
	v.subMu.Lock()
	defer v.subMu.Unlock()
	if v.subsClosed {
		close(ch)
		return ch, func() {}
	}
	ch <- v.Snapshot()
	v.subs = append(v.subs, ch)
	return ch, func() { v.unsubscribe(ch) }
}

func (v *View[T, D]) unsubscribe(ch chan Snapshot[T, D]) {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	idx := slices.Index(v.subs, ch)
	if idx < 0 {
		return
	}
	v.subs = slices.Delete(v.subs, idx, idx+1)
	close(ch)
}

func (v *View[T, D]) publish() {
	snap := v.Snapshot()
	v.subMu.Lock()
	defer v.subMu.Unlock()
	for _, ch := range v.subs {
		select {
		case ch <- snap:
		default:
			// drop the unread snapshot, keep the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (v *View[T, D]) notify(level Level, key, msg string) {
	v.opts.notifier.Notify(Notification{
		Level:    level,
		Resource: v.opts.resource,
		Key:      key,
		Message:  msg,
		At:       time.Now(),
	})
}

// Close stops the debouncer, cancels any in-flight request and closes all
// subscriptions. It is safe to call more than once.
func (v *View[T, D]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.cancelInflight != nil {
		v.cancelInflight()
		v.cancelInflight = nil
	}
	v.mu.Unlock()

	v.debouncer.Stop()
	v.cancelBase()

	v.subMu.Lock()
	defer v.subMu.Unlock()
	for _, ch := range v.subs {
		close(ch)
	}
	v.subs = nil
	v.subsClosed = true
}
