package devserver

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/erp/posconsole/internal/infrastructure/resource"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportShape selects how an export endpoint answers
type ExportShape int

const (
	// ExportBlob streams text/csv with a Content-Disposition filename
	ExportBlob ExportShape = iota
	// ExportJSON wraps the CSV text in {success, data: {csv, filename}}
	ExportJSON
)

// CollectionHandler serves the REST contract of one resource
type CollectionHandler[T shared.Record, D any] struct {
	BaseHandler
	res      *resource.Resource[T, D]
	store    *collection.LocalAdapter[T, D]
	pageSize int
	export   ExportShape
	now      func() time.Time
}

// NewCollectionHandler creates a handler for res backed by store
func NewCollectionHandler[T shared.Record, D any](res *resource.Resource[T, D], store *collection.LocalAdapter[T, D], pageSize int, export ExportShape) *CollectionHandler[T, D] {
	return &CollectionHandler[T, D]{res: res, store: store, pageSize: pageSize, export: export, now: time.Now}
}

// Register mounts the handler's routes on g
func (h *CollectionHandler[T, D]) Register(g *gin.RouterGroup) {
	spec := h.res.Spec
	g = g.Group("", h.scope)
	if spec.HasStats() {
		g.GET(spec.StatsPath, h.Stats)
	}
	if spec.HasExport() {
		g.GET(spec.ExportPath, h.Export)
	}
	g.GET(spec.Path, h.List)
	g.GET(spec.Path+"/:id", h.Get)
	g.POST(spec.Path, h.Create)
	g.PUT(spec.Path+"/:id", h.Update)
	g.DELETE(spec.Path+"/:id", h.Delete)
}

// scope tags the request logger with the resource name
func (h *CollectionHandler[T, D]) scope(c *gin.Context) {
	ctx, _ := logger.WithResource(c.Request.Context(), logger.GetGinLogger(c), h.res.Spec.Name)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// List returns one filtered page
func (h *CollectionHandler[T, D]) List(c *gin.Context) {
	q := h.res.Spec.Params.Decode(c.Request.URL.Query(), h.pageSize)
	page, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, page.Items, page.TotalCount, q.Page, q.PageSize)
}

// Get returns one record
func (h *CollectionHandler[T, D]) Get(c *gin.Context) {
	record, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Create validates and stores a draft
func (h *CollectionHandler[T, D]) Create(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	record, err := h.store.Create(c.Request.Context(), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("record created", zap.String("id", record.RecordID()))
	h.Created(c, record)
}

// Update replaces a record from a draft
func (h *CollectionHandler[T, D]) Update(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	record, err := h.store.Update(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete removes a record if its delete policy allows it
func (h *CollectionHandler[T, D]) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	record, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.res.Spec.DeletePolicy.CheckDelete(record); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.store.Delete(ctx, record.RecordID()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Đã xóa")
}

// Stats returns the status breakdown of the whole collection
func (h *CollectionHandler[T, D]) Stats(c *gin.Context) {
	summary, err := h.store.LoadStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export renders every record matching the filters as CSV
func (h *CollectionHandler[T, D]) Export(c *gin.Context) {
	q := h.res.Spec.Params.Decode(c.Request.URL.Query(), h.pageSize)
	q.Page, q.PageSize = 1, 0
	page, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	_ = w.Write(h.res.Headers())
	for _, record := range page.Items {
		_ = w.Write(h.res.Row(record))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", path.Base(h.res.Spec.Path), h.now().Format("20060102"))
	if h.export == ExportJSON {
		h.Success(c, gin.H{"csv": buf.String(), "filename": filename})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *CollectionHandler[T, D]) bindDraft(c *gin.Context) (D, bool) {
	var draft D
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.BadRequest(c, "Invalid request body")
		return draft, false
	}
	if err := shared.ValidateDraft(draft); err != nil {
		h.HandleError(c, err)
		return draft, false
	}
	return draft, true
}
