package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.Handler) *apiclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := apiclient.New(apiclient.Config{BaseURL: server.URL, Prefix: "/api"})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// TestRESTAdapter_List tests query encoding and page truncation
func TestRESTAdapter_List(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/serial-numbers", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		items := make([]map[string]any, 0, 25)
		for i := range 25 {
			items = append(items, map[string]any{"id": i + 1, "serial_number": "SN", "status": "in_stock"})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"data":       items,
			"pagination": map[string]any{"total": 45},
		})
	})
	adapter := Serials.REST(newClient(t, mux))

	q := shared.NewListQuery(20)
	q.SetSearch("SN00")
	q.SetFilter(FilterProduct, "3")
	page, err := adapter.List(context.Background(), q)

	require.NoError(t, err)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, int64(45), page.TotalCount)
	assert.Equal(t, "limit=20&page=1&product_id=3&search=SN00", gotQuery)
}

// TestRESTAdapter_CRUD tests create, get, update and delete paths and methods
func TestRESTAdapter_CRUD(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, status int) {
		writeJSON(w, status, map[string]any{
			"success": true,
			"data":    map[string]any{"id": 7, "code": "CN7", "name": "Chi nhánh Quận 1", "status": "active"},
		})
	}
	mux.HandleFunc("POST /api/branches", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "POST")
		var d partner.BranchDraft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "Chi nhánh Quận 1", d.Name)
		record(w, http.StatusCreated)
	})
	mux.HandleFunc("GET /api/branches/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "GET "+r.PathValue("id"))
		record(w, http.StatusOK)
	})
	mux.HandleFunc("PUT /api/branches/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "PUT "+r.PathValue("id"))
		record(w, http.StatusOK)
	})
	mux.HandleFunc("DELETE /api/branches/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "DELETE "+r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	adapter := Branches.REST(newClient(t, mux))
	ctx := context.Background()
	draft := partner.BranchDraft{Name: "Chi nhánh Quận 1", Address: "1 Lê Lợi"}

	created, err := adapter.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "7", created.RecordID())

	got, err := adapter.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "CN7", got.Code)

	_, err = adapter.Update(ctx, "7", draft)
	require.NoError(t, err)
	require.NoError(t, adapter.Delete(ctx, "7"))

	assert.Equal(t, []string{"POST", "GET 7", "PUT 7", "DELETE 7"}, calls)
}

// TestRESTAdapter_LoadStats tests the stats endpoint and resources without one
func TestRESTAdapter_LoadStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"total": 12, "by_status": map[string]int{"completed": 9, "pending": 3}, "amount": "15000000"},
		})
	})
	client := newClient(t, mux)

	s, err := Orders.REST(client).LoadStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), s.Total)
	assert.Equal(t, int64(9), s.Count("completed"))

	_, err = Products.REST(client).LoadStats(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

// TestRESTAdapter_Export tests that export sends filters without pagination
func TestRESTAdapter_Export(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/serial-numbers/export", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="serials.csv"`)
		w.Write([]byte("serial_number,status\nSN0001,in_stock\n"))
	})
	client := newClient(t, mux)

	q := shared.NewListQuery(20)
	q.SetFilter(FilterStatus, "in_stock")
	res, err := Serials.REST(client).Export(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "serials.csv", res.Filename)
	assert.Equal(t, "status=in_stock", gotQuery)

	_, err = Branches.REST(client).Export(context.Background(), q)
	assert.ErrorIs(t, err, ErrUnsupported)
}

// TestView_UnsuccessfulListRendersEmpty tests that a {success:false} list
// response leaves the view in an empty, non-error state
func TestView_UnsuccessfulListRendersEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/serial-numbers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Không có dữ liệu"})
	})
	view := Serials.NewView(Serials.REST(newClient(t, mux)), collection.WithDebounce(0))
	defer view.Close()

	require.NoError(t, view.FetchPage(context.Background()))
	snap := view.Snapshot()
	assert.Equal(t, collection.StatusSuccess, snap.Status)
	assert.True(t, snap.IsEmpty())
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.TotalPages)
}

// TestView_DeleteGuardSkipsRequest tests that a sold serial is never sent to the server
func TestView_DeleteGuardSkipsRequest(t *testing.T) {
	var deletes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/serial-numbers/{id}", func(w http.ResponseWriter, r *http.Request) {
		deletes.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/serial-numbers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})
	mux.HandleFunc("GET /api/serial-numbers/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"total": 0}})
	})

	var warnings []collection.Notification
	notifier := collection.NotifierFunc(func(n collection.Notification) {
		if n.Level == collection.LevelWarning {
			warnings = append(warnings, n)
		}
	})
	view := Serials.NewView(Serials.REST(newClient(t, mux)),
		collection.WithDebounce(0), collection.WithNotifier(notifier))
	defer view.Close()

	sold := inventory.SerialNumber{ID: "1", SerialNumber: "SN0001", Status: inventory.SerialStatusSold}
	err := view.Delete(context.Background(), sold)
	assert.True(t, errors.Is(err, shared.ErrDeleteNotAllowed))
	assert.Equal(t, int32(0), deletes.Load())
	assert.Len(t, warnings, 1)

	inStock := inventory.SerialNumber{ID: "2", SerialNumber: "SN0002", Status: inventory.SerialStatusInStock}
	require.NoError(t, view.Delete(context.Background(), inStock))
	assert.Equal(t, int32(1), deletes.Load())
}
