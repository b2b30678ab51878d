package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/domain/catalog"
	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/trade"
	"github.com/erp/posconsole/internal/infrastructure/config"
	"github.com/erp/posconsole/internal/infrastructure/csvexport"
	"github.com/erp/posconsole/internal/infrastructure/metrics"
	"github.com/erp/posconsole/internal/interfaces/devserver"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixture() devserver.Dataset {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return devserver.Dataset{
		Branches: []partner.Branch{
			{ID: "1", Code: "CN01", Name: "Quận 1", Status: partner.BranchStatusActive},
			{ID: "2", Code: "CN02", Name: "Thủ Đức", Status: partner.BranchStatusInactive},
		},
		Products: []catalog.Product{
			{ID: "1", SKU: "IP15", Name: "iPhone 15", Price: decimal.NewFromInt(20000000)},
			{ID: "2", SKU: "S24", Name: "Galaxy S24", Price: decimal.NewFromInt(18000000)},
		},
		Serials: []inventory.SerialNumber{
			{ID: "1", SerialNumber: "SN001", ProductID: "1", ProductName: "iPhone 15", BranchID: "1", Status: inventory.SerialStatusInStock, CreatedAt: created},
			{ID: "2", SerialNumber: "SN002", ProductID: "1", ProductName: "iPhone 15", BranchID: "1", Status: inventory.SerialStatusSold, CreatedAt: created},
			{ID: "3", SerialNumber: "SN003", ProductID: "2", ProductName: "Galaxy S24", BranchID: "1", Status: inventory.SerialStatusInStock, CreatedAt: created},
		},
		Orders: []trade.Order{
			{ID: "1", OrderCode: "DH1", BranchID: "1", TotalAmount: decimal.NewFromInt(20000000), PaymentMethod: trade.PaymentMethodCash, Status: trade.OrderStatusCompleted, CreatedAt: created},
			{ID: "2", OrderCode: "DH2", BranchID: "1", TotalAmount: decimal.NewFromInt(500000), PaymentMethod: trade.PaymentMethodCard, Status: trade.OrderStatusPending, CreatedAt: created},
		},
	}
}

type harness struct {
	app    *App
	server *devserver.Server
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	dir    string
}

func newHarness(t *testing.T, exporter *metrics.Exporter) *harness {
	t.Helper()
	return newHarnessWith(t, exporter, nil, nil)
}

// newHarnessWith logs to log and routes every request through wrap
func newHarnessWith(t *testing.T, exporter *metrics.Exporter, log *zap.Logger, wrap func(http.Handler) http.Handler) *harness {
	t.Helper()
	server := devserver.New(config.DevServerConfig{
		JWTSecret: "cli-test-secret-0123456789",
		TokenTTL:  time.Hour,
		Username:  "admin",
		Password:  "admin123",
	}, 20, fixture(), nil)
	handler := server.Handler()
	if wrap != nil {
		handler = wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "posconsole", Env: "test", Locale: "en"},
		API:  config.APIConfig{BaseURL: ts.URL, Prefix: "/api", Timeout: 5 * time.Second},
		Auth: config.AuthConfig{TokenFile: filepath.Join(dir, "token")},
		View: config.ViewConfig{PageSize: 2, Debounce: 10 * time.Millisecond},
	}
	h := &harness{server: server, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, dir: dir}
	app, err := New(cfg, log, Options{Stdout: h.stdout, Stderr: h.stderr, Metrics: exporter})
	require.NoError(t, err)
	h.app = app
	return h
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.app.Run(context.Background(), args)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.run("login", "-username", "admin", "-password", "admin123"), h.stderr.String())
}

func TestRun_LoginStoresToken(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	assert.Contains(t, h.stderr.String(), "[SUCCESS] Logged in")
	raw, err := os.ReadFile(filepath.Join(h.dir, "token"))
	require.NoError(t, err)
	assert.NotEmpty(t, bytes.TrimSpace(raw))

	require.NoError(t, h.run("logout"))
	assert.Contains(t, h.stderr.String(), "Logged out")
	assert.Empty(t, h.app.tokens.Token())
}

func TestRun_LoginMissingPassword(t *testing.T) {
	h := newHarness(t, nil)
	t.Setenv(passwordEnv, "")
	err := h.run("login", "-username", "admin")
	assert.True(t, errors.Is(err, errUsage))
}

func TestRun_List(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
		footer   string
	}{
		{
			name:     "first page",
			args:     []string{"list", "serials"},
			contains: []string{"SN001", "SN002"},
			excludes: []string{"SN003"},
			footer:   "Page 1/2, 3 records total",
		},
		{
			name:     "flags after the resource",
			args:     []string{"list", "serials", "-page", "2"},
			contains: []string{"SN003"},
			excludes: []string{"SN001"},
			footer:   "Page 2/2, 3 records total",
		},
		{
			name:     "status and filter",
			args:     []string{"list", "-status", "in_stock", "-filter", "product=2", "serial-numbers"},
			contains: []string{"SN003"},
			excludes: []string{"SN001", "SN002"},
			footer:   "Page 1/1, 1 records total",
		},
		{
			name:     "wire filter name",
			args:     []string{"list", "serials", "-filter", "product_id=1", "-search", "sn002"},
			contains: []string{"SN002"},
			excludes: []string{"SN001"},
			footer:   "Page 1/1, 1 records total",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, h.run(tt.args...), h.stderr.String())
			out := h.stdout.String()
			assert.Contains(t, out, "SERIAL")
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
			assert.Contains(t, out, tt.footer)
		})
	}

	t.Run("empty result", func(t *testing.T) {
		require.NoError(t, h.run("list", "serials", "-search", "nothing-matches"))
		assert.Contains(t, h.stdout.String(), "No data")
	})
}

// pageRecorder records the page parameter of every serial list request
type pageRecorder struct {
	mu    sync.Mutex
	pages []string
}

func (r *pageRecorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet && req.URL.Path == "/api/serial-numbers" {
			r.mu.Lock()
			r.pages = append(r.pages, req.URL.Query().Get("page"))
			r.mu.Unlock()
		}
		next.ServeHTTP(w, req)
	})
}

func (r *pageRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = nil
}

func (r *pageRecorder) requested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pages...)
}

func TestRun_ListClampsPageBeforeRequesting(t *testing.T) {
	rec := &pageRecorder{}
	h := newHarnessWith(t, nil, nil, rec.wrap)
	h.login(t)

	tests := []struct {
		name      string
		page      string
		requested []string
		contains  string
		footer    string
	}{
		{"beyond the last page", "99", []string{"1", "2"}, "SN003", "Page 2/2, 3 records total"},
		{"last page", "2", []string{"1", "2"}, "SN003", "Page 2/2, 3 records total"},
		{"first page", "1", []string{"1"}, "SN001", "Page 1/2, 3 records total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.reset()
			require.NoError(t, h.run("list", "serials", "-page", tt.page), h.stderr.String())
			assert.Equal(t, tt.requested, rec.requested())
			assert.Contains(t, h.stdout.String(), tt.contains)
			assert.Contains(t, h.stdout.String(), tt.footer)
		})
	}
}

func TestRun_LogsCarryCommandAndResource(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := newHarnessWith(t, nil, zap.New(core), nil)
	h.login(t)

	require.NoError(t, h.run("list", "serials"), h.stderr.String())

	completed := logs.FilterMessage("request completed").FilterField(zap.String("resource", "serials")).All()
	require.NotEmpty(t, completed)
	fields := completed[len(completed)-1].ContextMap()
	assert.Equal(t, "list", fields["command"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRun_ListWithoutLogin(t *testing.T) {
	h := newHarness(t, nil)

	err := h.run("list", "serials")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, h.stderr.String(), "[ERROR]")
	assert.Equal(t, ExitError, h.app.report(err))
}

func TestRun_CreateUpdate(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	require.NoError(t, h.run("create", "serials", "-data", `{"serial_number":"SN100","product_id":"2","branch_id":"1"}`), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "SN100")
	assert.Contains(t, h.stderr.String(), "[SUCCESS] Created successfully")
	assert.Equal(t, 4, h.server.Store().Serials.Len())

	t.Run("invalid draft issues no request", func(t *testing.T) {
		err := h.run("create", "serials", "-data", `{"product_id":"2"}`)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "[WARNING]")
		assert.Contains(t, h.stderr.String(), "serial_number")
		assert.Equal(t, 4, h.server.Store().Serials.Len())
	})

	t.Run("malformed json", func(t *testing.T) {
		err := h.run("create", "serials", "-data", `{`)
		require.Error(t, err)
		assert.False(t, errors.Is(err, errReported))
	})

	t.Run("update keeps unspecified fields", func(t *testing.T) {
		require.NoError(t, h.run("update", "serials", "3", "-data", `{"notes":"màn hình trầy"}`), h.stderr.String())
		updated, err := h.server.Store().Serials.Get(context.Background(), "3")
		require.NoError(t, err)
		assert.Equal(t, "màn hình trầy", updated.Notes)
		assert.Equal(t, "SN003", updated.SerialNumber)
		assert.Equal(t, inventory.SerialStatusInStock, updated.Status)
	})
}

func TestRun_DeleteGuard(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	err := h.run("delete", "serials", "2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, h.stderr.String(), "[WARNING] Cannot delete a record with status sold")
	assert.Equal(t, 3, h.server.Store().Serials.Len())

	require.NoError(t, h.run("delete", "serials", "1"), h.stderr.String())
	assert.Contains(t, h.stderr.String(), "Deleted successfully")
	assert.Equal(t, 2, h.server.Store().Serials.Len())
}

func TestRun_ShowStats(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	t.Run("server stats", func(t *testing.T) {
		require.NoError(t, h.run("show-stats", "orders"), h.stderr.String())
		out := h.stdout.String()
		assert.Contains(t, out, "completed")
		assert.Contains(t, out, "pending")
		assert.Contains(t, out, "50.0%")
		assert.Contains(t, out, "Total: 2")
	})

	t.Run("computed locally", func(t *testing.T) {
		require.NoError(t, h.run("show-stats", "branches"), h.stderr.String())
		out := h.stdout.String()
		assert.Contains(t, out, "active")
		assert.Contains(t, out, "inactive")
		assert.Contains(t, out, "Total: 2")
	})
}

func TestRun_Export(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)
	outDir := filepath.Join(h.dir, "exports") + string(os.PathSeparator)

	t.Run("csv file", func(t *testing.T) {
		target := filepath.Join(h.dir, "serials.csv")
		require.NoError(t, h.run("export", "serials", "-status", "in_stock", "-out", target), h.stderr.String())

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		doc, err := csvexport.Parse(data)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.RowCount())
		assert.Contains(t, h.stdout.String(), "Previewing 2 of 2 rows")
		assert.Contains(t, h.stderr.String(), "Exported 2 rows to "+target)

		err = h.run("export", "serials", "-out", target)
		assert.ErrorIs(t, err, csvexport.ErrFileExists)
		require.NoError(t, h.run("export", "serials", "-out", target, "-force"))
	})

	t.Run("json envelope", func(t *testing.T) {
		require.NoError(t, h.run("export", "orders", "-out", outDir), h.stderr.String())
		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, h.stdout.String(), "DH1")
	})

	t.Run("resource without export", func(t *testing.T) {
		err := h.run("export", "branches")
		assert.True(t, errors.Is(err, errUsage))
	})
}

func TestRun_Resources(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.run("resources"))
	for _, name := range []string{"serials", "warranties", "claims", "products", "customers", "branches", "distributors", "orders", "purchase-orders"} {
		assert.Contains(t, h.stdout.String(), name)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing resource", []string{"list"}},
		{"unknown resource", []string{"list", "widgets"}},
		{"missing id", []string{"delete", "serials"}},
		{"missing data", []string{"create", "serials"}},
		{"bad filter", []string{"list", "serials", "-filter", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.run(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errUsage), err.Error())
			assert.Equal(t, ExitUsage, h.app.report(err))
		})
	}
}

func TestRun_MetricsObserveRequests(t *testing.T) {
	exporter := metrics.NewExporter(metrics.DefaultExporterConfig())
	h := newHarness(t, exporter)
	h.login(t)
	require.NoError(t, h.run("list", "serials"))

	families, err := exporter.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names[metrics.MetricAPIRequestsTotal])
	assert.True(t, names[metrics.MetricViewFetchesTotal])
}
