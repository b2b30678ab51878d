package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ apiclient.Observer = (*Exporter)(nil)
	_ collection.Metrics = (*Exporter)(nil)
)

func findFamily(t *testing.T, e *Exporter, name string) *dto.MetricFamily {
	t.Helper()
	families, err := e.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestNewExporter(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		e := NewExporter(ExporterConfig{})
		assert.Equal(t, "127.0.0.1:9464", e.config.Addr)
		assert.Equal(t, "/metrics", e.config.Path)
		assert.Equal(t, prometheus.DefBuckets, e.config.HistogramBuckets)
		assert.False(t, e.IsRunning())
	})

	t.Run("custom config", func(t *testing.T) {
		e := NewExporter(ExporterConfig{Addr: ":9999", Path: "/m", HistogramBuckets: []float64{0.1, 1}})
		assert.Equal(t, ":9999", e.config.Addr)
		assert.Equal(t, "/m", e.config.Path)
	})
}

func TestExporter_ObserveRequest(t *testing.T) {
	e := NewExporter(DefaultExporterConfig())

	e.ObserveRequest(http.MethodGet, "/api/orders", 200, 120*time.Millisecond)
	e.ObserveRequest(http.MethodGet, "/api/orders", 200, 80*time.Millisecond)
	e.ObserveRequest(http.MethodDelete, "/api/orders/:id", 0, time.Second)

	family := findFamily(t, e, MetricAPIRequestsTotal)
	require.NotNil(t, family)
	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		l := labelsOf(m)
		counts[l["method"]+" "+l["route"]+" "+l["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"GET /api/orders 200":          2,
		"DELETE /api/orders/:id error": 1,
	}, counts)

	durations := findFamily(t, e, MetricAPIRequestDuration)
	require.NotNil(t, durations)
	assert.Len(t, durations.GetMetric(), 2)
}

func TestExporter_ViewMetrics(t *testing.T) {
	e := NewExporter(DefaultExporterConfig())

	e.ObserveFetch("serials", collection.OutcomeSuccess, 50*time.Millisecond)
	e.ObserveFetch("serials", collection.OutcomeStale, 10*time.Millisecond)
	e.ObserveFetch("", collection.OutcomeError, time.Millisecond)
	e.ObserveMutation("serials", "delete", collection.OutcomeRejected)

	fetches := findFamily(t, e, MetricViewFetchesTotal)
	require.NotNil(t, fetches)
	assert.Len(t, fetches.GetMetric(), 3)

	stale := findFamily(t, e, MetricViewStaleDiscarded)
	require.NotNil(t, stale)
	require.Len(t, stale.GetMetric(), 1)
	assert.Equal(t, float64(1), stale.GetMetric()[0].GetCounter().GetValue())

	mutations := findFamily(t, e, MetricViewMutationsTotal)
	require.NotNil(t, mutations)
	require.Len(t, mutations.GetMetric(), 1)
	assert.Equal(t, map[string]string{"resource": "serials", "op": "delete", "outcome": "rejected"},
		labelsOf(mutations.GetMetric()[0]))

	var unknown bool
	for _, m := range fetches.GetMetric() {
		if labelsOf(m)["resource"] == "unknown" {
			unknown = true
		}
	}
	assert.True(t, unknown)
}

func TestExporter_Handler(t *testing.T) {
	e := NewExporter(DefaultExporterConfig())
	e.ObserveMutation("orders", "create", collection.OutcomeSuccess)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), MetricViewMutationsTotal)
}

func TestExporter_StartStop(t *testing.T) {
	e := NewExporter(ExporterConfig{Addr: "127.0.0.1:0"})

	require.NoError(t, e.Start())
	assert.True(t, e.IsRunning())
	require.NoError(t, e.Start())

	e.ObserveRequest(http.MethodGet, "/api/products", 200, time.Millisecond)
	resp, err := http.Get(e.Address())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), MetricAPIRequestsTotal))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.Stop(ctx))
	assert.False(t, e.IsRunning())
	require.NoError(t, e.Stop(ctx))
	assert.NoError(t, e.LastError())
}
