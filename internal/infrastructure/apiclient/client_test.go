package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTokens is an in-memory TokenSource
type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

type item struct {
	ID   shared.ID `json:"id"`
	Name string    `json:"name"`
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, opts...)
	require.NoError(t, err)
	return c
}

// TestClientCreation tests basic client creation
func TestClientCreation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "http://localhost:8080"}, false},
		{"with path", Config{BaseURL: "https://pos.example.vn/backend", Prefix: "api/v2"}, false},
		{"empty", Config{}, true},
		{"relative", Config{BaseURL: "localhost:8080"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
		})
	}
}

// TestBuildURL tests prefixing and query encoding
func TestBuildURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://pos.example.vn/backend/"})
	require.NoError(t, err)

	u, err := c.buildURL("serial-numbers", url.Values{"page": {"2"}, "search": {"SN 00"}})
	require.NoError(t, err)
	assert.Equal(t, "https://pos.example.vn/backend/api/serial-numbers?page=2&search=SN+00", u.String())

	u, err = c.buildURL("/api/orders/5", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pos.example.vn/backend/api/orders/5", u.String())
	assert.Equal(t, "/api", c.Prefix())
}

// TestBasicRequest tests headers, bearer injection and request IDs
func TestBasicRequest(t *testing.T) {
	var seen http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	tokens := &memTokens{token: "abc"}
	c := newTestClient(t, server, WithTokenSource(tokens))

	resp, err := c.Get(context.Background(), "/products", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Bearer abc", seen.Get("Authorization"))
	assert.Equal(t, "application/json", seen.Get("Content-Type"))
	assert.Equal(t, "application/json", seen.Get("Accept"))
	_, err = uuid.Parse(seen.Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, seen.Get(RequestIDHeader), resp.RequestID)

	tokens.Clear()
	_, err = c.Get(context.Background(), "/products", nil)
	require.NoError(t, err)
	assert.Empty(t, seen.Get("Authorization"))
}

// TestUnauthorizedClearsToken tests the conditional token clearing on 401
func TestUnauthorizedClearsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Token không hợp lệ"}`))
	}))
	defer server.Close()

	t.Run("with authorization header", func(t *testing.T) {
		tokens := &memTokens{token: "expired"}
		c := newTestClient(t, server, WithTokenSource(tokens))

		_, err := c.Get(context.Background(), "/orders", nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindUnauthorized))
		assert.Equal(t, 1, tokens.cleared)
		assert.Empty(t, tokens.Token())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Token không hợp lệ", apiErr.ServerMessage())
	})

	t.Run("without authorization header", func(t *testing.T) {
		tokens := &memTokens{}
		c := newTestClient(t, server, WithTokenSource(tokens))

		_, err := c.Post(context.Background(), "/auth/login", map[string]string{"username": "x"})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindUnauthorized))
		assert.Equal(t, 0, tokens.cleared)
	})
}

// TestErrorTaxonomy_Describe tests which statuses show the backend message
func TestErrorTaxonomy_Describe(t *testing.T) {
	loc := i18n.New("en")
	tests := []struct {
		name   string
		status int
		body   string
		shown  string
	}{
		{"rejected draft keeps the backend message", http.StatusBadRequest, `{"success":false,"message":"Thiếu tên sản phẩm"}`, "Thiếu tên sản phẩm"},
		{"forbidden keeps the backend message", http.StatusForbidden, `{"success":false,"message":"Không có quyền"}`, "Không có quyền"},
		{"server fault is generic", http.StatusInternalServerError, `{"success":false,"message":"db down"}`, loc.Message(i18n.KeyServer)},
		{"bad gateway is generic", http.StatusBadGateway, `{"message":"upstream reset"}`, loc.Message(i18n.KeyServer)},
		{"rate limit is generic", http.StatusTooManyRequests, `{"message":"slow down"}`, loc.Message(i18n.KeyRateLimited)},
		{"missing record is generic", http.StatusNotFound, `{"success":false,"message":"Serial 9 not found"}`, loc.Message(i18n.KeyNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server)
			_, err := c.Get(context.Background(), "/customers", nil)
			require.Error(t, err)
			assert.Equal(t, tt.shown, collection.Describe(loc, err, i18n.KeyGeneric))
		})
	}
}

// TestErrorTaxonomy tests status classification and message extraction
func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
		key     string
	}{
		{http.StatusBadRequest, `{"success":false,"message":"Thiếu tên sản phẩm"}`, KindRejected, "Thiếu tên sản phẩm", i18n.KeyGeneric},
		{http.StatusForbidden, `{"success":false,"error":{"code":"FORBIDDEN","message":"Không có quyền"}}`, KindForbidden, "Không có quyền", i18n.KeyForbidden},
		{http.StatusNotFound, ``, KindNotFound, "", i18n.KeyNotFound},
		{http.StatusConflict, `{"error":"duplicate serial"}`, KindRejected, "duplicate serial", i18n.KeyGeneric},
		{http.StatusTooManyRequests, `not json`, KindRateLimited, "", i18n.KeyRateLimited},
		{http.StatusInternalServerError, `{}`, KindServer, "", i18n.KeyServer},
		{http.StatusGatewayTimeout, ``, KindTimeout, "", i18n.KeyTimeout},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server)
			resp, err := c.Get(context.Background(), "/customers", nil)
			require.Error(t, err)
			require.NotNil(t, resp)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.key, apiErr.MessageKey())
			assert.Equal(t, "/api/customers", apiErr.Path)
		})
	}
}

// TestNetworkAndTimeoutErrors tests transport failures
func TestNetworkAndTimeoutErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		c, err := New(Config{BaseURL: addr})
		require.NoError(t, err)
		_, err = c.Get(context.Background(), "/products", nil)
		assert.True(t, IsKind(err, KindNetwork), "got %v", err)
	})

	t.Run("client timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		c, err := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)
		_, err = c.Get(context.Background(), "/products", nil)
		assert.True(t, IsKind(err, KindTimeout), "got %v", err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		c := newTestClient(t, server)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := c.Get(ctx, "/products", nil)
		assert.True(t, IsKind(err, KindCanceled), "got %v", err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

// TestNoRetryByDefault tests that failures are surfaced without retrying
func TestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Get(context.Background(), "/orders", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// TestRetryWhenConfigured tests opt-in retries of temporary failures
func TestRetryWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"id":1,"name":"ok"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, WithRetry(RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}))
	got, err := Send[item](context.Background(), c, http.MethodPost, "/products", map[string]string{"name": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Name)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-100)
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer rejecting.Close()
	c = newTestClient(t, rejecting, WithRetry(RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond}))
	_, err = c.Get(context.Background(), "/products", nil)
	require.Error(t, err)
	assert.Equal(t, int32(-99), calls.Load(), "4xx is not retried")
}

// TestRateLimit tests the client-side limiter
func TestRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL, RateLimitQPS: 20, RateLimitBurst: 1})
	require.NoError(t, err)

	start := time.Now()
	for range 4 {
		_, err := c.Get(context.Background(), "/products", nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, method+" "+route)
}

// TestObserver tests metrics observation with bounded route labels
func TestObserver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, server, WithObserver(obs))
	require.NoError(t, Exec(context.Background(), c, http.MethodDelete, "/orders/42", nil))

	assert.Equal(t, []string{"DELETE /api/orders/:id"}, obs.routes)
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/orders":     "/api/orders",
		"/api/orders/42":  "/api/orders/:id",
		"/api/orders/abc": "/api/orders/abc",
		"/api/customers/6f1c2b9e-8a7d-4f3e-9b1a-2c3d4e5f6a7b/orders": "/api/customers/:id/orders",
	}
	for in, want := range tests {
		assert.Equal(t, want, RouteLabel(in), in)
	}
}
