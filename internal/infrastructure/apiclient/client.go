// Package apiclient is the HTTP client for the POS REST backend. Every
// request carries the current bearer token, a request ID and JSON headers;
// failures are returned as *APIError values classified by Kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultPrefix is the path every domain endpoint is mounted under
	DefaultPrefix = "/api"
	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)

// TokenSource resolves and clears the bearer token
type TokenSource interface {
	Token() string
	Clear() error
}

// Observer receives per-request measurements
type Observer interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Config configures a Client
type Config struct {
	BaseURL        string
	Prefix         string
	Timeout        time.Duration
	Headers        map[string]string
	RateLimitQPS   float64 // 0 disables client-side rate limiting
	RateLimitBurst int
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	ShouldRetry func(err *APIError) bool
}

// DefaultRetryConfig returns the default retry configuration: failed requests
// are surfaced to the user immediately and never retried
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		RetryDelay: 1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		ShouldRetry: func(err *APIError) bool {
			return err.Temporary()
		},
	}
}

// Client is the HTTP client for the REST backend
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	prefix     string
	headers    map[string]string
	tokens     TokenSource
	retry      RetryConfig
	limiter    *rate.Limiter
	observer   Observer
	log        *zap.Logger
	mu         sync.RWMutex
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets the bearer token source
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetry sets the retry configuration
func WithRetry(r RetryConfig) Option {
	return func(c *Client) {
		if r.ShouldRetry == nil {
			r.ShouldRetry = DefaultRetryConfig().ShouldRetry
		}
		if r.MaxRetries < 0 {
			r.MaxRetries = 0
		}
		if r.Multiplier <= 0 {
			r.Multiplier = 2.0
		}
		c.retry = r
	}
}

// WithCookieJar attaches a cookie jar so that cookies set by the backend
// (including a token cookie) are kept between requests
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.httpClient.Jar = jar }
}

// WithObserver sets the metrics observer
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithTransport replaces the HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// New creates a new API client
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		baseURL: base,
		prefix:  "/" + strings.Trim(cfg.Prefix, "/"),
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   "posconsole/1.0",
		},
		retry: DefaultRetryConfig(),
		log:   zap.NewNop(),
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	if cfg.RateLimitQPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitQPS), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Named(c.log, "apiclient")
	return c, nil
}

// Request represents an HTTP request to be executed
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

// Do executes a request. Non-2xx responses are returned as *APIError along
// with the response. A 401 on a request that carried a bearer token clears
// the stored token; a 401 on an anonymous request does not.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var (
		resp    *Response
		lastErr *APIError
	)
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.log.Debug("retrying request",
				zap.String("method", req.Method),
				zap.String("path", u.Path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return resp, c.transportError(ctx, req.Method, u.Path, "", ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, lastErr = c.attempt(ctx, req, u, body)
		if lastErr == nil {
			return resp, nil
		}
		if lastErr.Kind == KindCanceled || attempt == c.retry.MaxRetries || !c.retry.ShouldRetry(lastErr) {
			break
		}
	}
	if lastErr == nil {
		return resp, nil
	}
	return resp, lastErr
}

func (c *Client) attempt(ctx context.Context, req Request, u *url.URL, body []byte) (*Response, *APIError) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(ctx, req.Method, u.Path, "", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Method: req.Method, Path: u.Path, Err: err}
	}
	requestID := uuid.NewString()
	c.setHeaders(httpReq, req.Headers)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	authorized := httpReq.Header.Get("Authorization") != ""

	ctx, log := logger.WithRequestID(ctx, c.requestLogger(ctx), requestID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.Method, u.Path, 0, duration)
		log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", u.Path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, c.transportError(ctx, req.Method, u.Path, requestID, err)
	}
	defer httpResp.Body.Close()

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Duration:   duration,
		RequestID:  requestID,
	}
	resp.Body, err = io.ReadAll(httpResp.Body)
	c.observe(req.Method, u.Path, httpResp.StatusCode, duration)
	log.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", u.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration),
	)
	if err != nil {
		return resp, c.transportError(ctx, req.Method, u.Path, requestID, fmt.Errorf("reading response body: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		code, message := errorMessage(resp.Body)
		apiErr := &APIError{
			Kind:       KindForStatus(httpResp.StatusCode),
			StatusCode: httpResp.StatusCode,
			Code:       code,
			Message:    message,
			Method:     req.Method,
			Path:       u.Path,
			RequestID:  requestID,
		}
		if apiErr.Kind == KindUnauthorized && authorized && c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				log.Warn("failed to clear rejected token", zap.Error(err))
			} else {
				log.Info("bearer token rejected, cleared stored token")
			}
		}
		log.Warn("request rejected",
			zap.String("method", req.Method),
			zap.String("path", u.Path),
			zap.Int("status", httpResp.StatusCode),
			zap.String("message", message),
		)
		return resp, apiErr
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, method, path, requestID string, err error) *APIError {
	return &APIError{
		Kind:      classifyTransport(ctx, err),
		Method:    method,
		Path:      path,
		RequestID: requestID,
		Err:       err,
	}
}

func (c *Client) observe(method, path string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, RouteLabel(path), status, d)
	}
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// buildURL builds a complete URL from path and query parameters
func (c *Client) buildURL(path string, query url.Values) (*url.URL, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.prefix != "/" && !strings.HasPrefix(path, c.prefix+"/") {
		path = c.prefix + path
	}
	basePath := strings.TrimRight(c.baseURL.Path, "/")

	u := *c.baseURL
	rel, err := url.Parse(basePath + path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	u.Path = rel.Path
	u.RawPath = rel.RawPath
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}

// setHeaders sets headers on the request
// requestLogger prefers the command-scoped logger carried by ctx
func (c *Client) requestLogger(ctx context.Context) *zap.Logger {
	if l := logger.FromContextOr(ctx, nil); l != nil {
		return logger.Named(l, "apiclient")
	}
	return c.log
}

func (c *Client) setHeaders(req *http.Request, customHeaders map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range customHeaders {
		req.Header.Set(k, v)
	}
}

// calculateBackoff calculates the backoff delay for the given attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retry.RetryDelay) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	if c.retry.MaxDelay > 0 && delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	// jitter of +/-25%
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	return time.Duration(delay)
}

// SetHeader sets a default header for all requests
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Prefix returns the API path prefix
func (c *Client) Prefix() string {
	return c.prefix
}
