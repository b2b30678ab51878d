package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erp/posconsole/internal/domain/shared"
	"go.uber.org/zap"
)

// GetList fetches one page of a collection. A response without success=true
// yields an empty page rather than an error.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values) (shared.Page[T], error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return shared.Page[T]{}, err
	}

	var env ListEnvelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return shared.Page[T]{}, decodeError(http.MethodGet, path, resp, err)
	}
	if !env.Success {
		c.log.Debug("list response without success, treating as empty",
			zap.String("path", path),
			zap.String("request_id", resp.RequestID),
			zap.String("message", env.Message),
		)
		return shared.EmptyPage[T](), nil
	}
	items := env.Data
	if items == nil {
		items = []T{}
	}
	return shared.Page[T]{Items: items, TotalCount: env.Total()}, nil
}

// GetOne fetches a single record
func GetOne[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	resp, err := c.Get(ctx, path, nil)
	if err != nil {
		return zero, err
	}
	return decodeRecord[T](http.MethodGet, path, resp)
}

// Send issues a mutation and decodes the record in the envelope's data field.
// success=false is an error carrying the server message.
func Send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return zero, err
	}
	return decodeRecord[T](method, path, resp)
}

// Exec issues a mutation whose response carries no record, such as a delete
func Exec(ctx context.Context, c *Client, method, path string, body any) error {
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return decodeError(method, path, resp, err)
	}
	if !env.Success {
		return rejectedError(method, path, resp, env.Message, env.Error)
	}
	return nil
}

func decodeRecord[T any](method, path string, resp *Response) (T, error) {
	var zero T
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return zero, nil
	}
	var env Envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return zero, decodeError(method, path, resp, err)
	}
	if !env.Success {
		return zero, rejectedError(method, path, resp, env.Message, env.Error)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, decodeError(method, path, resp, err)
	}
	return out, nil
}

func rejectedError(method, path string, resp *Response, message string, eb *ErrorBody) *APIError {
	apiErr := &APIError{
		Kind:       KindRejected,
		StatusCode: resp.StatusCode,
		Message:    message,
		Method:     method,
		Path:       path,
		RequestID:  resp.RequestID,
	}
	if eb != nil {
		apiErr.Code = eb.Code
		if apiErr.Message == "" {
			apiErr.Message = eb.Message
		}
	}
	return apiErr
}

func decodeError(method, path string, resp *Response, err error) *APIError {
	return &APIError{
		Kind:       KindDecode,
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		RequestID:  resp.RequestID,
		Err:        fmt.Errorf("decoding response: %w", err),
	}
}
