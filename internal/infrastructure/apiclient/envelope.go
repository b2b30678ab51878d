package apiclient

import (
	"encoding/json"
)

// ErrorBody is the error object some endpoints return instead of a plain message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination is the pagination block of list responses
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// Meta is the alternative pagination block ({meta: {total, page, page_size}})
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"page_size,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// ListEnvelope is the body of list endpoints
type ListEnvelope[T any] struct {
	Success    bool        `json:"success"`
	Data       []T         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       *Meta       `json:"meta,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
}

// Total returns the collection size reported by the server, falling back to
// the number of returned items
func (e ListEnvelope[T]) Total() int64 {
	switch {
	case e.Pagination != nil:
		return e.Pagination.Total
	case e.Meta != nil:
		return e.Meta.Total
	default:
		return int64(len(e.Data))
	}
}

// Envelope is the body of single-record and mutation endpoints
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// errorMessage extracts the server message from any error-shaped body
func errorMessage(body []byte) (code, message string) {
	var shape struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &shape) != nil {
		return "", ""
	}
	message = shape.Message
	if len(shape.Error) > 0 {
		var eb ErrorBody
		if json.Unmarshal(shape.Error, &eb) == nil {
			code = eb.Code
			if message == "" {
				message = eb.Message
			}
		} else {
			var s string
			if json.Unmarshal(shape.Error, &s) == nil && message == "" {
				message = s
			}
		}
	}
	return code, message
}
