package devserver

import (
	"errors"
	"net/http"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// Error codes returned in the error body
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDeleteNotAllowed = "DELETE_NOT_ALLOWED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// Response is the envelope of every API response
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// Pagination is the pagination block of list responses
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// BaseHandler provides response helpers
type BaseHandler struct{}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage sends a 200 response with a message and no data
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// SuccessList sends one page with its pagination block
func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int64, page, limit int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: shared.TotalPages(total, limit),
		},
	})
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Error sends an error response
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Message: message,
		Error:   &ErrorInfo{Code: code, Message: message, RequestID: logger.GetRequestID(c.Request.Context())},
	})
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var validation *shared.ValidationError
	if errors.As(err, &validation) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Success: false,
			Message: validation.Error(),
			Error: &ErrorInfo{
				Code:      ErrCodeValidation,
				Message:   validation.Error(),
				RequestID: logger.GetRequestID(c.Request.Context()),
				Fields:    validation.Fields(),
			},
		})
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
}

func statusForCode(code string) int {
	switch code {
	case shared.ErrNotFound.Code:
		return http.StatusNotFound
	case shared.ErrDeleteNotAllowed.Code:
		return http.StatusConflict
	case shared.ErrInvalidState.Code:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
