package handler

import (
	"net/http"

	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON answer
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// ErrorInfo carries a stable code and a human readable message
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo describes a page of a list response
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

func newMeta(page, perPage, totalItems int) *MetaInfo {
	meta := &MetaInfo{Page: page, PerPage: perPage, TotalItems: totalItems}
	if perPage > 0 {
		meta.TotalPages = (totalItems + perPage - 1) / perPage
	}
	return meta
}

// respond stamps the correlation id on r and writes it
func respond(c *gin.Context, status int, r *Response) {
	r.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, r)
}

func RespondWithData(c *gin.Context, statusCode int, data any) {
	respond(c, statusCode, &Response{Data: data})
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, &Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondWithPaginatedData(c *gin.Context, statusCode int, data any, page, perPage, totalItems int) {
	respond(c, statusCode, &Response{Data: data, Meta: newMeta(page, perPage, totalItems)})
}

// RespondNotImplemented sends a 501 whose data explains what is missing
func RespondNotImplemented(c *gin.Context, code string, data any, message string) {
	respond(c, http.StatusNotImplemented, &Response{Data: data, Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondOK(c *gin.Context, data any)      { RespondWithData(c, http.StatusOK, data) }
func RespondCreated(c *gin.Context, data any) { RespondWithData(c, http.StatusCreated, data) }
func RespondNoContent(c *gin.Context)         { c.Status(http.StatusNoContent) }

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}
