// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses and the mapping
// from ledger errors to status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"keuangan/internal/core"
	applog "keuangan/internal/log"
	"keuangan/internal/services"
	ports "keuangan/internal/sheets"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Written *int   `json:"written,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnauthorizedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "authentication required")
}

func MethodNotAllowedError(allowed string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Header("Allow", allowed)
}

// ServiceError maps a ledger error to its response: validation 422,
// unauthenticated 401, store unavailable 503, partial write 500 with the
// row counts, anything else 500.
func ServiceError(err error) *JSONResponseBuilder {
	var ve *core.ValidationError
	var pw *ports.PartialWriteError
	switch {
	case errors.As(err, &ve):
		return NewJSONResponse().Status(http.StatusUnprocessableEntity).
			Body(errorBody{Error: ve.Err.Error(), Field: ve.Field})
	case errors.Is(err, services.ErrUnauthenticated):
		return UnauthorizedError()
	case errors.Is(err, ports.ErrBackingStoreUnavailable):
		return ErrorResponse(http.StatusServiceUnavailable, "ledger store unavailable").Header("Retry-After", "30")
	case errors.As(err, &pw):
		written, total := pw.Written, pw.Total
		return NewJSONResponse().Status(http.StatusInternalServerError).
			Body(errorBody{Error: "partial write", Written: &written, Total: &total})
	}
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

// writeServiceError logs server-side failures and writes the mapped response.
func writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	resp := ServiceError(err)
	if resp.statusCode >= 500 {
		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogError(ctx, "Ledger operation failed", err, applog.ComponentHTTP, op, applog.NewFields())
	}
	resp.Write(w)
}
