package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keuangan/internal/core"
	"keuangan/internal/services"
	ports "keuangan/internal/sheets"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"n": 1}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    fmt.Errorf("build: %w", &core.ValidationError{Field: "source", Err: core.ErrUnknownAccount}),
			status: http.StatusUnprocessableEntity,
			body:   `{"error":"unknown account","field":"source"}`,
		},
		{
			name:   "unauthenticated",
			err:    services.ErrUnauthenticated,
			status: http.StatusUnauthorized,
			body:   `{"error":"authentication required"}`,
		},
		{
			name:   "unavailable",
			err:    fmt.Errorf("load: %w", ports.Unavailable("spreadsheet not found", nil)),
			status: http.StatusServiceUnavailable,
			body:   `{"error":"ledger store unavailable"}`,
		},
		{
			name:   "partial write",
			err:    fmt.Errorf("append: %w", &ports.PartialWriteError{Written: 1, Total: 2, Err: errors.New("quota")}),
			status: http.StatusInternalServerError,
			body:   `{"error":"partial write","written":1,"total":2}`,
		},
		{
			name:   "other",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   `{"error":"internal error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ServiceError(tt.err).Write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(w)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "method not allowed", body["error"])
}
