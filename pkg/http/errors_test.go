package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkghttp.ErrorResponse {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, 400, "test_error", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeError(t, w)
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, msg string)
		status int
		code   string
	}{
		{"bad request", pkghttp.WriteBadRequest, 400, "bad_request"},
		{"unauthorized", pkghttp.WriteUnauthorized, 401, "unauthorized"},
		{"forbidden", pkghttp.WriteForbidden, 403, "forbidden"},
		{"not found", pkghttp.WriteNotFound, 404, "not_found"},
		{"conflict", pkghttp.WriteConflict, 409, "conflict"},
		{"too many requests", pkghttp.WriteTooManyRequests, 429, "rate_limit_exceeded"},
		{"internal", pkghttp.WriteInternalError, 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "msg")

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "msg", resp.Message)
		})
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteValidationError(w, "Capacity", "must be greater than 0")

	assert.Equal(t, 400, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, "must be greater than 0", resp.Message)
	assert.Equal(t, "Capacity", resp.Details)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
