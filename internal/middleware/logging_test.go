package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestSecureLogger_RedactsSensitiveQuery(t *testing.T) {
	var buf bytes.Buffer
	handler := SecureLogger(slog.New(slog.NewJSONHandler(&buf, nil)))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?code=789456", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := logLine(t, &buf)
	assert.Equal(t, "http_request", line["msg"])
	assert.Equal(t, "/auth/verify?[REDACTED]", line["path"])
	assert.NotContains(t, buf.String(), "789456")
}

type sessionOf models.User

func (s *sessionOf) CurrentSession(ctx context.Context) (*models.User, error) {
	u := models.User(*s)
	return &u, nil
}

func TestSecureLogger_RecordsSessionUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ana := &models.User{Name: "Ana", Email: "ana.gomez@uniboyaca.edu.co", Verified: true}

	tm := auth.NewTokenManager("logging-test-secret-at-least-32-bytes", time.Hour)
	token, _, err := tm.GenerateSessionToken(ana)
	require.NoError(t, err)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := SecureLogger(logger)(auth.AuthMiddleware(tm, (*sessionOf)(ana), logger)(failing))

	req := httptest.NewRequest(http.MethodGet, "/events?q=taller", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := logLine(t, &buf)
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "/events?q=taller", line["path"])
	assert.EqualValues(t, 500, line["status"])
	assert.Equal(t, "a********@*********.***.co", line["user"])
	assert.NotContains(t, buf.String(), "ana.gomez@uniboyaca.edu.co")
}
