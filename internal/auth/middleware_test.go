package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSessionReader is a mock implementation of SessionReader
type MockSessionReader struct {
	CurrentSessionFunc func(ctx context.Context) (*models.User, error)
}

func (m *MockSessionReader) CurrentSession(ctx context.Context) (*models.User, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	return nil, models.ErrNoSession
}

func sessionOf(user *models.User) *MockSessionReader {
	return &MockSessionReader{
		CurrentSessionFunc: func(ctx context.Context) (*models.User, error) {
			return user, nil
		},
	}
}

func serveWithAuth(t *testing.T, tm *TokenManager, sessions SessionReader, header string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()
	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	AuthMiddleware(tm, sessions, logger)(next).ServeHTTP(w, req)
	return w, seen
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	ana := &models.User{Name: "Ana", Email: "ana@uniboyaca.edu.co", Verified: true}
	token, _, err := tm.GenerateSessionToken(ana)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		sessions   SessionReader
		wantStatus int
	}{
		{"valid token and matching session", "Bearer " + token, sessionOf(ana), http.StatusOK},
		{"missing header", "", sessionOf(ana), http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, sessionOf(ana), http.StatusUnauthorized},
		{"garbage token", "Bearer nope", sessionOf(ana), http.StatusUnauthorized},
		{"no session", "Bearer " + token, &MockSessionReader{}, http.StatusUnauthorized},
		{"session belongs to someone else", "Bearer " + token, sessionOf(&models.User{Email: "beto@uniboyaca.edu.co"}), http.StatusUnauthorized},
		{
			"session user blocked", "Bearer " + token,
			sessionOf(&models.User{Email: ana.Email, Blocked: true, BlockedUntil: time.Now().Add(time.Hour).UnixMilli()}),
			http.StatusForbidden,
		},
		{
			"store failure", "Bearer " + token,
			&MockSessionReader{CurrentSessionFunc: func(ctx context.Context) (*models.User, error) {
				return nil, errors.New("disk on fire")
			}},
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serveWithAuth(t, tm, tt.sessions, tt.header)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, ana.Email, seen.Email)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"student", &models.User{Email: "a@uniboyaca.edu.co"}, http.StatusForbidden},
		{"admin", &models.User{Email: "admin@uniboyaca.edu.co", IsAdmin: true}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
