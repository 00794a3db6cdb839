package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/handlers"
	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-bytes"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, time.Hour)
}

func testStudent() *models.User {
	return &models.User{Name: "Laura Ruiz", Email: "lruiz@uniboyaca.edu.co", PasswordHash: "$2a$04$secret", Verified: true}
}

func testAdmin() *models.User {
	return &models.User{Name: "Administrador", Email: "admin@uniboyaca.edu.co", Verified: true, IsAdmin: true}
}

func newAuthHandler(svc *handlers.MockAuthService) *handlers.AuthHandler {
	return handlers.NewAuthHandler(svc, testTokens(), nil, discardLogger())
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*models.User, error) {
			assert.Equal(t, "Laura Ruiz", name)
			assert.Equal(t, "lruiz@uniboyaca.edu.co", email)
			assert.Equal(t, "123123", password)
			u := testStudent()
			u.Verified = false
			return u, nil
		},
	}
	h := newAuthHandler(svc)

	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		Name:     "Laura Ruiz",
		Email:    "lruiz@uniboyaca.edu.co",
		Password: "123123",
	})
	w := httptest.NewRecorder()
	h.Register(w, req)

	var resp handlers.RegisterResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "lruiz@uniboyaca.edu.co", resp.User.Email)
	assert.False(t, resp.User.Verified)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		serviceErr error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "blank name",
			body:       handlers.RegisterRequest{Name: "  ", Email: "lruiz@uniboyaca.edu.co", Password: "123123"},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
			wantField:  "name",
		},
		{
			name:       "missing password",
			body:       map[string]string{"name": "Laura", "email": "lruiz@uniboyaca.edu.co"},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
			wantField:  "password",
		},
		{
			name:       "wrong domain",
			body:       handlers.RegisterRequest{Name: "Laura", Email: "laura@gmail.com", Password: "123123"},
			serviceErr: models.ErrInvalidDomain,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_domain",
		},
		{
			name:       "duplicate email",
			body:       handlers.RegisterRequest{Name: "Laura", Email: "lruiz@uniboyaca.edu.co", Password: "123123"},
			serviceErr: models.ErrDuplicateEmail,
			wantStatus: http.StatusConflict,
			wantError:  "duplicate_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockAuthService{
				RegisterFunc: func(ctx context.Context, name, email, password string) (*models.User, error) {
					return nil, tt.serviceErr
				},
			}
			h := newAuthHandler(svc)

			w := httptest.NewRecorder()
			h.Register(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/register", tt.body))

			handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantError)
			if tt.wantField != "" {
				var resp pkghttp.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantField, resp.Details)
			}
		})
	}
}

func TestAuthHandler_RegisterMalformedBody(t *testing.T) {
	h := newAuthHandler(&handlers.MockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Register(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestAuthHandler_VerifyIssuesSession(t *testing.T) {
	svc := &handlers.MockAuthService{
		VerifyFunc: func(ctx context.Context, email, code string) (*models.User, error) {
			assert.Equal(t, "789456", code)
			return testStudent(), nil
		},
	}
	tokens := testTokens()
	h := handlers.NewAuthHandler(svc, tokens, nil, discardLogger())

	w := httptest.NewRecorder()
	h.Verify(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/verify", handlers.VerifyRequest{
		Email: "lruiz@uniboyaca.edu.co",
		Code:  "789456",
	}))

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "lruiz@uniboyaca.edu.co", resp.User.Email)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "lruiz@uniboyaca.edu.co", claims.Email)
}

func TestAuthHandler_VerifyWrongCode(t *testing.T) {
	h := newAuthHandler(&handlers.MockAuthService{})

	w := httptest.NewRecorder()
	h.Verify(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/verify", handlers.VerifyRequest{
		Email: "lruiz@uniboyaca.edu.co",
		Code:  "000000",
	}))

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "invalid_code")
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"success", nil, http.StatusOK, ""},
		{"wrong password", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"not verified", models.ErrNotVerified, http.StatusForbidden, "not_verified"},
		{"blocked", models.ErrAccountBlocked, http.StatusForbidden, "account_blocked"},
		{"store failure", models.ErrInternalServer, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockAuthService{
				LoginFunc: func(ctx context.Context, email, password string) (*models.User, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return testStudent(), nil
				},
			}
			h := newAuthHandler(svc)

			w := httptest.NewRecorder()
			h.Login(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
				Email:    "lruiz@uniboyaca.edu.co",
				Password: "123123",
			}))

			if tt.wantError != "" {
				handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantError)
				return
			}
			var resp handlers.SessionResponse
			handlers.AssertJSONResponse(t, w, tt.wantStatus, &resp)
			assert.NotEmpty(t, resp.Token)
			assert.True(t, resp.ExpiresAt.After(time.Now()))
		})
	}
}

func TestAuthHandler_LoginPadsFailures(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{BaseDelay: 40 * time.Millisecond})
	h := handlers.NewAuthHandler(&handlers.MockAuthService{}, testTokens(), timing, discardLogger())

	start := time.Now()
	w := httptest.NewRecorder()
	h.Login(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Email:    "lruiz@uniboyaca.edu.co",
		Password: "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestAuthHandler_Logout(t *testing.T) {
	var loggedOut string
	svc := &handlers.MockAuthService{
		LogoutFunc: func(ctx context.Context, email string) error {
			loggedOut = email
			return nil
		},
	}
	h := newAuthHandler(svc)

	req := handlers.WithSessionUser(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), testStudent())
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "lruiz@uniboyaca.edu.co", loggedOut)
}

func TestAuthHandler_LogoutWithoutSession(t *testing.T) {
	h := newAuthHandler(&handlers.MockAuthService{})

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestAuthHandler_Session(t *testing.T) {
	h := newAuthHandler(&handlers.MockAuthService{})

	req := handlers.WithSessionUser(httptest.NewRequest(http.MethodGet, "/auth/session", nil), testStudent())
	w := httptest.NewRecorder()
	h.Session(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Laura Ruiz", resp.Name)
	assert.False(t, resp.CurrentlyBlocked)
}

func TestAuthHandler_DeletionNotice(t *testing.T) {
	pending := true
	svc := &handlers.MockAuthService{
		ConsumeDeletionNoticeFunc: func(ctx context.Context) (string, bool, error) {
			if !pending {
				return "", false, nil
			}
			pending = false
			return "Tu cuenta ha sido eliminada por un administrador.", true, nil
		},
	}
	h := newAuthHandler(svc)

	w := httptest.NewRecorder()
	h.DeletionNotice(w, httptest.NewRequest(http.MethodGet, "/auth/deletion-notice", nil))

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Contains(t, resp["message"], "eliminada")

	w = httptest.NewRecorder()
	h.DeletionNotice(w, httptest.NewRequest(http.MethodGet, "/auth/deletion-notice", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
