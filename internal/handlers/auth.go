package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// AuthServiceInterface defines the directory operations behind /auth
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Verify(ctx context.Context, email, code string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context, email string) error
	ConsumeDeletionNotice(ctx context.Context) (string, bool, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	tokens  *auth.TokenManager
	timing  *auth.TimingDelay
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, tokens *auth.TokenManager, timing *auth.TimingDelay, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		tokens:  tokens,
		timing:  timing,
		logger:  logger,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// VerifyRequest represents the request body for account verification
type VerifyRequest struct {
	Email string `json:"email" validate:"notblank"`
	Code  string `json:"code" validate:"notblank"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// Register handles user registration
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: "Registro exitoso. Revisa tu correo para obtener el código de verificación.",
		User:    NewUserResponse(user, time.Now()),
	})
}

// Verify checks the verification code and opens a session
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeSession(w, http.StatusOK, user)
}

// Login handles user login. Failed attempts are padded to a common duration.
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if h.timing != nil {
		h.timing.WaitFrom(r.Context(), start, err == nil)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeSession(w, http.StatusOK, user)
}

// Logout ends the current session
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), user.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}

// Session returns the session user
// @Router /auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user, time.Now()))
}

// DeletionNotice returns the pending account deletion notice once. It
// responds 204 when there is none.
// @Router /auth/deletion-notice [get]
func (h *AuthHandler) DeletionNotice(w http.ResponseWriter, r *http.Request) {
	message, found, err := h.service.ConsumeDeletionNotice(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		pkghttp.WriteNoContent(w)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, status int, user *models.User) {
	resp, err := newSessionResponse(h.tokens, user)
	if err != nil {
		h.logger.Error("failed to issue session token", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	pkghttp.WriteJSON(w, status, resp)
}

func newSessionResponse(tokens *auth.TokenManager, user *models.User) (*SessionResponse, error) {
	token, expiresAt, err := tokens.GenerateSessionToken(user)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      NewUserResponse(user, time.Now()),
	}, nil
}
