package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AdminServiceInterface defines the user management operations
type AdminServiceInterface interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, email string) (*models.User, error)
	SetBlocked(ctx context.Context, actor *models.User, email string, blocked bool) (*models.User, error)
	SetVerified(ctx context.Context, actor *models.User, email string, verified bool) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, email string) error
}

// AdminHandler handles admin user management requests
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// SetBlockedRequest represents the request body for blocking a user
type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

// SetVerifiedRequest represents the request body for verifying a user
type SetVerifiedRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// UserListResponse wraps the managed users
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

// ListUsers returns every managed student
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := time.Now()
	resp := UserListResponse{Users: make([]UserResponse, 0, len(users)), Count: len(users)}
	for i := range users {
		resp.Users = append(resp.Users, NewUserResponse(&users[i], now))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// emailParam returns the decoded {email} path parameter. chi matches against
// the raw path, so an encoded "@" arrives as "%40".
func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "Correo inválido en la ruta")
		return "", false
	}
	return email, true
}

// GetUser returns one directory record
// @Router /admin/users/{email} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user, time.Now()))
}

// SetBlocked blocks a user for a year or lifts the block
// @Router /admin/users/{email}/blocked [put]
func (h *AdminHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	var req SetBlockedRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.SetBlocked(r.Context(), auth.GetUserFromContext(r), email, *req.Blocked)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user, time.Now()))
}

// SetVerified sets a user's verified flag
// @Router /admin/users/{email}/verified [put]
func (h *AdminHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	var req SetVerifiedRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.SetVerified(r.Context(), auth.GetUserFromContext(r), email, *req.Verified)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user, time.Now()))
}

// DeleteUser removes a user
// @Router /admin/users/{email} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), auth.GetUserFromContext(r), email); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
