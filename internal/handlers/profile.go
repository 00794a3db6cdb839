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

// ProfileServiceInterface defines the profile extension operations
type ProfileServiceInterface interface {
	LoadProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, fields models.ProfileFields) (*models.Profile, *models.User, error)
}

// ProfileHandler handles the session user's profile
type ProfileHandler struct {
	service ProfileServiceInterface
	tokens  *auth.TokenManager
	logger  *slog.Logger
}

func NewProfileHandler(service ProfileServiceInterface, tokens *auth.TokenManager, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

// SaveProfileResponse carries a fresh session when the email changed, since
// the old token no longer matches the session.
type SaveProfileResponse struct {
	Profile *models.Profile  `json:"profile"`
	User    UserResponse     `json:"user"`
	Session *SessionResponse `json:"session,omitempty"`
}

// Get returns the session user's profile
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.LoadProfile(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// Update saves the session user's profile
// @Router /profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)

	var req models.ProfileFields
	if !decodeRequest(w, r, &req) {
		return
	}

	profile, user, err := h.service.SaveProfile(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := SaveProfileResponse{
		Profile: profile,
		User:    NewUserResponse(user, time.Now()),
	}
	if caller != nil && caller.Email != user.Email {
		session, err := newSessionResponse(h.tokens, user)
		if err != nil {
			h.logger.Error("failed to reissue session token", slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
		resp.Session = session
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
