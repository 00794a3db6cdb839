package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the session user in context
	UserContextKey contextKey = "user"

	userHolderKey contextKey = "user_holder"
)

// UserHolder lets middleware running before authentication see the session
// user once AuthMiddleware has resolved it.
type UserHolder struct {
	user *models.User
}

// User returns the resolved session user, or nil.
func (h *UserHolder) User() *models.User {
	return h.user
}

// WithUserHolder returns a copy of ctx carrying holder.
func WithUserHolder(ctx context.Context, holder *UserHolder) context.Context {
	return context.WithValue(ctx, userHolderKey, holder)
}

// SessionReader returns the stored current-user record.
type SessionReader interface {
	CurrentSession(ctx context.Context) (*models.User, error)
}

// AuthMiddleware validates the Bearer token and resolves it against the
// stored session. A token whose email no longer matches the session (logout,
// another login, account deletion) is rejected.
func AuthMiddleware(tm *TokenManager, sessions SessionReader, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := sessions.CurrentSession(r.Context())
			if err != nil {
				if errors.Is(err, models.ErrNoSession) {
					pkghttp.WriteUnauthorized(w, "session has ended")
					return
				}
				logger.Error("failed to load session", slog.Any("error", err))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if user.Email != claims.Email {
				pkghttp.WriteUnauthorized(w, "session has ended")
				return
			}

			if user.IsCurrentlyBlocked(tm.now()) {
				pkghttp.WriteForbidden(w, "account is blocked")
				return
			}

			if holder, ok := r.Context().Value(userHolderKey).(*UserHolder); ok {
				holder.user = user
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose session user is not an admin.
// It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			pkghttp.WriteUnauthorized(w, "unauthorized")
			return
		}
		if !user.IsAdmin {
			pkghttp.WriteForbidden(w, "forbidden: admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the session user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
