package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/handlers"
	middlewareCustom "github.com/BradenHooton/conecta/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Events        *handlers.EventHandler
	Notifications *handlers.NotificationHandler
	Profile       *handlers.ProfileHandler
	Admin         *handlers.AdminHandler
	Media         *handlers.MediaHandler
	Catalog       http.HandlerFunc
	Health        http.HandlerFunc
}

// Config carries the router-level settings.
type Config struct {
	Env                  string
	AllowedOrigins       []string
	AuthRatePerMinute    int
	RequestTimeout       time.Duration
	SessionRatePerMinute int
	TrustedProxies       []string
}

// NewRouter builds the router with the global middleware chain and every route.
func NewRouter(cfg Config, h Handlers, tokenManager *auth.TokenManager, sessions auth.SessionReader, logger *slog.Logger) chi.Router {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	RegisterRoutes(router, cfg, h, tokenManager, sessions, logger)
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	cfg Config,
	h Handlers,
	tokenManager *auth.TokenManager,
	sessions auth.SessionReader,
	logger *slog.Logger,
) {
	rateLimitConfig := middlewareCustom.DefaultAuthRateLimit()
	rateLimitConfig.TrustedProxies = cfg.TrustedProxies
	if cfg.AuthRatePerMinute > 0 {
		rateLimitConfig.RequestsPerMinute = cfg.AuthRatePerMinute
	}
	sessionLimitConfig := middlewareCustom.DefaultSessionRateLimit()
	sessionLimitConfig.TrustedProxies = cfg.TrustedProxies
	if cfg.SessionRatePerMinute > 0 {
		sessionLimitConfig.RequestsPerMinute = cfg.SessionRatePerMinute
	}

	// Public routes - no authentication required
	router.Get("/health", h.Health)
	router.Get("/catalog", h.Catalog)

	router.Group(func(r chi.Router) {
		r.Use(middlewareCustom.RateLimitByIP(rateLimitConfig))
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/verify", h.Auth.Verify)
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/auth/deletion-notice", h.Auth.DeletionNotice)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager, sessions, logger))
		r.Use(middlewareCustom.RateLimitBySession(sessionLimitConfig))

		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/auth/session", h.Auth.Session)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Events.List)
			r.Post("/", h.Events.Create)
			r.Get("/dates", h.Events.Dates)
			r.Get("/{id}", h.Events.Get)
			r.Put("/{id}", h.Events.Update)
			r.Delete("/{id}", h.Events.Delete)
			r.Post("/{id}/attendance", h.Events.ToggleAttendance)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications.List)
			r.Delete("/", h.Notifications.DeleteAll)
			r.Post("/read-all", h.Notifications.MarkAllRead)
			r.Post("/{id}/read", h.Notifications.MarkRead)
			r.Delete("/{id}", h.Notifications.Delete)
		})

		r.Get("/profile", h.Profile.Get)
		r.Put("/profile", h.Profile.Update)

		r.Post("/media/uploads", h.Media.PresignUpload)

		// Admin-only routes
		r.Route("/admin/users", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/", h.Admin.ListUsers)
			r.Get("/{email}", h.Admin.GetUser)
			r.Put("/{email}/blocked", h.Admin.SetBlocked)
			r.Put("/{email}/verified", h.Admin.SetVerified)
			r.Delete("/{email}", h.Admin.DeleteUser)
		})
	})
}
