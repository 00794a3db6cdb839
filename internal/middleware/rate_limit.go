package middleware

import (
	"net/http"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For and
	// X-Real-IP headers are honoured when keying by client IP.
	TrustedProxies []string
}

// DefaultAuthRateLimit returns default rate limit config for auth endpoints (10 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// DefaultSessionRateLimit returns the limit applied per session user on authenticated routes
func DefaultSessionRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
	}
}

func clientIPKey(config RateLimitConfig) httprate.KeyFunc {
	ipConfig := &pkghttp.IPConfig{TrustedProxies: config.TrustedProxies}
	return func(r *http.Request) (string, error) {
		return pkghttp.ExtractClientIP(r, ipConfig), nil
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Demasiadas solicitudes, intenta de nuevo en un minuto")
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(clientIPKey(config)),
		httprate.WithLimitHandler(writeRateLimited),
	)
}

// RateLimitBySession rate limits by session email, falling back to the client
// IP when no session user is in context. It must run after AuthMiddleware.
func RateLimitBySession(config RateLimitConfig) func(next http.Handler) http.Handler {
	byIP := clientIPKey(config)
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if user := auth.GetUserFromContext(r); user != nil {
				return "session:" + user.Email, nil
			}
			return byIP(r)
		}),
		httprate.WithLimitHandler(writeRateLimited),
	)
}
