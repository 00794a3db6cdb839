package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and store health.
func HealthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "store": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "store": "up"})
	}
}
