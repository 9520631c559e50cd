package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/assetly/internal/pkg/config"
)

const maintenanceRetryAfter = "300"

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, or for every route when the list holds "*".
// The list is read per request so a config reload takes effect at once.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked := cfg.GetArray("app.maintenance.endpoints")
			if slices.Contains(blocked, "*") || slices.Contains(blocked, matchedRoutePath(r)) {
				w.Header().Set("Retry-After", maintenanceRetryAfter)
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
