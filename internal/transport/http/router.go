// Package httptransport assembles the public router. It stays thin: routing,
// middleware, and operational endpoints only, with all business logic behind
// the dossier handler.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dossier/internal/dossier/handler"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/platform/middleware/metadata"
	"dossier/pkg/platform/middleware/requestid"
	"dossier/pkg/platform/middleware/requesttime"
)

// NewRouter wires all public endpoints.
func NewRouter(h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	h.Register(r)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
