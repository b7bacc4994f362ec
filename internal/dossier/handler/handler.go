// Package handler wires the dossier endpoints to the aggregation service.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"dossier/internal/dossier"
	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/requestcontext"
)

// Service defines the lookup operation the handler depends on.
type Service interface {
	BuildDossier(ctx context.Context, q dossier.Query) (*dossier.Dossier, error)
}

// Handler exposes dossier lookups and exports. It retains the most recently
// built dossier in memory so the export endpoint can serve the download the
// UI offers after a lookup; nothing survives a restart.
type Handler struct {
	service Service
	logger  *slog.Logger

	mu   sync.Mutex
	last *dossier.Dossier
}

// New constructs a dossier handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts dossier endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossier/lookup", h.HandleLookup)
	r.Get("/dossier/export", h.HandleExport)
}

// HandleLookup handles POST /dossier/lookup requests.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.service.BuildDossier(ctx, req.Query())
	if err != nil {
		h.logger.WarnContext(ctx, "dossier lookup rejected",
			"request_id", requestID,
			"client_ip", requestcontext.ClientIP(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.mu.Lock()
	h.last = d
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "dossier lookup served",
		"request_id", requestID,
		"dossier_id", d.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, d)
}

// HandleExport handles GET /dossier/export requests, serving the last-built
// dossier as a canonical JSON download.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no dossier built yet"))
		return
	}

	data, err := dossier.Serialize(last)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dossier export failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"dossier_id", last.ID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "serialization failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "dossier-"+last.ID.String()+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
