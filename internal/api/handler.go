// Package api exposes the HTTP surface of the query engine: the ask
// endpoint, the catalog listing and the audit log.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"askdata/internal/catalog"
	"askdata/internal/domain"
	"askdata/internal/service"
)

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	engine  *service.Engine
	catalog *catalog.Catalog
	audit   domain.AuditRepository
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(engine *service.Engine, cat *catalog.Catalog, audit domain.AuditRepository, logger *slog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		catalog: cat,
		audit:   audit,
		logger:  logger.With("component", "api"),
	}
}

// RegisterRoutes mounts all versioned API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", h.Ask)
		r.Get("/catalog", h.GetCatalog)
		r.Get("/audit", h.ListAudit)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}
