package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"investpath/internal/providers"
)

// HealthHandler reports liveness and the configured provider fleet.
type HealthHandler struct {
	catalog *providers.Catalog
	logger  *slog.Logger
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(catalog *providers.Catalog, version string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("handler", "health")),
		started: time.Now(),
		version: version,
	}
}

// Routes returns a chi router for the health endpoints.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Health)
	r.Get("/providers", h.Providers)
	return r
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"time":    time.Now().UTC(),
	})
}

// Providers handles GET /api/health/providers. Unconfigured adapters
// show available=false; their chains degrade to the remaining
// candidates.
func (h *HealthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	statuses := h.catalog.Statuses()

	available := 0
	for _, s := range statuses {
		if s.Available {
			available++
		}
	}

	render.JSON(w, r, map[string]any{
		"providers": statuses,
		"total":     len(statuses),
		"available": available,
	})
}
