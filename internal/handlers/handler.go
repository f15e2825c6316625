package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setgraph/enricher/internal/app"
	"github.com/setgraph/enricher/internal/artistdb"
	"github.com/setgraph/enricher/internal/label"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/profile"
)

type Handler struct {
	Pipeline  *app.Pipeline
	Hunter    *label.Hunter
	Profiler  *profile.Profiler
	Populator *artistdb.Populator
	Metrics   *metrics.Registry
	Log       *logger.Logger
}

func NewHandler(pipeline *app.Pipeline, hunter *label.Hunter, profiler *profile.Profiler,
	populator *artistdb.Populator, m *metrics.Registry, log *logger.Logger) *Handler {
	return &Handler{
		Pipeline:  pipeline,
		Hunter:    hunter,
		Profiler:  profiler,
		Populator: populator,
		Metrics:   m,
		Log:       log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/enrich", h.Enrich)
	r.Post("/api/labels/hunt", h.HuntLabel)
	r.Get("/api/profiles/{dj}", h.DJProfile)
	r.Get("/api/setlists/{id}/context", h.SetlistContext)
	r.Post("/api/artists/resolve", h.ResolveArtist)
	r.Get("/metrics", h.MetricsText)
	r.Get("/health", h.Health)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
