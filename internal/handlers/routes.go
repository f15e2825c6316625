package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/setgraph/enricher/internal/app"
	"github.com/setgraph/enricher/internal/artistdb"
	"github.com/setgraph/enricher/internal/domain"
)

type enrichRequest struct {
	Task          domain.EnrichmentTask `json:"task"`
	ExistingLabel string                `json:"existing_label,omitempty"`
	DJName        string                `json:"dj_name,omitempty"`
	PlaylistID    string                `json:"playlist_id,omitempty"`
	Position      int                   `json:"position,omitempty"`
}

func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Pipeline.EnrichTrack(r.Context(), req.Task, app.Options{
		ExistingLabel: req.ExistingLabel,
		DJName:        req.DJName,
		PlaylistID:    req.PlaylistID,
		Position:      req.Position,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTask) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type huntLabelRequest struct {
	TrackTitle    string `json:"track_title"`
	ArtistName    string `json:"artist_name"`
	ExistingLabel string `json:"existing_label,omitempty"`
}

func (h *Handler) HuntLabel(w http.ResponseWriter, r *http.Request) {
	var req huntLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	candidate, err := h.Hunter.FindLabel(r.Context(), req.TrackTitle, req.ArtistName, req.ExistingLabel)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"label": candidate})
}

func (h *Handler) DJProfile(w http.ResponseWriter, r *http.Request) {
	djName := chi.URLParam(r, "dj")

	profile, err := h.Profiler.BuildProfile(r.Context(), djName)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if profile == nil {
		h.writeError(w, http.StatusNotFound, errors.New("no tracks attributed to dj"))
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetlistContext(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil || position < 1 {
		h.writeError(w, http.StatusBadRequest, errors.New("position must be a positive integer"))
		return
	}

	sc, err := h.Profiler.GetSetlistContext(r.Context(), playlistID, position)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sc == nil {
		h.writeError(w, http.StatusNotFound, errors.New("setlist has no tracks"))
		return
	}
	h.writeJSON(w, http.StatusOK, sc)
}

type resolveArtistRequest struct {
	Name              string   `json:"name"`
	MusicBrainzID     string   `json:"musicbrainz_id,omitempty"`
	SpotifyID         string   `json:"spotify_id,omitempty"`
	Genres            []string `json:"genres,omitempty"`
	SpotifyPopularity int      `json:"spotify_popularity,omitempty"`
}

func (h *Handler) ResolveArtist(w http.ResponseWriter, r *http.Request) {
	var req resolveArtistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	resolution, err := h.Populator.GetOrCreateArtist(r.Context(), artistdb.Input{
		Name:              req.Name,
		MusicBrainzID:     req.MusicBrainzID,
		SpotifyID:         req.SpotifyID,
		Genres:            req.Genres,
		SpotifyPopularity: req.SpotifyPopularity,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"outcome":   string(resolution.Outcome),
		"artist_id": resolution.ArtistID,
	})
}

func (h *Handler) MetricsText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := h.Metrics.WriteText(w); err != nil {
		h.Log.Error("failed to write metrics", "error", err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
