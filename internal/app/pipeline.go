// Package app wires the enrichment stages into one pipeline: label hunting
// first (cheap, sharpens downstream searches), then the per-field waterfall,
// then artist resolution, with DJ-context scoring when a setlist position is
// known.
package app

import (
	"context"

	"github.com/setgraph/enricher/internal/artistdb"
	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/enrich"
	"github.com/setgraph/enricher/internal/label"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/profile"
)

type Pipeline struct {
	hunter    *label.Hunter
	enricher  *enrich.Enricher
	populator *artistdb.Populator
	profiler  *profile.Profiler
	log       *logger.Logger
}

func NewPipeline(hunter *label.Hunter, enricher *enrich.Enricher, populator *artistdb.Populator,
	profiler *profile.Profiler, log *logger.Logger) *Pipeline {
	return &Pipeline{
		hunter:    hunter,
		enricher:  enricher,
		populator: populator,
		profiler:  profiler,
		log:       log.WithComponent("pipeline"),
	}
}

// Options carry the optional DJ/setlist context for a task.
type Options struct {
	ExistingLabel string
	DJName        string
	PlaylistID    string
	Position      int
}

// Result is everything one pipeline run produced.
type Result struct {
	Metadata       *domain.EnrichedMetadata `json:"metadata"`
	Label          *domain.LabelCandidate   `json:"label,omitempty"`
	Artist         *artistdb.Resolution     `json:"artist,omitempty"`
	ArtistAffinity *float64                 `json:"artist_affinity,omitempty"`
	Coherence      *domain.CoherenceScores  `json:"coherence,omitempty"`
}

// EnrichTrack runs the full pipeline for one task. Stage failures degrade
// the result instead of aborting it; only a malformed task errors out.
func (p *Pipeline) EnrichTrack(ctx context.Context, task domain.EnrichmentTask, opts Options) (*Result, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	log := p.log.WithTask(task.TrackID, task.TrackTitle)

	result := &Result{}

	labelCandidate, err := p.hunter.FindLabel(ctx, task.TrackTitle, task.ArtistName, opts.ExistingLabel)
	if err != nil {
		log.Warn("label hunt failed, proceeding without label", "error", err)
	} else {
		result.Label = labelCandidate
	}

	metadata, err := p.enricher.EnrichFields(ctx, task)
	if err != nil {
		return nil, err
	}
	result.Metadata = metadata

	if task.ArtistName != "" {
		resolution, err := p.populator.GetOrCreateArtist(ctx, artistdb.Input{
			Name:          task.ArtistName,
			MusicBrainzID: task.MusicBrainzID,
			SpotifyID:     task.SpotifyID,
		})
		if err != nil {
			log.Warn("artist resolution failed", "artist", task.ArtistName, "error", err)
		}
		if resolution.Outcome != "" {
			result.Artist = &resolution
		}
	}

	p.scoreContext(ctx, task, opts, result, log)
	return result, nil
}

// scoreContext adds the DJ-profile prior and setlist coherence when the
// caller supplied that context. Both are advisory; failures only log.
func (p *Pipeline) scoreContext(ctx context.Context, task domain.EnrichmentTask, opts Options, result *Result, log *logger.Logger) {
	if opts.DJName != "" && task.ArtistName != "" {
		djProfile, err := p.profiler.BuildProfile(ctx, opts.DJName)
		if err != nil {
			log.Warn("dj profile build failed", "dj", opts.DJName, "error", err)
		} else {
			affinity := p.profiler.ArtistAffinity(djProfile, task.ArtistName)
			result.ArtistAffinity = &affinity
		}
	}

	if opts.PlaylistID == "" || opts.Position <= 0 {
		return
	}
	sc, err := p.profiler.GetSetlistContext(ctx, opts.PlaylistID, opts.Position)
	if err != nil {
		log.Warn("setlist context lookup failed", "playlist_id", opts.PlaylistID, "error", err)
		return
	}
	if sc == nil {
		return
	}

	coherence := profile.CheckContextualCoherence(*sc, p.candidateFromResult(task, result))
	result.Coherence = &coherence
}

// candidateFromResult assembles the candidate metadata record scored against
// the setlist neighbors, preferring waterfall output and falling back to the
// label hunt.
func (p *Pipeline) candidateFromResult(task domain.EnrichmentTask, result *Result) domain.NeighborTrack {
	candidate := domain.NeighborTrack{
		Title:  task.TrackTitle,
		Artist: task.ArtistName,
	}
	if v, ok := result.Metadata.Value(enrich.FieldGenre); ok {
		candidate.Genre, _ = v.(string)
	}
	if v, ok := result.Metadata.Value(enrich.FieldBPM); ok {
		candidate.BPM, _ = v.(float64)
	}
	if v, ok := result.Metadata.Value(enrich.FieldKey); ok {
		candidate.Key, _ = v.(string)
	}
	if v, ok := result.Metadata.Value(enrich.FieldLabel); ok {
		candidate.Label, _ = v.(string)
	} else if result.Label != nil {
		candidate.Label = result.Label.LabelName
	}
	return candidate
}
