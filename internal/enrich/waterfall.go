package enrich

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/providers"
)

// Enricher walks each configured field's provider waterfall until a value
// clears its confidence threshold, recording provenance as it goes.
type Enricher struct {
	loader      *ConfigLoader
	registry    *providers.Registry
	extractors  ExtractorTable
	scorer      *Scorer
	metrics     *metrics.Registry
	callTimeout time.Duration
	log         *logger.Logger
}

func NewEnricher(loader *ConfigLoader, registry *providers.Registry, extractors ExtractorTable,
	scorer *Scorer, m *metrics.Registry, callTimeout time.Duration, log *logger.Logger) *Enricher {
	return &Enricher{
		loader:      loader,
		registry:    registry,
		extractors:  extractors,
		scorer:      scorer,
		metrics:     m,
		callTimeout: callTimeout,
		log:         log.WithComponent("waterfall"),
	}
}

// fetchResult caches one provider's raw response (or its failure) for the
// duration of a single task. Each provider is fetched at most once per task,
// shared across all fields.
type fetchResult struct {
	resp providers.Response
	err  error
}

// EnrichFields resolves every configured field for the task. Per-provider
// failures never abort the task; the only returned errors are
// programming-contract violations on the task itself.
func (e *Enricher) EnrichFields(ctx context.Context, task domain.EnrichmentTask) (*domain.EnrichedMetadata, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	e.loader.ReloadIfStale(ctx)

	log := e.log.WithTask(task.TrackID, task.TrackTitle)
	result := domain.NewEnrichedMetadata(uuid.NewString(), task.TrackID)
	cache := make(map[providers.ID]*fetchResult)

	for _, field := range e.loader.ConfiguredFields() {
		rules := e.loader.ProvidersForField(field)
		tried := 0

		for _, rule := range rules {
			tried++

			fetched := e.fetchOnce(ctx, cache, rule.Provider, task, log)
			if fetched.err != nil {
				e.countAttempt(rule.Provider, field, "fail")
				continue
			}

			value, ok := e.extractors.Extract(rule.Provider, field, fetched.resp)
			if !ok {
				// No extractor registered for this (provider, field):
				// an expected configuration gap, skipped silently.
				continue
			}

			confidence := e.scorer.Score(rule.Provider, field, value, fetched.resp)
			if value == nil || confidence < rule.MinConfidence {
				e.countAttempt(rule.Provider, field, "fail")
				continue
			}

			result.Set(field, value, domain.Provenance{
				Provider:     string(rule.Provider),
				Confidence:   confidence,
				PriorityRank: rule.Rank,
				RecordedAt:   time.Now().UTC(),
			})
			e.countAttempt(rule.Provider, field, "success")
			e.metrics.Inc("enrich_waterfall_rank_total", map[string]string{
				"field": field,
				"rank":  strconv.Itoa(rule.Rank),
			})
			break
		}

		if _, resolved := result.Value(field); !resolved && tried > 0 {
			// Normal outcome: the field stays absent from the output.
			log.Info("waterfall exhausted for field", "field", field, "providers_tried", tried)
			e.metrics.Inc("enrich_fields_unresolved_total", map[string]string{"field": field})
		}
	}

	return result, nil
}

// fetchOnce returns the cached raw response for a provider, fetching it on
// first use. Errors are cached too so a dead provider is only tried once per
// task.
func (e *Enricher) fetchOnce(ctx context.Context, cache map[providers.ID]*fetchResult,
	id providers.ID, task domain.EnrichmentTask, log *logger.Logger) *fetchResult {
	if cached, ok := cache[id]; ok {
		return cached
	}

	resp, err := e.fetchProvider(ctx, id, task)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithProvider(string(id)).Debug("provider fetch failed", "error", err)
	}
	result := &fetchResult{resp: resp, err: err}
	cache[id] = result
	return result
}

// fetchProvider picks the cheapest lookup the task's hints allow: a known
// provider-specific ID first, then ISRC, then fuzzy search. Every call
// carries its own timeout so a hung provider cannot stall the task.
func (e *Enricher) fetchProvider(ctx context.Context, id providers.ID, task domain.EnrichmentTask) (providers.Response, error) {
	client := e.registry.Get(id)
	if client == nil {
		return nil, errors.New("provider not registered")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	if trackID := knownProviderID(id, task); trackID != "" {
		resp, err := client.GetTrackByID(callCtx, trackID)
		if err == nil {
			return resp, nil
		}
		if !recoverableLookupErr(err) {
			return nil, err
		}
	}

	if task.ISRC != "" {
		resp, err := client.SearchByISRC(callCtx, task.ISRC)
		if err == nil {
			return resp, nil
		}
		if !recoverableLookupErr(err) {
			return nil, err
		}
	}

	return client.SearchTrack(callCtx, task.ArtistName, task.TrackTitle)
}

func knownProviderID(id providers.ID, task domain.EnrichmentTask) string {
	switch id {
	case providers.Spotify:
		return task.SpotifyID
	case providers.MusicBrainz:
		return task.MusicBrainzID
	default:
		return ""
	}
}

// recoverableLookupErr reports whether a failed lookup should fall through to
// the next lookup method rather than failing the provider fetch.
func recoverableLookupErr(err error) bool {
	return errors.Is(err, providers.ErrUnsupportedLookup) || errors.Is(err, providers.ErrNotFound)
}

func (e *Enricher) countAttempt(provider providers.ID, field, outcome string) {
	e.metrics.Inc("enrich_provider_attempts_total", map[string]string{
		"provider": string(provider),
		"field":    field,
		"outcome":  outcome,
	})
}
