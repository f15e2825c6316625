// Package label discovers a track's missing record label, cheapest source
// first: title parsing, then the canonical open API, then store-catalog
// search as a last resort.
package label

import (
	"context"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/providers"
)

// ReleaseLookup is the canonical-API step (MusicBrainz in production).
type ReleaseLookup interface {
	LookupReleaseLabel(ctx context.Context, title, artist string) (*providers.ReleaseHit, error)
}

// StoreSearcher pairs a release-search client with the label source it
// reports as.
type StoreSearcher struct {
	Source   domain.LabelSource
	Searcher providers.ReleaseSearcher
}

// Hunter runs the label-discovery priority chain. Lower priorities are never
// attempted once a higher one produces a candidate.
type Hunter struct {
	canonical     ReleaseLookup
	stores        []StoreSearcher
	minConfidence float64
	metrics       *metrics.Registry
	log           *logger.Logger
}

func NewHunter(canonical ReleaseLookup, stores []StoreSearcher, m *metrics.Registry, log *logger.Logger) *Hunter {
	return &Hunter{
		canonical:     canonical,
		stores:        stores,
		minConfidence: constants.LabelMinConfidence,
		metrics:       m,
		log:           log.WithComponent("label_hunter"),
	}
}

// FindLabel returns the best label candidate for a track, or nil when none
// clears the threshold. A populated existingLabel short-circuits to nil:
// known-good data is never overwritten.
func (h *Hunter) FindLabel(ctx context.Context, trackTitle, artistName, existingLabel string) (*domain.LabelCandidate, error) {
	if existingLabel != "" {
		return nil, nil
	}
	if trackTitle == "" {
		return nil, nil
	}

	// Priority 1: the title itself often names the label in brackets.
	if candidate := parseTitle(trackTitle); candidate != nil {
		h.count(candidate.Source)
		return candidate, nil
	}

	// Priority 2: canonical open API. Failures fall through to scraping.
	if h.canonical != nil {
		hit, err := h.canonical.LookupReleaseLabel(ctx, trackTitle, artistName)
		if err != nil {
			h.log.Debug("canonical label lookup failed", "error", err)
		} else if hit != nil && constants.LabelConfidenceMusicBrainz >= h.minConfidence {
			h.count(domain.LabelSourceMusicBrainz)
			return &domain.LabelCandidate{
				LabelName:       hit.Label,
				Source:          domain.LabelSourceMusicBrainz,
				Confidence:      constants.LabelConfidenceMusicBrainz,
				TrackTitleMatch: hit.Title,
				CatalogNumber:   hit.CatalogNumber,
				URL:             hit.URL,
			}, nil
		}
	}

	// Priority 3: store catalogs, last resort. Candidates are scored by
	// title similarity; only the best one above threshold survives.
	return h.searchStores(ctx, trackTitle, artistName)
}

func (h *Hunter) searchStores(ctx context.Context, trackTitle, artistName string) (*domain.LabelCandidate, error) {
	query := normalizeTitle(trackTitle)
	if artistName != "" {
		query = normalizeTitle(artistName) + " " + query
	}

	var best *domain.LabelCandidate
	for _, store := range h.stores {
		hits, err := store.Searcher.SearchReleases(ctx, query)
		if err != nil {
			h.log.Debug("store search failed", "source", string(store.Source), "error", err)
			continue
		}
		for _, hit := range hits {
			confidence := titleSimilarity(trackTitle, hit.Title)
			if confidence < h.minConfidence {
				continue
			}
			if best == nil || confidence > best.Confidence {
				best = &domain.LabelCandidate{
					LabelName:       hit.Label,
					Source:          store.Source,
					Confidence:      confidence,
					TrackTitleMatch: hit.Title,
					CatalogNumber:   hit.CatalogNumber,
					URL:             hit.URL,
				}
			}
		}
	}

	if best != nil {
		h.count(best.Source)
	}
	return best, nil
}

func (h *Hunter) count(source domain.LabelSource) {
	if h.metrics != nil {
		h.metrics.Inc("label_hunt_found_total", map[string]string{"source": string(source)})
	}
}
