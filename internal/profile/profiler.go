// Package profile builds statistical DJ profiles from historical setlists
// and scores how well candidate tracks fit a setlist's context. These scores
// are disambiguation priors, not hard filters.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/logger"
)

// topEntries caps the ranked artist/label/genre lists in a profile.
const topEntries = 10

// MatchStrategy selects how a DJ name is matched against setlist names.
type MatchStrategy int

const (
	// MatchSubstring matches setlists whose name contains the DJ name.
	MatchSubstring MatchStrategy = iota
	// MatchExact requires the setlist name to equal the DJ name.
	MatchExact
)

// Store is the narrow persistence interface the profiler reads from, so the
// statistical logic stays testable without a database.
type Store interface {
	FetchDJTracks(ctx context.Context, djName string, exact bool) ([]domain.SetTrack, error)
	FetchSetlistWindow(ctx context.Context, playlistID string, position int) (int, *domain.NeighborTrack, *domain.NeighborTrack, error)
}

type Profiler struct {
	store    Store
	strategy MatchStrategy
	log      *logger.Logger
}

func NewProfiler(store Store, strategy MatchStrategy, log *logger.Logger) *Profiler {
	return &Profiler{
		store:    store,
		strategy: strategy,
		log:      log.WithComponent("dj_profiler"),
	}
}

// BuildProfile aggregates every track attributable to the DJ's setlists.
// Returns (nil, nil) when no tracks are attributed: "no prior available" is
// not an error. Profiles are computed fresh per call and never cached.
func (p *Profiler) BuildProfile(ctx context.Context, djName string) (*domain.DJProfile, error) {
	tracks, err := p.store.FetchDJTracks(ctx, djName, p.strategy == MatchExact)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dj tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, nil
	}

	artistCounts := make(map[string]int)
	labelCounts := make(map[string]int)
	genreCounts := make(map[string]int)
	keyHistogram := make(map[string]int)

	var bpmSum, bpmMin, bpmMax float64
	bpmCount := 0

	for _, t := range tracks {
		if t.Artist != "" {
			artistCounts[t.Artist]++
		}
		if t.Label != "" {
			labelCounts[t.Label]++
		}
		if t.Genre != "" {
			genreCounts[t.Genre]++
		}
		if t.Key != "" {
			keyHistogram[strings.ToUpper(t.Key)]++
		}
		if t.BPM > 0 {
			if bpmCount == 0 || t.BPM < bpmMin {
				bpmMin = t.BPM
			}
			if t.BPM > bpmMax {
				bpmMax = t.BPM
			}
			bpmSum += t.BPM
			bpmCount++
		}
	}

	profile := &domain.DJProfile{
		DJName:       djName,
		TotalTracks:  len(tracks),
		TopArtists:   rankCounts(artistCounts),
		TopLabels:    rankCounts(labelCounts),
		TopGenres:    rankCounts(genreCounts),
		KeyHistogram: keyHistogram,
		MinBPM:       bpmMin,
		MaxBPM:       bpmMax,
	}
	if bpmCount > 0 {
		profile.AvgBPM = bpmSum / float64(bpmCount)
	}
	return profile, nil
}

// GetSetlistContext builds the positional window around one track. Returns
// (nil, nil) when the setlist has no tracks.
func (p *Profiler) GetSetlistContext(ctx context.Context, playlistID string, position int) (*domain.SetlistContext, error) {
	total, prev, next, err := p.store.FetchSetlistWindow(ctx, playlistID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch setlist window: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	normalized := 0.5
	if total > 1 {
		normalized = float64(position-1) / float64(total-1)
	}

	sc := &domain.SetlistContext{
		Position:           position,
		TotalTracks:        total,
		Prev:               prev,
		Next:               next,
		NormalizedPosition: normalized,
		IsOpening:          normalized < constants.OpeningPositionMax,
		IsClosing:          normalized > constants.ClosingPositionMin,
	}
	sc.IsPeakTime = !sc.IsOpening && !sc.IsClosing
	return sc, nil
}

// ArtistAffinity scores how strongly a candidate artist features in the DJ's
// history. No profile means no information: neutral 0.5. A known profile
// without the artist scores low but never zero; absence of history is not
// proof of impossibility.
func (p *Profiler) ArtistAffinity(profile *domain.DJProfile, artistCandidate string) float64 {
	if profile == nil || len(profile.TopArtists) == 0 {
		return 0.5
	}

	normalized := domain.NormalizeArtistName(artistCandidate)
	topCount := profile.TopArtists[0].Count

	for i, entry := range profile.TopArtists {
		if domain.NormalizeArtistName(entry.Name) != normalized {
			continue
		}
		rank := i + 1
		rankBonus := 0.0
		if rank <= 5 {
			rankBonus = float64(5-rank) * 0.05
		}
		score := float64(entry.Count)/float64(topCount) + rankBonus
		if score > 1.0 {
			score = 1.0
		}
		return score
	}
	return 0.1
}

func rankCounts(counts map[string]int) []domain.NameCount {
	ranked := make([]domain.NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, domain.NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topEntries {
		ranked = ranked[:topEntries]
	}
	return ranked
}
