// Package artistdb resolves and creates canonical artist records. Identity
// is established by MusicBrainz ID, then Spotify ID, then normalized name
// with popularity-weighted disambiguation; a bare name match is never enough
// when several rows share it.
package artistdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/store"
)

// genericNames are placeholder names that must never become artist entities.
var genericNames = map[string]struct{}{
	"unknown":         {},
	"unknown artist":  {},
	"various":         {},
	"various artists": {},
}

// Outcome tells callers how an artist was resolved. Race handling is visible
// in the type rather than hidden in error handling.
type Outcome string

const (
	OutcomeFoundExisting      Outcome = "found_existing"
	OutcomeCreated            Outcome = "created"
	OutcomeRejectedName       Outcome = "rejected_name"
	OutcomeRaceRetryExhausted Outcome = "race_retry_exhausted"
)

// Resolution is the result of one get-or-create attempt.
type Resolution struct {
	Outcome  Outcome
	ArtistID string
}

// Resolved reports whether the resolution carries a usable artist ID.
func (r Resolution) Resolved() bool {
	return r.Outcome == OutcomeFoundExisting || r.Outcome == OutcomeCreated
}

// Input carries everything known about the artist being resolved.
type Input struct {
	Name              string
	MusicBrainzID     string
	SpotifyID         string
	Genres            []string
	SpotifyPopularity int
}

// Store is the narrow persistence interface the populator needs.
type Store interface {
	GetArtistByMusicBrainzID(ctx context.Context, mbid string) (*domain.Artist, error)
	GetArtistBySpotifyID(ctx context.Context, spotifyID string) (*domain.Artist, error)
	ListArtistsByNormalizedName(ctx context.Context, normalized string) ([]*domain.Artist, error)
	CreateArtist(ctx context.Context, artist *domain.Artist) error
	BackfillArtistIDs(ctx context.Context, artistID string, mbid, spotifyID *string) error
}

type Populator struct {
	store   Store
	metrics *metrics.Registry
	log     *logger.Logger
}

func NewPopulator(st Store, m *metrics.Registry, log *logger.Logger) *Populator {
	return &Populator{
		store:   st,
		metrics: m,
		log:     log.WithComponent("artist_populator"),
	}
}

// GetOrCreateArtist resolves the canonical artist record for input, creating
// one when no existing record matches. Generic placeholder names are rejected
// before any lookup. A creation race (duplicate insert) triggers exactly one
// retry of the lookup chain.
func (p *Populator) GetOrCreateArtist(ctx context.Context, input Input) (Resolution, error) {
	normalized := domain.NormalizeArtistName(input.Name)
	if normalized == "" {
		return Resolution{Outcome: OutcomeRejectedName}, nil
	}
	if _, generic := genericNames[normalized]; generic {
		p.count(string(OutcomeRejectedName))
		return Resolution{Outcome: OutcomeRejectedName}, nil
	}

	found, err := p.lookup(ctx, input, normalized)
	if err != nil {
		return Resolution{}, err
	}
	if found != nil {
		if err := p.backfill(ctx, found, input); err != nil {
			p.log.Warn("failed to backfill artist ids", "artist_id", found.ID, "error", err)
		}
		p.count(string(OutcomeFoundExisting))
		return Resolution{Outcome: OutcomeFoundExisting, ArtistID: found.ID}, nil
	}

	artist := &domain.Artist{
		ID:                uuid.NewString(),
		Name:              input.Name,
		MusicBrainzID:     nonEmpty(input.MusicBrainzID),
		SpotifyID:         nonEmpty(input.SpotifyID),
		Genres:            input.Genres,
		SpotifyPopularity: input.SpotifyPopularity,
	}
	err = p.store.CreateArtist(ctx, artist)
	if err == nil {
		p.count(string(OutcomeCreated))
		return Resolution{Outcome: OutcomeCreated, ArtistID: artist.ID}, nil
	}
	if !errors.Is(err, store.ErrDuplicateArtist) {
		return Resolution{}, fmt.Errorf("failed to create artist: %w", err)
	}

	// Lost a creation race: another task inserted the same identity first.
	// Retry the lookup chain once; the winner's row must be there now.
	found, lookupErr := p.lookup(ctx, input, normalized)
	if lookupErr != nil {
		return Resolution{}, lookupErr
	}
	if found != nil {
		p.count(string(OutcomeFoundExisting))
		return Resolution{Outcome: OutcomeFoundExisting, ArtistID: found.ID}, nil
	}

	p.count(string(OutcomeRaceRetryExhausted))
	return Resolution{Outcome: OutcomeRaceRetryExhausted},
		fmt.Errorf("artist %q: creation raced but retry found no row: %w", input.Name, err)
}

// lookup runs the identity chain: MBID, then Spotify ID, then normalized
// name. The first hit wins and stops the chain.
func (p *Populator) lookup(ctx context.Context, input Input, normalized string) (*domain.Artist, error) {
	if input.MusicBrainzID != "" {
		artist, err := p.store.GetArtistByMusicBrainzID(ctx, input.MusicBrainzID)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			return artist, nil
		}
	}

	if input.SpotifyID != "" {
		artist, err := p.store.GetArtistBySpotifyID(ctx, input.SpotifyID)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			return artist, nil
		}
	}

	candidates, err := p.store.ListArtistsByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return pickBestCandidate(candidates, input.Name), nil
}

// pickBestCandidate disambiguates rows sharing a normalized name. The MBID
// weight dominates: a row with a MusicBrainz ID beats any popularity.
func pickBestCandidate(candidates []*domain.Artist, inputName string) *domain.Artist {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	var best *domain.Artist
	bestScore := -1.0
	for _, c := range candidates {
		score := 0.0
		if c.MusicBrainzID != nil && *c.MusicBrainzID != "" {
			score += constants.ArtistScoreMBIDWeight
		}
		score += constants.ArtistScorePopularityWeight * float64(c.SpotifyPopularity)
		score += constants.ArtistScoreSimilarityWeight * nameSimilarity(inputName, c.Name)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// backfill fills identifiers the matched row is missing. Existing IDs are
// never overwritten.
func (p *Populator) backfill(ctx context.Context, artist *domain.Artist, input Input) error {
	var mbid, spotifyID *string
	if input.MusicBrainzID != "" && (artist.MusicBrainzID == nil || *artist.MusicBrainzID == "") {
		mbid = &input.MusicBrainzID
	}
	if input.SpotifyID != "" && (artist.SpotifyID == nil || *artist.SpotifyID == "") {
		spotifyID = &input.SpotifyID
	}
	if mbid == nil && spotifyID == nil {
		return nil
	}
	return p.store.BackfillArtistIDs(ctx, artist.ID, mbid, spotifyID)
}

func (p *Populator) count(outcome string) {
	if p.metrics != nil {
		p.metrics.Inc("artist_resolve_total", map[string]string{"outcome": outcome})
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
