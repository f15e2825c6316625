package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTask marks task-validation failures so transport layers can
// distinguish caller mistakes from downstream failures.
var ErrInvalidTask = errors.New("invalid enrichment task")

// EnrichmentTask is one track-enrichment attempt. It is immutable per
// invocation; callers create it and the enricher reads it.
type EnrichmentTask struct {
	TrackID       string `json:"track_id"`
	ArtistName    string `json:"artist_name"`
	TrackTitle    string `json:"track_title"`
	SpotifyID     string `json:"existing_spotify_id,omitempty"`
	ISRC          string `json:"existing_isrc,omitempty"`
	MusicBrainzID string `json:"existing_musicbrainz_id,omitempty"`
}

// Validate reports programming-contract violations. These are the only
// task-level errors the enricher propagates; per-provider failures are not.
func (t *EnrichmentTask) Validate() error {
	if t.TrackID == "" {
		return fmt.Errorf("%w: track_id is required", ErrInvalidTask)
	}
	if t.TrackTitle == "" && t.ISRC == "" && t.SpotifyID == "" && t.MusicBrainzID == "" {
		return fmt.Errorf("%w: a title or at least one identifier is required", ErrInvalidTask)
	}
	return nil
}

// Provenance records which provider supplied a field value, at what
// confidence, at which waterfall rank, and when.
type Provenance struct {
	Provider     string    `json:"provider"`
	Confidence   float64   `json:"confidence"`
	PriorityRank int       `json:"priority_rank"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// EnrichedMetadata is the output bag of a waterfall run. Fields that
// exhausted their waterfall are absent, never nil-valued; every present field
// has a provenance record.
type EnrichedMetadata struct {
	RunID      string                `json:"run_id"`
	TrackID    string                `json:"track_id"`
	Values     map[string]any        `json:"values"`
	Provenance map[string]Provenance `json:"provenance"`
}

func NewEnrichedMetadata(runID, trackID string) *EnrichedMetadata {
	return &EnrichedMetadata{
		RunID:      runID,
		TrackID:    trackID,
		Values:     make(map[string]any),
		Provenance: make(map[string]Provenance),
	}
}

// Set records a resolved field value together with its provenance.
func (m *EnrichedMetadata) Set(field string, value any, p Provenance) {
	m.Values[field] = value
	m.Provenance[field] = p
}

// Value returns the resolved value for field, if present.
func (m *EnrichedMetadata) Value(field string) (any, bool) {
	v, ok := m.Values[field]
	return v, ok
}

// LabelSource identifies where a label candidate came from.
type LabelSource string

const (
	LabelSourceTitleParse  LabelSource = "title_parse"
	LabelSourceMusicBrainz LabelSource = "musicbrainz"
	LabelSourceBeatport    LabelSource = "beatport"
	LabelSourceJuno        LabelSource = "juno"
	LabelSourceTraxsource  LabelSource = "traxsource"
)

// LabelCandidate is a discovered record label with its source and confidence.
// The best candidate above threshold is persisted by the caller.
type LabelCandidate struct {
	LabelName       string      `json:"label_name"`
	Source          LabelSource `json:"source"`
	Confidence      float64     `json:"confidence"`
	TrackTitleMatch string      `json:"track_title_match,omitempty"`
	CatalogNumber   string      `json:"catalog_number,omitempty"`
	ReleaseName     string      `json:"release_name,omitempty"`
	URL             string      `json:"url,omitempty"`
	SearchTerms     []string    `json:"search_terms,omitempty"`
}

// NameCount is a frequency-ranked entry in a DJ profile.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DJProfile aggregates a DJ's historical artist/label/genre/BPM/key
// preferences. Built fresh per query and discarded after use.
type DJProfile struct {
	DJName       string         `json:"dj_name"`
	TotalTracks  int            `json:"total_tracks"`
	TopArtists   []NameCount    `json:"top_artists"`
	TopLabels    []NameCount    `json:"top_labels"`
	TopGenres    []NameCount    `json:"top_genres"`
	AvgBPM       float64        `json:"avg_bpm"`
	MinBPM       float64        `json:"min_bpm"`
	MaxBPM       float64        `json:"max_bpm"`
	KeyHistogram map[string]int `json:"key_distribution"`
}

// SetTrack is one historical setlist track row used for profile aggregation.
type SetTrack struct {
	Title  string  `db:"title"`
	Artist string  `db:"artist"`
	Genre  string  `db:"genre"`
	Label  string  `db:"label"`
	BPM    float64 `db:"bpm"`
	Key    string  `db:"key_name"`
}

// NeighborTrack is the small metadata record kept for a setlist neighbor and
// for coherence candidates.
type NeighborTrack struct {
	Title  string  `json:"title" db:"title"`
	Artist string  `json:"artist" db:"artist"`
	Genre  string  `json:"genre,omitempty" db:"genre"`
	BPM    float64 `json:"bpm,omitempty" db:"bpm"`
	Key    string  `json:"key,omitempty" db:"key_name"`
	Label  string  `json:"label,omitempty" db:"label"`
}

// SetlistContext is the positional window around one track in one setlist.
type SetlistContext struct {
	Position           int            `json:"position"`
	TotalTracks        int            `json:"total_tracks"`
	Prev               *NeighborTrack `json:"prev_track,omitempty"`
	Next               *NeighborTrack `json:"next_track,omitempty"`
	NormalizedPosition float64        `json:"normalized_position"`
	IsOpening          bool           `json:"is_opening"`
	IsClosing          bool           `json:"is_closing"`
	IsPeakTime         bool           `json:"is_peak_time"`
}

// CoherenceScores are the per-dimension contextual-coherence scores of a
// candidate against its setlist neighbors, each in [0,1].
type CoherenceScores struct {
	Genre   float64 `json:"genre_coherence"`
	BPM     float64 `json:"bpm_coherence"`
	Key     float64 `json:"key_coherence"`
	Label   float64 `json:"label_coherence"`
	Overall float64 `json:"overall_coherence"`
}

// Artist is the canonical artist record. Identity is keyed preferentially by
// MusicBrainz ID, then Spotify ID, then normalized name with popularity
// disambiguation.
type Artist struct {
	ID                string      `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	NormalizedName    string      `json:"normalized_name" db:"normalized_name"`
	MusicBrainzID     *string     `json:"musicbrainz_id,omitempty" db:"musicbrainz_id"`
	SpotifyID         *string     `json:"spotify_id,omitempty" db:"spotify_id"`
	Genres            StringSlice `json:"genres,omitempty" db:"genres"`
	SpotifyPopularity int         `json:"spotify_popularity" db:"spotify_popularity"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// NormalizeArtistName lowercases, trims, and collapses internal whitespace so
// that lookups and uniqueness checks agree on one canonical form.
func NormalizeArtistName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}
