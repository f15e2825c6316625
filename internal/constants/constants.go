// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort                = "8080"
	DefaultDBPath              = "enricher.db"
	DefaultAudioDir            = "audio"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultRetryCount          = 3
	DefaultRetryBase           = 1 * time.Second
	DefaultHTTPTimeout         = 10 * time.Second
	DefaultConfigTTL           = 5 * time.Minute
	DefaultProviderCallTimeout = 8 * time.Second
)

// Provider endpoints
const (
	DefaultMusicBrainzURL = "https://musicbrainz.org/ws/2"
	DefaultSpotifyURL     = "https://api.spotify.com/v1"
	DefaultBeatportURL    = "https://api.beatport.com/v4"
	DefaultJunoURL        = "https://www.junodownload.com/api"
	DefaultTraxsourceURL  = "https://api.traxsource.com"
)

// MusicBrainz asks for at most one request per second from a single client.
const MusicBrainzRequestInterval = 1050 * time.Millisecond

// Provider base confidence priors. Operational heuristics, overridable
// through enrich.ScorerConfig.
const (
	ConfidenceSpotify     = 0.95
	ConfidenceMusicBrainz = 0.98
	ConfidenceBeatport    = 0.90
	ConfidenceJuno        = 0.75
	ConfidenceTraxsource  = 0.70
	ConfidenceFileTags    = 0.80
)

// CorroborationBonus is added to a provider's base confidence when the raw
// response carries an ISRC cross-reference alongside the extracted value.
const CorroborationBonus = 0.02

// Label hunting
const (
	LabelConfidenceBrackets    = 0.70
	LabelConfidenceParens      = 0.60
	LabelConfidenceMusicBrainz = 0.85
	LabelMinConfidence         = 0.50
)

// Artist disambiguation score weights. An MBID outweighs any popularity:
// popularity contributes at most 50 points, name similarity at most 30.
const (
	ArtistScoreMBIDWeight       = 100.0
	ArtistScorePopularityWeight = 0.5
	ArtistScoreSimilarityWeight = 0.3
)

// Setlist position flags
const (
	OpeningPositionMax = 0.2
	ClosingPositionMin = 0.8
)

// Contextual coherence weights
const (
	CoherenceWeightGenre = 0.30
	CoherenceWeightBPM   = 0.30
	CoherenceWeightKey   = 0.25
	CoherenceWeightLabel = 0.15
)

// BPMCoherenceSpread is the BPM difference at which neighbor continuity
// scores zero.
const BPMCoherenceSpread = 20.0
