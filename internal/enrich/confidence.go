package enrich

import (
	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/providers"
)

// ScorerConfig holds the per-provider confidence priors and the bonus for
// corroborating signals. The defaults are operational heuristics; operators
// may override them, and the waterfall only cares about the resulting shape.
type ScorerConfig struct {
	Base               map[providers.ID]float64
	CorroborationBonus float64
}

func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		Base: map[providers.ID]float64{
			providers.Spotify:     constants.ConfidenceSpotify,
			providers.MusicBrainz: constants.ConfidenceMusicBrainz,
			providers.Beatport:    constants.ConfidenceBeatport,
			providers.Juno:        constants.ConfidenceJuno,
			providers.Traxsource:  constants.ConfidenceTraxsource,
			providers.FileTags:    constants.ConfidenceFileTags,
		},
		CorroborationBonus: constants.CorroborationBonus,
	}
}

// Scorer computes a confidence in [0,1] for a candidate field value. It is
// computable purely from (provider, field, value, raw response); no
// field-specific business logic leaks into extractors.
type Scorer struct {
	cfg ScorerConfig
}

func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Score(provider providers.ID, field string, value any, resp providers.Response) float64 {
	if value == nil {
		return 0
	}

	confidence := s.cfg.Base[provider]

	// An ISRC cross-reference in the same response corroborates the value.
	// The ISRC field itself gets no bonus from its own presence.
	if field != FieldISRC && hasISRCCorroboration(resp) {
		confidence += s.cfg.CorroborationBonus
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func hasISRCCorroboration(resp providers.Response) bool {
	if resp == nil {
		return false
	}
	if s := getStringValue(resp, "isrc"); s != "" {
		return true
	}
	if s := getStringValue(resp, "external_ids", "isrc"); s != "" {
		return true
	}
	if isrcs, ok := resp["isrcs"].([]any); ok && len(isrcs) > 0 {
		return true
	}
	return false
}
