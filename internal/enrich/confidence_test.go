package enrich_test

import (
	"testing"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/enrich"
	"github.com/setgraph/enricher/internal/providers"
)

func TestScorer_Score(t *testing.T) {
	scorer := enrich.NewScorer(enrich.DefaultScorerConfig())

	t.Run("nil_value_scores_zero", func(t *testing.T) {
		if got := scorer.Score(providers.Spotify, "bpm", nil, providers.Response{"bpm": 128.0}); got != 0 {
			t.Errorf("Expected 0 for nil value, got %v", got)
		}
	})

	t.Run("base_prior_per_provider", func(t *testing.T) {
		cases := map[providers.ID]float64{
			providers.Spotify:     constants.ConfidenceSpotify,
			providers.MusicBrainz: constants.ConfidenceMusicBrainz,
			providers.Beatport:    constants.ConfidenceBeatport,
			providers.Juno:        constants.ConfidenceJuno,
			providers.Traxsource:  constants.ConfidenceTraxsource,
			providers.FileTags:    constants.ConfidenceFileTags,
		}
		for id, want := range cases {
			if got := scorer.Score(id, "genre", "techno", providers.Response{}); got != want {
				t.Errorf("%s: expected %v, got %v", id, want, got)
			}
		}
	})

	t.Run("isrc_corroboration_bonus", func(t *testing.T) {
		resp := providers.Response{
			"bpm":          128.0,
			"external_ids": map[string]any{"isrc": "USABC1234567"},
		}
		got := scorer.Score(providers.Beatport, "bpm", 128.0, resp)
		want := constants.ConfidenceBeatport + constants.CorroborationBonus
		if got != want {
			t.Errorf("Expected %v with corroboration, got %v", want, got)
		}
	})

	t.Run("isrc_field_gets_no_bonus_from_itself", func(t *testing.T) {
		resp := providers.Response{"isrc": "USABC1234567"}
		got := scorer.Score(providers.Beatport, "isrc", "USABC1234567", resp)
		if got != constants.ConfidenceBeatport {
			t.Errorf("Expected bare prior %v, got %v", constants.ConfidenceBeatport, got)
		}
	})

	t.Run("clamped_to_one", func(t *testing.T) {
		custom := enrich.NewScorer(enrich.ScorerConfig{
			Base:               map[providers.ID]float64{providers.MusicBrainz: 0.99},
			CorroborationBonus: 0.05,
		})
		resp := providers.Response{"isrcs": []any{"USABC1234567"}}
		if got := custom.Score(providers.MusicBrainz, "genre", "techno", resp); got != 1.0 {
			t.Errorf("Expected clamp to 1.0, got %v", got)
		}
	})
}
