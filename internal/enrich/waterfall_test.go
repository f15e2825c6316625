package enrich_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/enrich"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/providers"
	"github.com/setgraph/enricher/internal/store"
)

// fakeConfigStore serves a scripted priority table.
type fakeConfigStore struct {
	rows []store.FieldPriorityRow
	err  error
}

func (f *fakeConfigStore) FetchFieldPriorities(ctx context.Context) ([]store.FieldPriorityRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func row(field, provider string, rank int, minConfidence float64) store.FieldPriorityRow {
	return store.FieldPriorityRow{
		FieldName:     field,
		Provider:      provider,
		PriorityRank:  rank,
		MinConfidence: minConfidence,
	}
}

func newTestEnricher(t *testing.T, rows []store.FieldPriorityRow, clients ...providers.Client) *enrich.Enricher {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "text"})

	loader, err := enrich.NewConfigLoader(context.Background(), &fakeConfigStore{rows: rows}, time.Hour, log)
	if err != nil {
		t.Fatalf("NewConfigLoader failed: %v", err)
	}

	registry := providers.NewRegistry()
	for _, c := range clients {
		if err := registry.Register(c); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	scorer := enrich.NewScorer(enrich.DefaultScorerConfig())
	return enrich.NewEnricher(loader, registry, enrich.DefaultExtractors(),
		scorer, metrics.NewRegistry(), 2*time.Second, log)
}

func TestEnricher_EnrichFields(t *testing.T) {
	task := domain.EnrichmentTask{
		TrackID:    "track-1",
		ArtistName: "Test Artist",
		TrackTitle: "Test Track",
	}

	t.Run("waterfall_falls_through_to_next_rank", func(t *testing.T) {
		spotify := &providers.Mock{MockID: providers.Spotify, Err: errors.New("upstream down")}
		beatport := &providers.Mock{
			MockID:         providers.Beatport,
			SearchResponse: providers.Response{"bpm": 128.0},
		}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "spotify", 1, 0.6),
			row("bpm", "beatport", 2, 0.6),
		}, spotify, beatport)

		result, err := enricher.EnrichFields(context.Background(), task)
		if err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}

		value, ok := result.Value("bpm")
		if !ok {
			t.Fatal("Expected bpm to be resolved")
		}
		if value != 128.0 {
			t.Errorf("Expected bpm 128, got %v", value)
		}

		prov, ok := result.Provenance["bpm"]
		if !ok {
			t.Fatal("Expected provenance for bpm")
		}
		if prov.Provider != "beatport" {
			t.Errorf("Expected provider beatport, got %s", prov.Provider)
		}
		if prov.PriorityRank != 2 {
			t.Errorf("Expected priority rank 2, got %d", prov.PriorityRank)
		}
		if prov.Confidence < 0.6 {
			t.Errorf("Accepted confidence %v below threshold", prov.Confidence)
		}
		if prov.RecordedAt.IsZero() {
			t.Error("Expected a provenance timestamp")
		}
	})

	t.Run("provider_fetched_once_per_task", func(t *testing.T) {
		fileTags := &providers.Mock{
			MockID:         providers.FileTags,
			SearchResponse: providers.Response{"bpm": 125.0, "key": "8A", "genre": "techno"},
		}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "file_tags", 1, 0.5),
			row("key", "file_tags", 1, 0.5),
			row("genre", "file_tags", 1, 0.5),
		}, fileTags)

		result, err := enricher.EnrichFields(context.Background(), task)
		if err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}
		for _, field := range []string{"bpm", "key", "genre"} {
			if _, ok := result.Value(field); !ok {
				t.Errorf("Expected %s to be resolved", field)
			}
		}
		if calls := fileTags.Calls(); calls != 1 {
			t.Errorf("Expected 1 provider fetch shared across fields, got %d", calls)
		}
	})

	t.Run("failed_provider_not_refetched", func(t *testing.T) {
		dead := &providers.Mock{MockID: providers.Beatport, Err: errors.New("boom")}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "beatport", 1, 0.5),
			row("genre", "beatport", 1, 0.5),
		}, dead)

		if _, err := enricher.EnrichFields(context.Background(), task); err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}
		if calls := dead.Calls(); calls != 1 {
			t.Errorf("Expected dead provider to be tried once, got %d calls", calls)
		}
	})

	t.Run("exhausted_field_stays_absent", func(t *testing.T) {
		juno := &providers.Mock{MockID: providers.Juno, Err: errors.New("unreachable")}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("label", "juno", 1, 0.5),
		}, juno)

		result, err := enricher.EnrichFields(context.Background(), task)
		if err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}
		if _, ok := result.Value("label"); ok {
			t.Error("Expected label to stay unresolved")
		}
		if _, ok := result.Provenance["label"]; ok {
			t.Error("Expected no provenance for unresolved field")
		}
	})

	t.Run("below_threshold_value_rejected", func(t *testing.T) {
		fileTags := &providers.Mock{
			MockID:         providers.FileTags,
			SearchResponse: providers.Response{"bpm": 125.0},
		}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "file_tags", 1, 0.95),
		}, fileTags)

		result, err := enricher.EnrichFields(context.Background(), task)
		if err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}
		if _, ok := result.Value("bpm"); ok {
			t.Error("Expected low-confidence value to be rejected")
		}
	})

	t.Run("every_resolved_field_has_provenance", func(t *testing.T) {
		beatport := &providers.Mock{
			MockID: providers.Beatport,
			SearchResponse: providers.Response{
				"bpm":   130.0,
				"genre": map[string]any{"name": "house"},
			},
		}
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "beatport", 1, 0.5),
			row("genre", "beatport", 2, 0.5),
		}, beatport)

		result, err := enricher.EnrichFields(context.Background(), task)
		if err != nil {
			t.Fatalf("EnrichFields failed: %v", err)
		}
		for field := range result.Values {
			if _, ok := result.Provenance[field]; !ok {
				t.Errorf("Resolved field %s is missing provenance", field)
			}
		}
		if result.RunID == "" {
			t.Error("Expected a run id")
		}
		if result.TrackID != task.TrackID {
			t.Errorf("Expected track id %s, got %s", task.TrackID, result.TrackID)
		}
	})

	t.Run("invalid_task_rejected", func(t *testing.T) {
		enricher := newTestEnricher(t, []store.FieldPriorityRow{
			row("bpm", "beatport", 1, 0.5),
		}, &providers.Mock{MockID: providers.Beatport})

		_, err := enricher.EnrichFields(context.Background(), domain.EnrichmentTask{TrackTitle: "No ID"})
		if !errors.Is(err, domain.ErrInvalidTask) {
			t.Errorf("Expected ErrInvalidTask, got %v", err)
		}
	})
}
