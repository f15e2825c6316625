package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEnrichmentTask_Validate(t *testing.T) {
	t.Run("valid_with_title", func(t *testing.T) {
		task := EnrichmentTask{TrackID: "t1", TrackTitle: "Song"}
		if err := task.Validate(); err != nil {
			t.Errorf("Expected valid task, got %v", err)
		}
	})

	t.Run("valid_with_identifier_only", func(t *testing.T) {
		task := EnrichmentTask{TrackID: "t1", ISRC: "USABC1234567"}
		if err := task.Validate(); err != nil {
			t.Errorf("Expected valid task, got %v", err)
		}
	})

	t.Run("missing_track_id", func(t *testing.T) {
		task := EnrichmentTask{TrackTitle: "Song"}
		if err := task.Validate(); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("Expected ErrInvalidTask, got %v", err)
		}
	})

	t.Run("no_title_and_no_identifiers", func(t *testing.T) {
		task := EnrichmentTask{TrackID: "t1"}
		if err := task.Validate(); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("Expected ErrInvalidTask, got %v", err)
		}
	})
}

func TestEnrichedMetadata(t *testing.T) {
	m := NewEnrichedMetadata("run-1", "t1")

	if _, ok := m.Value("bpm"); ok {
		t.Error("Expected unresolved field to be absent")
	}

	m.Set("bpm", 128.0, Provenance{Provider: "beatport", Confidence: 0.9, PriorityRank: 1, RecordedAt: time.Now()})
	v, ok := m.Value("bpm")
	if !ok || v != 128.0 {
		t.Errorf("Expected 128, got %v (present=%v)", v, ok)
	}
	if m.Provenance["bpm"].Provider != "beatport" {
		t.Errorf("Expected provenance provider beatport, got %+v", m.Provenance["bpm"])
	}
}

func TestNormalizeArtistName(t *testing.T) {
	cases := map[string]string{
		"Adam Beyer":       "adam beyer",
		"  ADAM   BEYER  ": "adam beyer",
		"":                 "",
		"   ":              "",
		"Röyksopp":         "röyksopp",
	}
	for in, want := range cases {
		if got := NormalizeArtistName(in); got != want {
			t.Errorf("NormalizeArtistName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStringSlice(t *testing.T) {
	t.Run("value_round_trip", func(t *testing.T) {
		s := StringSlice{"techno", "house"}
		v, err := s.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}
		var back StringSlice
		if err := back.Scan(v); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if len(back) != 2 || back[0] != "techno" || back[1] != "house" {
			t.Errorf("Round trip mismatch: %v", back)
		}
	})

	t.Run("nil_scans_to_nil", func(t *testing.T) {
		var s StringSlice
		if err := s.Scan(nil); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if s != nil {
			t.Errorf("Expected nil, got %v", s)
		}
	})

	t.Run("empty_slice_stores_empty_array", func(t *testing.T) {
		var s StringSlice
		v, err := s.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}
		if v != "[]" {
			t.Errorf("Expected [], got %v", v)
		}
	})
}
