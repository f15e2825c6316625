package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/setgraph/enricher/internal/httpclient"
)

func TestMusicBrainzClient(t *testing.T) {
	ctx := context.Background()

	t.Run("search_by_isrc_returns_first_recording", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/recording" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("User-Agent") == "" {
				t.Error("Expected a User-Agent header")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"recordings":[{"id":"rec-1","title":"Your Mind","isrcs":["SEABC1700123"]}]}`))
		}))
		defer srv.Close()

		client := NewMusicBrainzClient(srv.URL, httpclient.NewClient(nil, 0))
		resp, err := client.SearchByISRC(ctx, "SEABC1700123")
		if err != nil {
			t.Fatalf("SearchByISRC failed: %v", err)
		}
		if resp["id"] != "rec-1" {
			t.Errorf("Expected rec-1, got %v", resp["id"])
		}
	})

	t.Run("empty_search_results_are_not_found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"recordings":[]}`))
		}))
		defer srv.Close()

		client := NewMusicBrainzClient(srv.URL, httpclient.NewClient(nil, 0))
		if _, err := client.SearchTrack(ctx, "Nobody", "Nothing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("http_404_is_not_found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewMusicBrainzClient(srv.URL, httpclient.NewClient(nil, 0))
		if _, err := client.GetTrackByID(ctx, "no-such-mbid"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("blank_lookups_short_circuit", func(t *testing.T) {
		client := NewMusicBrainzClient("http://unused", httpclient.NewClient(nil, 0))
		if _, err := client.SearchByISRC(ctx, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := client.GetTrackByID(ctx, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("release_label_lookup_skips_labelless_hits", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/release" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"releases":[
				{"id":"rel-0","title":"Bootleg","label-info":[]},
				{"id":"rel-1","title":"Your Mind EP","label-info":[{"catalog-number":"DC190","label":{"name":"Drumcode"}}]}
			]}`))
		}))
		defer srv.Close()

		client := NewMusicBrainzClient(srv.URL, httpclient.NewClient(nil, 0))
		hit, err := client.LookupReleaseLabel(ctx, "Your Mind", "Adam Beyer")
		if err != nil {
			t.Fatalf("LookupReleaseLabel failed: %v", err)
		}
		if hit == nil || hit.Label != "Drumcode" {
			t.Fatalf("Expected Drumcode hit, got %+v", hit)
		}
		if hit.CatalogNumber != "DC190" {
			t.Errorf("Expected catalog number DC190, got %q", hit.CatalogNumber)
		}
		if hit.URL != "https://musicbrainz.org/release/rel-1" {
			t.Errorf("Unexpected URL %q", hit.URL)
		}
	})

	t.Run("no_label_bearing_release_returns_nil", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"releases":[]}`))
		}))
		defer srv.Close()

		client := NewMusicBrainzClient(srv.URL, httpclient.NewClient(nil, 0))
		hit, err := client.LookupReleaseLabel(ctx, "Obscure", "")
		if err != nil {
			t.Fatalf("LookupReleaseLabel failed: %v", err)
		}
		if hit != nil {
			t.Errorf("Expected nil hit, got %+v", hit)
		}
	})
}

func TestStorefrontClient(t *testing.T) {
	ctx := context.Background()

	t.Run("track_lookups_unsupported", func(t *testing.T) {
		client := NewJunoClient("http://unused", httpclient.NewClient(nil, 0))
		if _, err := client.SearchByISRC(ctx, "X"); !errors.Is(err, ErrUnsupportedLookup) {
			t.Errorf("Expected ErrUnsupportedLookup, got %v", err)
		}
		if _, err := client.GetTrackByID(ctx, "1"); !errors.Is(err, ErrUnsupportedLookup) {
			t.Errorf("Expected ErrUnsupportedLookup, got %v", err)
		}
	})

	t.Run("release_search_drops_labelless_hits", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/releases" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"releases":[
				{"title":"White Label","label":""},
				{"title":"Deep Cut","label":"Toolroom","catalog_number":"TOOL100"}
			]}`))
		}))
		defer srv.Close()

		client := NewJunoClient(srv.URL, httpclient.NewClient(nil, 0))
		hits, err := client.SearchReleases(ctx, "deep cut")
		if err != nil {
			t.Fatalf("SearchReleases failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Label != "Toolroom" {
			t.Fatalf("Expected one Toolroom hit, got %+v", hits)
		}
	})

	t.Run("search_track_uses_first_release", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/releases/search" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"releases":[{"title":"Deep Cut","label":"Defected"}]}`))
		}))
		defer srv.Close()

		client := NewTraxsourceClient(srv.URL, httpclient.NewClient(nil, 0))
		resp, err := client.SearchTrack(ctx, "Artist", "Deep Cut")
		if err != nil {
			t.Fatalf("SearchTrack failed: %v", err)
		}
		if resp["label"] != "Defected" {
			t.Errorf("Expected Defected, got %v", resp["label"])
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("register_and_get", func(t *testing.T) {
		r := NewRegistry()
		mock := &Mock{MockID: Spotify}
		if err := r.Register(mock); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if got := r.Get(Spotify); got != mock {
			t.Error("Expected registered client back")
		}
		if got := r.Get(Beatport); got != nil {
			t.Errorf("Expected nil for unregistered provider, got %v", got)
		}
	})

	t.Run("duplicate_registration_rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(&Mock{MockID: Spotify}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if err := r.Register(&Mock{MockID: Spotify}); err == nil {
			t.Error("Expected error for duplicate registration")
		}
	})
}

func TestParseID(t *testing.T) {
	for _, id := range KnownIDs() {
		got, err := ParseID(string(id))
		if err != nil || got != id {
			t.Errorf("ParseID(%s) = (%v, %v)", id, got, err)
		}
	}
	if _, err := ParseID("soundcloud"); err == nil {
		t.Error("Expected unknown provider to be rejected")
	}
}
