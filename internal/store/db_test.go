package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/setgraph/enricher/internal/domain"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	tmpFile := "test.db"
	db, err := NewSQLiteDB(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cleanup := func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
		if rErr := os.Remove(tmpFile); rErr != nil {
			t.Logf("os.Remove error: %v", rErr)
		}
	}
	return db, cleanup
}

func strPtr(s string) *string { return &s }

func TestDB_Artists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	artist := &domain.Artist{
		ID:                "a-1",
		Name:              "Adam Beyer",
		MusicBrainzID:     strPtr("mb-1"),
		Genres:            domain.StringSlice{"techno"},
		SpotifyPopularity: 70,
	}
	if err := db.CreateArtist(ctx, artist); err != nil {
		t.Fatalf("CreateArtist failed: %v", err)
	}
	if artist.NormalizedName != "adam beyer" {
		t.Errorf("Expected normalized name to be set, got %q", artist.NormalizedName)
	}

	fetched, err := db.GetArtistByMusicBrainzID(ctx, "mb-1")
	if err != nil {
		t.Fatalf("GetArtistByMusicBrainzID failed: %v", err)
	}
	if fetched == nil || fetched.ID != "a-1" {
		t.Fatalf("Expected artist a-1, got %+v", fetched)
	}
	if len(fetched.Genres) != 1 || fetched.Genres[0] != "techno" {
		t.Errorf("Expected genres to round-trip, got %v", fetched.Genres)
	}

	// Unknown identifiers are not errors.
	missing, err := db.GetArtistBySpotifyID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetArtistBySpotifyID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown id, got %+v", missing)
	}

	// A second row with the same MusicBrainz ID violates identity.
	dup := &domain.Artist{ID: "a-2", Name: "Someone Else", MusicBrainzID: strPtr("mb-1")}
	if err := db.CreateArtist(ctx, dup); !errors.Is(err, ErrDuplicateArtist) {
		t.Errorf("Expected ErrDuplicateArtist, got %v", err)
	}

	// Same normalized name, no conflicting IDs: allowed, disambiguated later.
	twin := &domain.Artist{ID: "a-3", Name: " ADAM  beyer "}
	if err := db.CreateArtist(ctx, twin); err != nil {
		t.Fatalf("CreateArtist for twin failed: %v", err)
	}
	list, err := db.ListArtistsByNormalizedName(ctx, "adam beyer")
	if err != nil {
		t.Fatalf("ListArtistsByNormalizedName failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 rows sharing the name, got %d", len(list))
	}

	if err := db.BackfillArtistIDs(ctx, "a-3", nil, strPtr("sp-3")); err != nil {
		t.Fatalf("BackfillArtistIDs failed: %v", err)
	}
	refetched, err := db.GetArtistBySpotifyID(ctx, "sp-3")
	if err != nil {
		t.Fatalf("GetArtistBySpotifyID failed: %v", err)
	}
	if refetched == nil || refetched.ID != "a-3" {
		t.Fatalf("Expected backfilled spotify id on a-3, got %+v", refetched)
	}

	// Backfill never overwrites an existing identifier.
	if err := db.BackfillArtistIDs(ctx, "a-1", strPtr("mb-other"), nil); err != nil {
		t.Fatalf("BackfillArtistIDs failed: %v", err)
	}
	kept, _ := db.GetArtistByMusicBrainzID(ctx, "mb-1")
	if kept == nil || kept.ID != "a-1" {
		t.Error("Expected original MusicBrainz id to be kept")
	}

	if err := db.BackfillArtistIDs(ctx, "ghost", nil, strPtr("sp-x")); err == nil {
		t.Error("Expected error for unknown artist id")
	}
}

func TestDB_Setlists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := db.CreatePlaylist(ctx, "pl-1", "Carl Cox @ Space Closing"); err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	tracks := []domain.NeighborTrack{
		{Title: "Opener", Artist: "Adam Beyer", Genre: "techno", BPM: 126, Key: "8A", Label: "Drumcode"},
		{Title: "Middle", Artist: "Amelie Lens", Genre: "techno", BPM: 128, Key: "9A", Label: "Exhale"},
		{Title: "Closer", Artist: "Charlotte de Witte", Genre: "techno", BPM: 130, Key: "9B", Label: "KNTXT"},
	}
	for i, track := range tracks {
		if err := db.AddPlaylistTrack(ctx, "pl-1", i+1, track); err != nil {
			t.Fatalf("AddPlaylistTrack failed: %v", err)
		}
	}

	t.Run("dj_tracks_substring_match", func(t *testing.T) {
		got, err := db.FetchDJTracks(ctx, "Carl Cox", false)
		if err != nil {
			t.Fatalf("FetchDJTracks failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 tracks, got %d", len(got))
		}
		if got[0].Title != "Opener" || got[0].BPM != 126 {
			t.Errorf("Expected ordered rows, got %+v", got[0])
		}
	})

	t.Run("dj_tracks_exact_match", func(t *testing.T) {
		got, err := db.FetchDJTracks(ctx, "Carl Cox", true)
		if err != nil {
			t.Fatalf("FetchDJTracks failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected no rows for exact mismatch, got %d", len(got))
		}
	})

	t.Run("window_in_the_middle", func(t *testing.T) {
		total, prev, next, err := db.FetchSetlistWindow(ctx, "pl-1", 2)
		if err != nil {
			t.Fatalf("FetchSetlistWindow failed: %v", err)
		}
		if total != 3 {
			t.Errorf("Expected total 3, got %d", total)
		}
		if prev == nil || prev.Title != "Opener" {
			t.Errorf("Expected Opener as prev, got %+v", prev)
		}
		if next == nil || next.Title != "Closer" {
			t.Errorf("Expected Closer as next, got %+v", next)
		}
	})

	t.Run("window_at_the_edges", func(t *testing.T) {
		_, prev, next, err := db.FetchSetlistWindow(ctx, "pl-1", 1)
		if err != nil {
			t.Fatalf("FetchSetlistWindow failed: %v", err)
		}
		if prev != nil {
			t.Errorf("Expected no prev at position 1, got %+v", prev)
		}
		if next == nil || next.Title != "Middle" {
			t.Errorf("Expected Middle as next, got %+v", next)
		}
	})

	t.Run("empty_setlist", func(t *testing.T) {
		total, prev, next, err := db.FetchSetlistWindow(ctx, "pl-ghost", 1)
		if err != nil {
			t.Fatalf("FetchSetlistWindow failed: %v", err)
		}
		if total != 0 || prev != nil || next != nil {
			t.Errorf("Expected empty window, got total=%d prev=%+v next=%+v", total, prev, next)
		}
	})
}

func TestDB_FieldPriorities(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	seed := []struct {
		field    string
		provider string
		rank     int
		minConf  float64
	}{
		{"bpm", "beatport", 2, 0.6},
		{"bpm", "spotify", 1, 0.7},
		{"key", "file_tags", 1, 0.5},
	}
	for _, s := range seed {
		if err := db.UpsertFieldPriority(ctx, s.field, s.provider, s.rank, s.minConf); err != nil {
			t.Fatalf("UpsertFieldPriority failed: %v", err)
		}
	}

	rows, err := db.FetchFieldPriorities(ctx)
	if err != nil {
		t.Fatalf("FetchFieldPriorities failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	// Ordered by field, then rank: spotify before beatport despite insert order.
	if rows[0].Provider != "spotify" || rows[1].Provider != "beatport" {
		t.Errorf("Expected rank ordering within bpm, got %s then %s", rows[0].Provider, rows[1].Provider)
	}
	if rows[2].FieldName != "key" {
		t.Errorf("Expected key last, got %s", rows[2].FieldName)
	}

	// Upsert replaces in place.
	if err := db.UpsertFieldPriority(ctx, "bpm", "spotify", 3, 0.9); err != nil {
		t.Fatalf("UpsertFieldPriority update failed: %v", err)
	}
	rows, _ = db.FetchFieldPriorities(ctx)
	if len(rows) != 3 {
		t.Fatalf("Expected upsert not to add rows, got %d", len(rows))
	}
	if rows[1].Provider != "spotify" || rows[1].MinConfidence != 0.9 {
		t.Errorf("Expected updated spotify row at rank 3, got %+v", rows[1])
	}

	if err := db.DeleteFieldPriority(ctx, "key", "file_tags"); err != nil {
		t.Fatalf("DeleteFieldPriority failed: %v", err)
	}
	rows, _ = db.FetchFieldPriorities(ctx)
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows after delete, got %d", len(rows))
	}
}
