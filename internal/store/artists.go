package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/setgraph/enricher/internal/domain"
)

func (db *DB) CreateArtist(ctx context.Context, artist *domain.Artist) error {
	artist.NormalizedName = domain.NormalizeArtistName(artist.Name)
	now := time.Now()
	artist.CreatedAt = now
	artist.UpdatedAt = now

	query := `INSERT INTO artists (
		id, name, normalized_name, musicbrainz_id, spotify_id, genres, spotify_popularity,
		created_at, updated_at
	) VALUES (
		:id, :name, :normalized_name, :musicbrainz_id, :spotify_id, :genres, :spotify_popularity,
		:created_at, :updated_at
	)`

	if _, err := db.NamedExecContext(ctx, query, artist); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateArtist
		}
		return fmt.Errorf("failed to create artist: %w", err)
	}
	return nil
}

func (db *DB) GetArtistByMusicBrainzID(ctx context.Context, mbid string) (*domain.Artist, error) {
	return db.getArtist(ctx, `SELECT * FROM artists WHERE musicbrainz_id = ?`, mbid)
}

func (db *DB) GetArtistBySpotifyID(ctx context.Context, spotifyID string) (*domain.Artist, error) {
	return db.getArtist(ctx, `SELECT * FROM artists WHERE spotify_id = ?`, spotifyID)
}

// ListArtistsByNormalizedName returns every artist row sharing a normalized
// name; disambiguation between them is the caller's job.
func (db *DB) ListArtistsByNormalizedName(ctx context.Context, normalized string) ([]*domain.Artist, error) {
	var artists []*domain.Artist
	query := `SELECT * FROM artists WHERE normalized_name = ? ORDER BY created_at ASC`
	if err := db.SelectContext(ctx, &artists, query, normalized); err != nil {
		return nil, fmt.Errorf("failed to list artists by name: %w", err)
	}
	return artists, nil
}

// BackfillArtistIDs fills in a missing MusicBrainz or Spotify ID on an
// existing row. Already-populated identifiers are never overwritten.
func (db *DB) BackfillArtistIDs(ctx context.Context, artistID string, mbid, spotifyID *string) error {
	query := `UPDATE artists SET
		musicbrainz_id = COALESCE(musicbrainz_id, ?),
		spotify_id = COALESCE(spotify_id, ?),
		updated_at = ?
	WHERE id = ?`

	result, err := db.ExecContext(ctx, query, mbid, spotifyID, time.Now(), artistID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateArtist
		}
		return fmt.Errorf("failed to backfill artist ids: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("artist with id %s not found", artistID)
	}
	return nil
}

func (db *DB) getArtist(ctx context.Context, query string, arg any) (*domain.Artist, error) {
	var artist domain.Artist
	err := db.GetContext(ctx, &artist, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return &artist, nil
}

// isUniqueViolation reports whether err is a sqlite uniqueness-constraint
// failure. The modernc driver surfaces these as plain errors, so the
// constraint name in the message is the only signal available.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
