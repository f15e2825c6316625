package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/setgraph/enricher/internal/domain"
)

// Playlist is one stored setlist.
type Playlist struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (db *DB) CreatePlaylist(ctx context.Context, id, name string) error {
	query := `INSERT INTO playlists (id, name) VALUES (?, ?)`
	if _, err := db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (db *DB) AddPlaylistTrack(ctx context.Context, playlistID string, position int, track domain.NeighborTrack) error {
	query := `INSERT INTO playlist_tracks (playlist_id, position, title, artist, genre, bpm, key_name, label)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, playlistID, position,
		track.Title, track.Artist, track.Genre, track.BPM, track.Key, track.Label)
	if err != nil {
		return fmt.Errorf("failed to add playlist track: %w", err)
	}
	return nil
}

// FetchDJTracks returns every track from setlists whose name matches the DJ.
// With exact=false the pattern is a substring match (LIKE %name%).
func (db *DB) FetchDJTracks(ctx context.Context, djName string, exact bool) ([]domain.SetTrack, error) {
	query := `SELECT pt.title, COALESCE(pt.artist, '') AS artist, COALESCE(pt.genre, '') AS genre,
		COALESCE(pt.label, '') AS label, COALESCE(pt.bpm, 0) AS bpm, COALESCE(pt.key_name, '') AS key_name
	FROM playlist_tracks pt
	JOIN playlists p ON p.id = pt.playlist_id
	WHERE `
	var arg string
	if exact {
		query += `p.name = ?`
		arg = djName
	} else {
		query += `p.name LIKE ?`
		arg = "%" + djName + "%"
	}
	query += ` ORDER BY p.id, pt.position`

	var tracks []domain.SetTrack
	if err := db.SelectContext(ctx, &tracks, query, arg); err != nil {
		return nil, fmt.Errorf("failed to fetch dj tracks: %w", err)
	}
	return tracks, nil
}

// FetchSetlistWindow returns the setlist length and the tracks immediately
// before and after the given position. Missing neighbors come back nil.
func (db *DB) FetchSetlistWindow(ctx context.Context, playlistID string, position int) (int, *domain.NeighborTrack, *domain.NeighborTrack, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?`
	if err := db.GetContext(ctx, &total, countQuery, playlistID); err != nil {
		return 0, nil, nil, fmt.Errorf("failed to count setlist tracks: %w", err)
	}
	if total == 0 {
		return 0, nil, nil, nil
	}

	prev, err := db.getNeighbor(ctx, playlistID, position-1)
	if err != nil {
		return 0, nil, nil, err
	}
	next, err := db.getNeighbor(ctx, playlistID, position+1)
	if err != nil {
		return 0, nil, nil, err
	}
	return total, prev, next, nil
}

func (db *DB) getNeighbor(ctx context.Context, playlistID string, position int) (*domain.NeighborTrack, error) {
	query := `SELECT title, COALESCE(artist, '') AS artist, COALESCE(genre, '') AS genre,
		COALESCE(bpm, 0) AS bpm, COALESCE(key_name, '') AS key_name, COALESCE(label, '') AS label
	FROM playlist_tracks WHERE playlist_id = ? AND position = ?`

	var track domain.NeighborTrack
	err := db.GetContext(ctx, &track, query, playlistID, position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch neighbor track: %w", err)
	}
	return &track, nil
}
