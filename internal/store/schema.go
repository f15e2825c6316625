package store

const Schema = `
CREATE TABLE IF NOT EXISTS artists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	musicbrainz_id TEXT,
	spotify_id TEXT,
	genres TEXT,  -- JSON array
	spotify_popularity INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Identity races are resolved by these constraints plus a lookup retry,
-- not by application-level locking.
CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_mbid ON artists(musicbrainz_id)
WHERE musicbrainz_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_spotify_id ON artists(spotify_id)
WHERE spotify_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_artists_normalized_name ON artists(normalized_name);

CREATE TABLE IF NOT EXISTS playlists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_playlists_name ON playlists(name);

CREATE TABLE IF NOT EXISTS playlist_tracks (
	playlist_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	artist TEXT,
	genre TEXT,
	bpm REAL,
	key_name TEXT,
	label TEXT,
	PRIMARY KEY (playlist_id, position),
	FOREIGN KEY (playlist_id) REFERENCES playlists(id)
);

CREATE TABLE IF NOT EXISTS enrichment_field_priority (
	field_name TEXT NOT NULL,
	provider TEXT NOT NULL,
	priority_rank INTEGER NOT NULL,
	min_confidence REAL NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (field_name, provider)
);
`
