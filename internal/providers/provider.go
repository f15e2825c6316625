// Package providers holds the uniform client interface for external metadata
// providers and the sealed set of provider identifiers.
package providers

import (
	"context"
	"errors"
	"fmt"
)

// ID identifies one metadata provider. The set is sealed: configuration rows
// naming anything else are rejected at load time.
type ID string

const (
	Spotify     ID = "spotify"
	Beatport    ID = "beatport"
	Juno        ID = "juno"
	Traxsource  ID = "traxsource"
	MusicBrainz ID = "musicbrainz"
	FileTags    ID = "file_tags"
)

// KnownIDs lists every valid provider identifier.
func KnownIDs() []ID {
	return []ID{Spotify, Beatport, Juno, Traxsource, MusicBrainz, FileTags}
}

// ParseID validates a provider name from configuration.
func ParseID(name string) (ID, error) {
	for _, id := range KnownIDs() {
		if string(id) == name {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q", name)
}

// Response is a provider-native dict-shaped raw response. Field extractors
// are the only code permitted to know a provider's schema.
type Response map[string]any

// ErrUnsupportedLookup is returned by a client for a lookup method it does
// not implement. The enricher treats it like any other provider failure.
var ErrUnsupportedLookup = errors.New("lookup not supported by this provider")

// ErrNotFound is returned when a provider responds but has no match.
var ErrNotFound = errors.New("no match found")

// Client is the uniform interface every provider exposes. Each method call
// must honor ctx cancellation; a hung provider must not stall other work.
type Client interface {
	ID() ID
	SearchByISRC(ctx context.Context, isrc string) (Response, error)
	SearchTrack(ctx context.Context, artist, title string) (Response, error)
	GetTrackByID(ctx context.Context, id string) (Response, error)
}

// ReleaseHit is one release-search result used for label discovery.
type ReleaseHit struct {
	Title         string
	Label         string
	CatalogNumber string
	URL           string
}

// ReleaseSearcher is implemented by store-front providers that can search
// releases by free text. Used by the label-hunting fallback.
type ReleaseSearcher interface {
	SearchReleases(ctx context.Context, query string) ([]ReleaseHit, error)
}

// CatalogClient is a provider that participates in the waterfall and also
// exposes release search for label hunting.
type CatalogClient interface {
	Client
	ReleaseSearcher
}
