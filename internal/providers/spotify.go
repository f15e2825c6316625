package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/setgraph/enricher/internal/httpclient"
)

// SpotifyClient queries the Spotify Web API. Track lookups are merged with
// the audio-features endpoint so tempo and key ride along in one response.
type SpotifyClient struct {
	baseURL string
	token   string
	http    *httpclient.Client
}

func NewSpotifyClient(baseURL, token string, hc *httpclient.Client) *SpotifyClient {
	if hc == nil {
		hc = httpclient.NewClient(nil, 0)
	}
	return &SpotifyClient{
		baseURL: baseURL,
		token:   token,
		http:    hc,
	}
}

func (c *SpotifyClient) ID() ID {
	return Spotify
}

func (c *SpotifyClient) SearchByISRC(ctx context.Context, isrc string) (Response, error) {
	if isrc == "" {
		return nil, ErrNotFound
	}
	return c.searchOne(ctx, "isrc:"+isrc)
}

func (c *SpotifyClient) SearchTrack(ctx context.Context, artist, title string) (Response, error) {
	if title == "" {
		return nil, ErrNotFound
	}
	query := "track:" + title
	if artist != "" {
		query += " artist:" + artist
	}
	return c.searchOne(ctx, query)
}

func (c *SpotifyClient) GetTrackByID(ctx context.Context, id string) (Response, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var track Response
	if err := c.getJSON(ctx, fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(id)), &track); err != nil {
		return nil, err
	}
	return c.withAudioFeatures(ctx, track, id)
}

func (c *SpotifyClient) searchOne(ctx context.Context, query string) (Response, error) {
	u := fmt.Sprintf("%s/search?q=%s&type=track&limit=1", c.baseURL, url.QueryEscape(query))

	var result struct {
		Tracks struct {
			Items []Response `json:"items"`
		} `json:"tracks"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if len(result.Tracks.Items) == 0 {
		return nil, ErrNotFound
	}

	track := result.Tracks.Items[0]
	id, _ := track["id"].(string)
	return c.withAudioFeatures(ctx, track, id)
}

// withAudioFeatures attaches the audio-features object under the
// "audio_features" key. A failed features fetch degrades the response rather
// than failing the whole lookup.
func (c *SpotifyClient) withAudioFeatures(ctx context.Context, track Response, id string) (Response, error) {
	if id == "" {
		return track, nil
	}
	var features Response
	if err := c.getJSON(ctx, fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(id)), &features); err == nil {
		track["audio_features"] = map[string]any(features)
	}
	return track, nil
}

func (c *SpotifyClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
