package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/setgraph/enricher/internal/httpclient"
)

// BeatportClient queries the Beatport catalog API. Beatport is the specialist
// for electronic-music fields (BPM, Camelot key, genre, label).
type BeatportClient struct {
	baseURL string
	http    *httpclient.Client
}

func NewBeatportClient(baseURL string, hc *httpclient.Client) *BeatportClient {
	if hc == nil {
		hc = httpclient.NewClient(nil, 0)
	}
	return &BeatportClient{
		baseURL: baseURL,
		http:    hc,
	}
}

func (c *BeatportClient) ID() ID {
	return Beatport
}

func (c *BeatportClient) SearchByISRC(ctx context.Context, isrc string) (Response, error) {
	if isrc == "" {
		return nil, ErrNotFound
	}
	u := fmt.Sprintf("%s/catalog/tracks?isrc=%s&per_page=1", c.baseURL, url.QueryEscape(isrc))
	return c.firstResult(ctx, u)
}

func (c *BeatportClient) SearchTrack(ctx context.Context, artist, title string) (Response, error) {
	if title == "" {
		return nil, ErrNotFound
	}
	u := fmt.Sprintf("%s/catalog/tracks?name=%s&artist_name=%s&per_page=1",
		c.baseURL, url.QueryEscape(title), url.QueryEscape(artist))
	return c.firstResult(ctx, u)
}

func (c *BeatportClient) GetTrackByID(ctx context.Context, id string) (Response, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var track Response
	if err := c.getJSON(ctx, fmt.Sprintf("%s/catalog/tracks/%s", c.baseURL, url.PathEscape(id)), &track); err != nil {
		return nil, err
	}
	return track, nil
}

// SearchReleases searches the release catalog for the label-hunting fallback.
func (c *BeatportClient) SearchReleases(ctx context.Context, query string) ([]ReleaseHit, error) {
	u := fmt.Sprintf("%s/catalog/releases?name=%s&per_page=10", c.baseURL, url.QueryEscape(query))

	var result struct {
		Results []struct {
			Name          string `json:"name"`
			Slug          string `json:"slug"`
			CatalogNumber string `json:"catalog_number"`
			Label         struct {
				Name string `json:"name"`
			} `json:"label"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	hits := make([]ReleaseHit, 0, len(result.Results))
	for _, r := range result.Results {
		if r.Label.Name == "" {
			continue
		}
		hits = append(hits, ReleaseHit{
			Title:         r.Name,
			Label:         r.Label.Name,
			CatalogNumber: r.CatalogNumber,
			URL:           "https://www.beatport.com/release/" + r.Slug,
		})
	}
	return hits, nil
}

func (c *BeatportClient) firstResult(ctx context.Context, u string) (Response, error) {
	var result struct {
		Results []Response `json:"results"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, ErrNotFound
	}
	return result.Results[0], nil
}

func (c *BeatportClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
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
		return fmt.Errorf("beatport returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
