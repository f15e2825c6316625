package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/setgraph/enricher/internal/httpclient"
)

// storefrontClient covers the smaller store-front catalogs (Juno,
// Traxsource). They expose release search only: track lookups by ISRC or ID
// are unsupported, and the label hunter is their main consumer.
type storefrontClient struct {
	id         ID
	baseURL    string
	searchPath string
	http       *httpclient.Client
}

// NewJunoClient creates the Juno Download catalog client.
func NewJunoClient(baseURL string, hc *httpclient.Client) CatalogClient {
	return newStorefrontClient(Juno, baseURL, "/search/releases", hc)
}

// NewTraxsourceClient creates the Traxsource catalog client.
func NewTraxsourceClient(baseURL string, hc *httpclient.Client) CatalogClient {
	return newStorefrontClient(Traxsource, baseURL, "/releases/search", hc)
}

func newStorefrontClient(id ID, baseURL, searchPath string, hc *httpclient.Client) *storefrontClient {
	if hc == nil {
		hc = httpclient.NewClient(nil, 0)
	}
	return &storefrontClient{
		id:         id,
		baseURL:    baseURL,
		searchPath: searchPath,
		http:       hc,
	}
}

func (c *storefrontClient) ID() ID {
	return c.id
}

func (c *storefrontClient) SearchByISRC(ctx context.Context, isrc string) (Response, error) {
	return nil, ErrUnsupportedLookup
}

func (c *storefrontClient) GetTrackByID(ctx context.Context, id string) (Response, error) {
	return nil, ErrUnsupportedLookup
}

func (c *storefrontClient) SearchTrack(ctx context.Context, artist, title string) (Response, error) {
	query := title
	if artist != "" {
		query = artist + " " + title
	}
	hits, err := c.SearchReleases(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNotFound
	}
	return Response{
		"title": hits[0].Title,
		"label": hits[0].Label,
		"url":   hits[0].URL,
	}, nil
}

func (c *storefrontClient) SearchReleases(ctx context.Context, query string) ([]ReleaseHit, error) {
	u := fmt.Sprintf("%s%s?q=%s&limit=10", c.baseURL, c.searchPath, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.id, resp.StatusCode)
	}

	var result struct {
		Releases []struct {
			Title         string `json:"title"`
			Label         string `json:"label"`
			CatalogNumber string `json:"catalog_number"`
			URL           string `json:"url"`
		} `json:"releases"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]ReleaseHit, 0, len(result.Releases))
	for _, r := range result.Releases {
		if r.Label == "" {
			continue
		}
		hits = append(hits, ReleaseHit{
			Title:         r.Title,
			Label:         r.Label,
			CatalogNumber: r.CatalogNumber,
			URL:           r.URL,
		})
	}
	return hits, nil
}
