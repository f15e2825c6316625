package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/httpclient"
)

const mbUserAgent = "setgraph-enricher/1.0 (https://github.com/setgraph/enricher)"

// MusicBrainzClient queries the MusicBrainz web service. MusicBrainz is the
// canonical open provider: it carries the highest base confidence and also
// serves label lookups for the label hunter.
type MusicBrainzClient struct {
	baseURL   string
	userAgent string
	http      *httpclient.Client
}

func NewMusicBrainzClient(baseURL string, hc *httpclient.Client) *MusicBrainzClient {
	if hc == nil {
		hc = httpclient.NewClient(nil, constants.MusicBrainzRequestInterval)
	}
	return &MusicBrainzClient{
		baseURL:   baseURL,
		userAgent: mbUserAgent,
		http:      hc,
	}
}

func (c *MusicBrainzClient) ID() ID {
	return MusicBrainz
}

func (c *MusicBrainzClient) SearchByISRC(ctx context.Context, isrc string) (Response, error) {
	if isrc == "" {
		return nil, ErrNotFound
	}
	u := fmt.Sprintf("%s/recording?query=isrc:%s&inc=artists+releases+tags+isrcs&fmt=json&limit=1",
		c.baseURL, url.QueryEscape(isrc))
	return c.getRecordingFromSearch(ctx, u)
}

func (c *MusicBrainzClient) SearchTrack(ctx context.Context, artist, title string) (Response, error) {
	if title == "" {
		return nil, ErrNotFound
	}
	query := fmt.Sprintf("recording:%q", title)
	if artist != "" {
		query += fmt.Sprintf(" AND artist:%q", artist)
	}
	u := fmt.Sprintf("%s/recording?query=%s&inc=artists+releases+tags+isrcs&fmt=json&limit=1",
		c.baseURL, url.QueryEscape(query))
	return c.getRecordingFromSearch(ctx, u)
}

func (c *MusicBrainzClient) GetTrackByID(ctx context.Context, mbid string) (Response, error) {
	if mbid == "" {
		return nil, ErrNotFound
	}
	u := fmt.Sprintf("%s/recording/%s?inc=artists+releases+release-groups+artist-credits+tags+isrcs&fmt=json",
		c.baseURL, url.PathEscape(mbid))

	var resp Response
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LookupReleaseLabel searches releases by title and artist and returns the
// first label-bearing hit, if any.
func (c *MusicBrainzClient) LookupReleaseLabel(ctx context.Context, title, artist string) (*ReleaseHit, error) {
	if title == "" {
		return nil, nil
	}
	query := fmt.Sprintf("release:%q", title)
	if artist != "" {
		query += fmt.Sprintf(" AND artist:%q", artist)
	}
	u := fmt.Sprintf("%s/release?query=%s&inc=labels&fmt=json&limit=5",
		c.baseURL, url.QueryEscape(query))

	var result mbReleaseSearchResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	for _, rel := range result.Releases {
		if len(rel.LabelInfo) == 0 || rel.LabelInfo[0].Label.Name == "" {
			continue
		}
		return &ReleaseHit{
			Title:         rel.Title,
			Label:         rel.LabelInfo[0].Label.Name,
			CatalogNumber: rel.LabelInfo[0].CatalogNumber,
			URL:           "https://musicbrainz.org/release/" + rel.ID,
		}, nil
	}
	return nil, nil
}

func (c *MusicBrainzClient) getRecordingFromSearch(ctx context.Context, u string) (Response, error) {
	var result struct {
		Recordings []Response `json:"recordings"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if len(result.Recordings) == 0 {
		return nil, ErrNotFound
	}
	return result.Recordings[0], nil
}

func (c *MusicBrainzClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
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
		return fmt.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type mbReleaseSearchResponse struct {
	Releases []mbRelease `json:"releases"`
}

type mbRelease struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	LabelInfo []mbLabelInfo `json:"label-info"`
}

type mbLabelInfo struct {
	CatalogNumber string  `json:"catalog-number"`
	Label         mbLabel `json:"label"`
}

type mbLabel struct {
	Name string `json:"name"`
}
