// Package filetags exposes already-downloaded audio files as an enrichment
// provider: BPM, key, genre, label, and ISRC are read from ID3v2 frames and
// FLAC Vorbis comments. Tag reading only; no audio analysis.
package filetags

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/providers"
)

// Client reads tags from files under a single audio directory.
type Client struct {
	audioDir string
	log      *logger.Logger
}

func NewClient(audioDir string, log *logger.Logger) *Client {
	return &Client{
		audioDir: audioDir,
		log:      log.WithComponent("filetags"),
	}
}

func (c *Client) ID() providers.ID {
	return providers.FileTags
}

func (c *Client) SearchByISRC(ctx context.Context, isrc string) (providers.Response, error) {
	return nil, providers.ErrUnsupportedLookup
}

// GetTrackByID treats id as a path relative to the audio directory.
func (c *Client) GetTrackByID(ctx context.Context, id string) (providers.Response, error) {
	if id == "" {
		return nil, providers.ErrNotFound
	}
	path := filepath.Join(c.audioDir, filepath.Clean("/"+id))
	return c.readFile(path)
}

// SearchTrack locates a file named "<artist> - <title>" with a known audio
// extension, case-insensitively.
func (c *Client) SearchTrack(ctx context.Context, artist, title string) (providers.Response, error) {
	if title == "" {
		return nil, providers.ErrNotFound
	}
	want := strings.ToLower(strings.TrimSpace(artist + " - " + title))

	entries, err := os.ReadDir(c.audioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".flac" {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if base == want {
			return c.readFile(filepath.Join(c.audioDir, name))
		}
	}
	return nil, providers.ErrNotFound
}

func (c *Client) readFile(path string) (providers.Response, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return c.readMP3(path)
	case ".flac":
		return c.readFLAC(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

func (c *Client) readMP3(path string) (providers.Response, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open id3 tag: %w", err)
	}
	defer func() {
		_ = tag.Close()
	}()

	resp := providers.Response{
		"title":  tag.Title(),
		"artist": tag.Artist(),
		"genre":  tag.Genre(),
	}
	setIfPresent(resp, "bpm", textFrame(tag, "TBPM"))
	setIfPresent(resp, "key", textFrame(tag, "TKEY"))
	setIfPresent(resp, "label", textFrame(tag, "TPUB"))
	setIfPresent(resp, "isrc", textFrame(tag, "TSRC"))
	normalizeBPM(resp)
	return resp, nil
}

func (c *Client) readFLAC(path string) (providers.Response, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac file: %w", err)
	}

	var cmt *flacvorbis.MetaDataBlockVorbisComment
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err = flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vorbis comments: %w", err)
		}
		break
	}
	if cmt == nil {
		return nil, providers.ErrNotFound
	}

	resp := providers.Response{}
	setIfPresent(resp, "title", vorbisField(cmt, flacvorbis.FIELD_TITLE))
	setIfPresent(resp, "artist", vorbisField(cmt, flacvorbis.FIELD_ARTIST))
	setIfPresent(resp, "genre", vorbisField(cmt, flacvorbis.FIELD_GENRE))
	setIfPresent(resp, "bpm", vorbisField(cmt, "BPM"))
	setIfPresent(resp, "key", vorbisField(cmt, "INITIALKEY"))
	setIfPresent(resp, "label", vorbisField(cmt, "LABEL"))
	setIfPresent(resp, "isrc", vorbisField(cmt, "ISRC"))
	normalizeBPM(resp)
	return resp, nil
}

func textFrame(tag *id3v2.Tag, frameID string) string {
	return strings.TrimSpace(tag.GetTextFrame(frameID).Text)
}

func vorbisField(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func setIfPresent(resp providers.Response, key, value string) {
	if value != "" {
		resp[key] = value
	}
}

// normalizeBPM converts a textual BPM tag to a number so downstream
// extractors see one shape regardless of container format.
func normalizeBPM(resp providers.Response) {
	s, ok := resp["bpm"].(string)
	if !ok {
		return
	}
	if bpm, err := strconv.ParseFloat(s, 64); err == nil && bpm > 0 {
		resp["bpm"] = bpm
	} else {
		delete(resp, "bpm")
	}
}
