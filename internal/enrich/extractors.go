package enrich

import (
	"fmt"
	"strings"

	"github.com/setgraph/enricher/internal/providers"
)

// Field names known to the default extractor table.
const (
	FieldBPM           = "bpm"
	FieldKey           = "key"
	FieldGenre         = "genre"
	FieldLabel         = "label"
	FieldISRC          = "isrc"
	FieldYear          = "year"
	FieldCatalogNumber = "catalog_number"
)

// FieldExtractor pulls one field's value out of a provider-native raw
// response. A nil return means the response has no usable value.
type FieldExtractor func(resp providers.Response) any

// ExtractorTable maps (provider, field) to its extraction function. It is
// built once at startup and read-only afterwards.
type ExtractorTable map[providers.ID]map[string]FieldExtractor

// Extract runs the extractor for (provider, field). The second return is
// false when no extractor is registered; that is an expected configuration
// gap, not an error.
func (t ExtractorTable) Extract(p providers.ID, field string, resp providers.Response) (any, bool) {
	fields, ok := t[p]
	if !ok {
		return nil, false
	}
	fn, ok := fields[field]
	if !ok {
		return nil, false
	}
	return fn(resp), true
}

// DefaultExtractors builds the extractor table for every supported provider.
// Extractors are the only code that knows a provider's response schema.
func DefaultExtractors() ExtractorTable {
	return ExtractorTable{
		providers.Spotify: {
			FieldBPM: func(r providers.Response) any {
				return getFloat(r, "audio_features", "tempo")
			},
			FieldKey:  spotifyCamelotKey,
			FieldISRC: func(r providers.Response) any { return getString(r, "external_ids", "isrc") },
			FieldYear: func(r providers.Response) any {
				return yearFromDate(getStringValue(r, "album", "release_date"))
			},
		},
		providers.Beatport: {
			FieldBPM: func(r providers.Response) any { return getFloat(r, "bpm") },
			FieldKey: func(r providers.Response) any {
				num := getFloat(r, "key", "camelot_number")
				letter := getStringValue(r, "key", "camelot_letter")
				if num == nil || letter == "" {
					return nil
				}
				return fmt.Sprintf("%d%s", int(num.(float64)), strings.ToUpper(letter))
			},
			FieldGenre: func(r providers.Response) any { return getString(r, "genre", "name") },
			FieldLabel: func(r providers.Response) any { return getString(r, "release", "label", "name") },
			FieldISRC:  func(r providers.Response) any { return getString(r, "isrc") },
			FieldCatalogNumber: func(r providers.Response) any {
				return getString(r, "release", "catalog_number")
			},
			FieldYear: func(r providers.Response) any {
				return yearFromDate(getStringValue(r, "publish_date"))
			},
		},
		providers.MusicBrainz: {
			FieldISRC:  mbFirstISRC,
			FieldGenre: mbTopGenre,
			FieldLabel: mbReleaseLabel,
			FieldYear: func(r providers.Response) any {
				rel := mbFirstRelease(r)
				if rel == nil {
					return nil
				}
				return yearFromDate(stringValue(rel["date"]))
			},
		},
		providers.FileTags: {
			FieldBPM:   func(r providers.Response) any { return getFloat(r, "bpm") },
			FieldKey:   func(r providers.Response) any { return getString(r, "key") },
			FieldGenre: func(r providers.Response) any { return getString(r, "genre") },
			FieldLabel: func(r providers.Response) any { return getString(r, "label") },
			FieldISRC:  func(r providers.Response) any { return getString(r, "isrc") },
		},
		providers.Juno: {
			FieldLabel: func(r providers.Response) any { return getString(r, "label") },
		},
		providers.Traxsource: {
			FieldLabel: func(r providers.Response) any { return getString(r, "label") },
		},
	}
}

// spotifyCamelotKey converts the audio-features pitch class and mode into a
// Camelot wheel code.
func spotifyCamelotKey(r providers.Response) any {
	pitch := getFloat(r, "audio_features", "key")
	mode := getFloat(r, "audio_features", "mode")
	if pitch == nil || mode == nil {
		return nil
	}
	p := int(pitch.(float64))
	if p < 0 || p > 11 {
		return nil
	}
	// Index by pitch class; [0] is the minor (A) code, [1] the major (B).
	wheel := [12][2]string{
		{"5A", "8B"},   // C
		{"12A", "3B"},  // C#/Db
		{"7A", "10B"},  // D
		{"2A", "5B"},   // D#/Eb
		{"9A", "12B"},  // E
		{"4A", "7B"},   // F
		{"11A", "2B"},  // F#/Gb
		{"6A", "9B"},   // G
		{"1A", "4B"},   // G#/Ab
		{"8A", "11B"},  // A
		{"3A", "6B"},   // A#/Bb
		{"10A", "1B"},  // B
	}
	if int(mode.(float64)) == 1 {
		return wheel[p][1]
	}
	return wheel[p][0]
}

func mbFirstISRC(r providers.Response) any {
	isrcs, ok := r["isrcs"].([]any)
	if !ok || len(isrcs) == 0 {
		return nil
	}
	return stringOrNil(stringValue(isrcs[0]))
}

// mbTopGenre picks the highest-voted tag on the recording.
func mbTopGenre(r providers.Response) any {
	tags, ok := r["tags"].([]any)
	if !ok {
		return nil
	}
	var best string
	var bestCount float64
	for _, t := range tags {
		tag, ok := t.(map[string]any)
		if !ok {
			continue
		}
		count, _ := tag["count"].(float64)
		name := stringValue(tag["name"])
		if name != "" && count > bestCount {
			best = name
			bestCount = count
		}
	}
	return stringOrNil(best)
}

func mbReleaseLabel(r providers.Response) any {
	rel := mbFirstRelease(r)
	if rel == nil {
		return nil
	}
	infos, ok := rel["label-info"].([]any)
	if !ok || len(infos) == 0 {
		return nil
	}
	info, ok := infos[0].(map[string]any)
	if !ok {
		return nil
	}
	label, ok := info["label"].(map[string]any)
	if !ok {
		return nil
	}
	return stringOrNil(stringValue(label["name"]))
}

func mbFirstRelease(r providers.Response) map[string]any {
	releases, ok := r["releases"].([]any)
	if !ok || len(releases) == 0 {
		return nil
	}
	rel, _ := releases[0].(map[string]any)
	return rel
}

// getString walks nested maps and returns the trimmed string at path, or nil.
func getString(r providers.Response, path ...string) any {
	return stringOrNil(getStringValue(r, path...))
}

func getStringValue(r providers.Response, path ...string) string {
	return stringValue(walk(map[string]any(r), path...))
}

// getFloat walks nested maps and returns the float64 at path, or nil.
func getFloat(r providers.Response, path ...string) any {
	v := walk(map[string]any(r), path...)
	switch n := v.(type) {
	case float64:
		if n == 0 {
			return nil
		}
		return n
	case int:
		if n == 0 {
			return nil
		}
		return float64(n)
	default:
		return nil
	}
}

func walk(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[key]
	}
	return cur
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func yearFromDate(date string) any {
	if len(date) < 4 {
		return nil
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil || year == 0 {
		return nil
	}
	return year
}
