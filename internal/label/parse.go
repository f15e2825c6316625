package label

import (
	"regexp"
	"strings"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/domain"
)

var (
	bracketRe = regexp.MustCompile(`\[([^\[\]]+)\]`)
	parenRe   = regexp.MustCompile(`\(([^()]+)\)`)

	// Matched on word boundaries so label names that merely contain one of
	// these as a substring (e.g. the company suffix "Kft.") survive.
	nonLabelTokenRe = regexp.MustCompile(`(?i)\b(mix|remix|edit|version|dub|feat|featuring|ft|vs|bootleg|rework|remaster|remastered|instrumental|acapella|radio|extended|original|club|cover|live|mashup)\b`)
)

// abbreviations maps common label-name abbreviations to their expansions,
// used to widen downstream catalog searches.
var abbreviations = map[string]string{
	"recs":  "records",
	"rec":   "recordings",
	"ltd":   "limited",
	"intl":  "international",
	"co":    "company",
	"ent":   "entertainment",
	"prod":  "productions",
	"comms": "communications",
}

// parseTitle extracts a label candidate from bracketed or parenthesized text
// in the track title. Square brackets are the stronger convention.
func parseTitle(title string) *domain.LabelCandidate {
	if c := parseDelimited(title, bracketRe, constants.LabelConfidenceBrackets); c != nil {
		return c
	}
	return parseDelimited(title, parenRe, constants.LabelConfidenceParens)
}

func parseDelimited(title string, re *regexp.Regexp, confidence float64) *domain.LabelCandidate {
	for _, match := range re.FindAllStringSubmatch(title, -1) {
		text := strings.TrimSpace(match[1])
		if text == "" || isNonLabelText(text) {
			continue
		}
		return &domain.LabelCandidate{
			LabelName:       text,
			Source:          domain.LabelSourceTitleParse,
			Confidence:      confidence,
			TrackTitleMatch: title,
			SearchTerms:     expandSearchTerms(text),
		}
	}
	return nil
}

// isNonLabelText reports whether bracketed text is a mix/edit/version
// annotation rather than a label name.
func isNonLabelText(text string) bool {
	return nonLabelTokenRe.MatchString(text)
}

// expandSearchTerms returns the label text plus variants with known
// abbreviations expanded. The original always comes first.
func expandSearchTerms(labelText string) []string {
	terms := []string{labelText}

	tokens := strings.Fields(labelText)
	expanded := make([]string, len(tokens))
	changed := false
	for i, tok := range tokens {
		key := strings.ToLower(strings.Trim(tok, "."))
		if full, ok := abbreviations[key]; ok {
			expanded[i] = full
			changed = true
		} else {
			expanded[i] = tok
		}
	}
	if changed {
		terms = append(terms, strings.Join(expanded, " "))
	}
	return terms
}
