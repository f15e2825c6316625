package label

import "strings"

// prefixBonus is added when the first three tokens of both titles match.
const prefixBonus = 0.2

// normalizeTitle strips bracketed/parenthesized content and punctuation,
// lowercases, and collapses whitespace.
func normalizeTitle(title string) string {
	title = bracketRe.ReplaceAllString(title, " ")
	title = parenRe.ReplaceAllString(title, " ")

	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// titleSimilarity scores two titles by token overlap (intersection over
// union), with a bonus when the main titles share their first three tokens.
func titleSimilarity(a, b string) float64 {
	tokensA := strings.Fields(normalizeTitle(a))
	tokensB := strings.Fields(normalizeTitle(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	score := float64(intersection) / float64(union)
	if sharesPrefix(tokensA, tokensB, 3) {
		score += prefixBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func sharesPrefix(a, b []string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
