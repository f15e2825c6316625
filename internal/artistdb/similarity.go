package artistdb

import "github.com/setgraph/enricher/internal/domain"

// nameSimilarity scores two artist names on a 0–100 scale using edit
// distance over their normalized forms. The scale matches the popularity
// axis so the disambiguation weights compose as intended.
func nameSimilarity(a, b string) float64 {
	na := domain.NormalizeArtistName(a)
	nb := domain.NormalizeArtistName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	dist := levenshtein(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	return 100 * (1 - float64(dist)/float64(longest))
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
