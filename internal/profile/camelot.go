package profile

import "strings"

// parseCamelot splits a Camelot code like "8A" or "12B" into its wheel
// position and mode letter.
func parseCamelot(key string) (position int, mode byte, ok bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if len(key) < 2 {
		return 0, 0, false
	}
	mode = key[len(key)-1]
	if mode != 'A' && mode != 'B' {
		return 0, 0, false
	}
	for _, r := range key[:len(key)-1] {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
		position = position*10 + int(r-'0')
	}
	if position < 1 || position > 12 {
		return 0, 0, false
	}
	return position, mode, true
}

// AreKeysCompatible reports whether two Camelot keys mix harmonically: the
// same key, the relative major/minor (same position, other letter), or an
// adjacent position with the same letter. The wheel wraps, so 12 and 1 are
// adjacent.
func AreKeysCompatible(a, b string) bool {
	posA, modeA, okA := parseCamelot(a)
	posB, modeB, okB := parseCamelot(b)
	if !okA || !okB {
		return false
	}

	if posA == posB {
		return true
	}
	if modeA != modeB {
		return false
	}
	diff := posA - posB
	if diff < 0 {
		diff = -diff
	}
	return diff == 1 || diff == 11
}
