package profile

import (
	"strings"

	"github.com/setgraph/enricher/internal/constants"
	"github.com/setgraph/enricher/internal/domain"
)

// neutralScore is used for a dimension with nothing to compare against;
// missing data is neither evidence for nor against a candidate.
const neutralScore = 0.5

// CheckContextualCoherence scores how well a candidate track fits between
// its setlist neighbors on genre, BPM, harmonic key, and label.
func CheckContextualCoherence(sc domain.SetlistContext, candidate domain.NeighborTrack) domain.CoherenceScores {
	scores := domain.CoherenceScores{
		Genre: genreCoherence(sc, candidate),
		BPM:   bpmCoherence(sc, candidate),
		Key:   keyCoherence(sc, candidate),
		Label: labelCoherence(sc, candidate),
	}
	scores.Overall = constants.CoherenceWeightGenre*scores.Genre +
		constants.CoherenceWeightBPM*scores.BPM +
		constants.CoherenceWeightKey*scores.Key +
		constants.CoherenceWeightLabel*scores.Label
	return scores
}

func genreCoherence(sc domain.SetlistContext, candidate domain.NeighborTrack) float64 {
	if candidate.Genre == "" {
		return neutralScore
	}
	comparable, matches := 0, 0
	for _, n := range neighbors(sc) {
		if n.Genre == "" {
			continue
		}
		comparable++
		if strings.EqualFold(n.Genre, candidate.Genre) {
			matches++
		}
	}
	if comparable == 0 {
		return neutralScore
	}
	switch matches {
	case 2:
		return 1.0
	case 1:
		return 0.8
	default:
		return 0.3
	}
}

// bpmCoherence averages the absolute BPM difference over neighbors with a
// known BPM; unknown neighbors are excluded, not treated as zero.
func bpmCoherence(sc domain.SetlistContext, candidate domain.NeighborTrack) float64 {
	if candidate.BPM <= 0 {
		return neutralScore
	}
	var diffSum float64
	checked := 0
	for _, n := range neighbors(sc) {
		if n.BPM <= 0 {
			continue
		}
		diff := candidate.BPM - n.BPM
		if diff < 0 {
			diff = -diff
		}
		diffSum += diff
		checked++
	}
	if checked == 0 {
		return neutralScore
	}
	score := 1.0 - (diffSum/float64(checked))/constants.BPMCoherenceSpread
	if score < 0 {
		return 0
	}
	return score
}

// keyCoherence is the fraction of checked neighbor transitions that are
// harmonically compatible on the Camelot wheel.
func keyCoherence(sc domain.SetlistContext, candidate domain.NeighborTrack) float64 {
	if candidate.Key == "" {
		return neutralScore
	}
	checked, compatible := 0, 0
	for _, n := range neighbors(sc) {
		if n.Key == "" {
			continue
		}
		checked++
		if AreKeysCompatible(candidate.Key, n.Key) {
			compatible++
		}
	}
	if checked == 0 {
		return neutralScore
	}
	return float64(compatible) / float64(checked)
}

func labelCoherence(sc domain.SetlistContext, candidate domain.NeighborTrack) float64 {
	if candidate.Label == "" {
		return neutralScore
	}
	comparable, matches := 0, 0
	for _, n := range neighbors(sc) {
		if n.Label == "" {
			continue
		}
		comparable++
		if strings.EqualFold(n.Label, candidate.Label) {
			matches++
		}
	}
	if comparable == 0 {
		return neutralScore
	}
	switch matches {
	case 2:
		return 0.9
	case 1:
		return 0.7
	default:
		return 0.4
	}
}

func neighbors(sc domain.SetlistContext) []domain.NeighborTrack {
	out := make([]domain.NeighborTrack, 0, 2)
	if sc.Prev != nil {
		out = append(out, *sc.Prev)
	}
	if sc.Next != nil {
		out = append(out, *sc.Next)
	}
	return out
}
