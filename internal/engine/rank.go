package engine

import (
	"sort"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// rankCandidates orders candidates by final score descending. Exact
// ties fall back to ascending position in the tie-break order;
// candidates absent from that order sort after present ones and keep
// their input order among themselves.
func rankCandidates(universe []string, scores map[string]float64, tieBreak []string) []models.CandidateScore {
	position := make(map[string]int, len(tieBreak))
	for i, c := range tieBreak {
		if _, ok := position[c]; !ok {
			position[c] = i
		}
	}

	ranking := make([]models.CandidateScore, 0, len(universe))
	for _, c := range universe {
		ranking = append(ranking, models.CandidateScore{Candidate: c, Score: scores[c]})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, oka := position[a.Candidate]
		pb, okb := position[b.Candidate]
		switch {
		case oka && okb:
			return pa < pb
		case oka:
			return true
		case okb:
			return false
		default:
			return false // stable sort keeps input order
		}
	})

	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	return ranking
}
