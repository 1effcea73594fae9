package ranking

import (
	"sort"
	"strings"

	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
)

// careerWeights maps a career to the trait groups that predict fit for it.
// The table is intentionally small; the engine's contract is the ordering,
// not the catalogue.
var careerWeights = []struct {
	socCode string
	name    string
	weights map[string]float64
}{
	{"15-1252", "Software Developer", map[string]float64{"T": 0.5, "I": 0.3, "A": 0.2}},
	{"29-1141", "Registered Nurse", map[string]float64{"W": 0.5, "V": 0.3, "A": 0.2}},
	{"25-2031", "Secondary School Teacher", map[string]float64{"V": 0.4, "W": 0.4, "I": 0.2}},
	{"13-2011", "Accountant", map[string]float64{"I": 0.5, "T": 0.3, "W": 0.2}},
	{"27-1024", "Graphic Designer", map[string]float64{"A": 0.6, "T": 0.2, "V": 0.2}},
	{"11-2021", "Marketing Manager", map[string]float64{"V": 0.5, "A": 0.3, "I": 0.2}},
	{"17-2051", "Civil Engineer", map[string]float64{"T": 0.4, "I": 0.4, "W": 0.2}},
	{"19-2031", "Chemist", map[string]float64{"I": 0.6, "T": 0.3, "W": 0.1}},
	{"23-1011", "Lawyer", map[string]float64{"V": 0.5, "I": 0.4, "W": 0.1}},
	{"21-1021", "Social Worker", map[string]float64{"W": 0.6, "V": 0.3, "A": 0.1}},
}

// Engine turns a complete answer set into a ranked career list. Scores are a
// weighted sum of normalised trait-group averages; ties break on career name
// so the ranking is deterministic.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Rank(answers map[string]int) []assessment.RankedCareer {
	traits := traitAverages(answers)

	out := make([]assessment.RankedCareer, 0, len(careerWeights))
	for _, c := range careerWeights {
		var score float64
		for trait, w := range c.weights {
			score += w * traits[trait]
		}

		out = append(out, assessment.RankedCareer{
			SOCCode:    c.socCode,
			CareerName: c.name,
			Score:      score,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CareerName < out[j].CareerName
	})

	return out
}

// traitAverages groups answers by their question prefix and averages each
// group onto a 0..1 scale (answers are 1..5 Likert values).
func traitAverages(answers map[string]int) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]float64{}

	for id, v := range answers {
		prefix := strings.TrimRight(id, "0123456789")
		sums[prefix] += float64(v)
		counts[prefix]++
	}

	out := make(map[string]float64, len(sums))
	for prefix, sum := range sums {
		out[prefix] = (sum / counts[prefix]) / 5
	}

	return out
}
