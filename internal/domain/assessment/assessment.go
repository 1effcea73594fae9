package assessment

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("assessment not found")

type RankedCareer struct {
	SOCCode    string  `json:"soc_code"`
	CareerName string  `json:"career_name"`
	Score      float64 `json:"score"`
}

// Result is the stored outcome of one psychometric assessment; one row per
// student, replaced on re-submission (conflict key user_id).
type Result struct {
	UserID      string         `json:"user_id"`
	SchoolID    string         `json:"school_id"`
	RawAnswers  map[string]int `json:"raw_answers"`
	Ranking     []RankedCareer `json:"ranking"`
	ProfileData map[string]any `json:"profile_data"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Submission struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

// questionGroups is the fixed questionnaire layout: prefix and question count.
var questionGroups = []struct {
	prefix string
	count  int
}{
	{"A", 5},
	{"I", 6},
	{"T", 6},
	{"V", 6},
	{"W", 4},
}

// MissingAnswers returns the question ids absent from a submission, in
// questionnaire order.
func MissingAnswers(answers map[string]int) []string {
	var missing []string

	for _, g := range questionGroups {
		for i := 1; i <= g.count; i++ {
			id := fmt.Sprintf("%s%d", g.prefix, i)
			if _, ok := answers[id]; !ok {
				missing = append(missing, id)
			}
		}
	}

	return missing
}
