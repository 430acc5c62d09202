package mst

import (
	"time"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/scoring"
)

// Response is one answered diagnostic question. SelectedAnswer is nil when
// the student skipped or chose "no sé".
type Response struct {
	Question       Question             `json:"question"`
	SelectedAnswer *string              `json:"selectedAnswer"`
	IsCorrect      bool                 `json:"isCorrect"`
	ResponseTime   time.Duration        `json:"responseTime"`
	Atoms          []curriculum.AtomRef `json:"atoms,omitempty"`
}

// PAESResult is the weighted score estimate with its ±RangeMargin band.
type PAESResult struct {
	Score int    `json:"score"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Level string `json:"level"`
}

// CalculatePAESScore scores the responses of both stages for route.
func CalculatePAESScore(route Route, responses []Response) PAESResult {
	weighted := make([]scoring.WeightedResponse, len(responses))
	for i, r := range responses {
		weighted[i] = scoring.WeightedResponse{Correct: r.IsCorrect, Difficulty: r.Question.Difficulty}
	}

	score := scoring.RawPaesScore(route.Factor(), weighted)
	return PAESResult{
		Score: score,
		Min:   max(scoring.MinScore, score-scoring.RangeMargin),
		Max:   min(scoring.MaxScore, score+scoring.RangeMargin),
		Level: Level(score),
	}
}

var levelBreakpoints = []struct {
	below int
	label string
}{
	{450, "Muy Inicial"},
	{500, "Inicial"},
	{550, "Intermedio Bajo"},
	{600, "Intermedio"},
	{650, "Intermedio Alto"},
	{700, "Alto"},
}

// Level returns the ordinal performance label for a score.
func Level(score int) string {
	for _, b := range levelBreakpoints {
		if score < b.below {
			return b.label
		}
	}
	return "Muy Alto"
}

// Performance is a correct/total tally for one category.
type Performance struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// CalculateAxisPerformance tallies responses per axis. Every axis is
// present in the result; axes without responses report 0%.
func CalculateAxisPerformance(responses []Response) map[curriculum.Axis]Performance {
	keys := curriculum.AllAxes()
	return tally(keys, responses, func(r Response) curriculum.Axis { return r.Question.Axis })
}

// CalculateSkillPerformance tallies responses per skill.
func CalculateSkillPerformance(responses []Response) map[Skill]Performance {
	return tally(AllSkills(), responses, func(r Response) Skill { return r.Question.Skill })
}

func tally[K comparable](keys []K, responses []Response, keyOf func(Response) K) map[K]Performance {
	out := make(map[K]Performance, len(keys))
	for _, k := range keys {
		out[k] = Performance{}
	}
	for _, r := range responses {
		k := keyOf(r)
		p := out[k]
		p.Total++
		if r.IsCorrect {
			p.Correct++
		}
		out[k] = p
	}
	for k, p := range out {
		p.Percentage = scoring.Percentage(p.Correct, p.Total)
		out[k] = p
	}
	return out
}
