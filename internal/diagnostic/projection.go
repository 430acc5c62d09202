package diagnostic

import (
	"github.com/arbor/paesdiag/internal/scoring"
)

// EstimatedScore is a PAES estimate derived from unlocked questions.
type EstimatedScore struct {
	Score          int `json:"score"`
	Min            int `json:"min"`
	Max            int `json:"max"`
	CorrectPerTest int `json:"correctPerTest"`
}

// CalculatePAESFromUnlocked converts questions unlocked across numTests
// official tests into a per-test score with a ±RangeQuestions band.
func CalculatePAESFromUnlocked(unlocked, numTests int) EstimatedScore {
	if numTests <= 0 {
		numTests = scoring.NumOfficialTests
	}
	perTest := scoring.Round(float64(unlocked) / float64(numTests))
	score := scoring.PaesScore(perTest)
	lo, hi := scoring.ScoreRange(score)
	return EstimatedScore{Score: score, Min: lo, Max: hi, CorrectPerTest: perTest}
}

// ImprovementOptions personalizes CalculatePAESImprovement.
type ImprovementOptions struct {
	// CurrentPaesScore is the student's score. Zero uses the generic baseline.
	CurrentPaesScore int
	NumTests         int
}

// Improvement is a projected point gain with its uncertainty band.
type Improvement struct {
	MinPoints        int `json:"minPoints"`
	MaxPoints        int `json:"maxPoints"`
	QuestionsPerTest int `json:"questionsPerTest"`
	PercentageOfTest int `json:"percentageOfTest"`
}

// CalculatePAESImprovement projects the points gained by unlocking
// totalUnlocks more questions across the official tests. Any positive
// number of unlocks counts as at least one question per test. The band is
// ±ImprovementUncertainty and neither end exceeds MaxScore.
func CalculatePAESImprovement(totalUnlocks int, opts ImprovementOptions) Improvement {
	current := opts.CurrentPaesScore
	if current <= 0 {
		current = scoring.DefaultBaselineScore
	}
	numTests := opts.NumTests
	if numTests <= 0 {
		numTests = scoring.NumOfficialTests
	}

	perTest := 0
	if totalUnlocks > 0 {
		perTest = max(1, scoring.Round(float64(totalUnlocks)/float64(numTests)))
	}

	imp := scoring.CalculateImprovement(scoring.EstimateCorrectFromScore(current), perTest)
	rawMin := scoring.Round(float64(imp.Improvement) * (1 - scoring.ImprovementUncertainty))
	rawMax := scoring.Round(float64(imp.Improvement) * (1 + scoring.ImprovementUncertainty))

	return Improvement{
		MinPoints:        scoring.CapImprovementToMax(current, rawMin),
		MaxPoints:        scoring.CapImprovementToMax(current, rawMax),
		QuestionsPerTest: perTest,
		PercentageOfTest: scoring.Percentage(perTest, scoring.TotalQuestions),
	}
}
