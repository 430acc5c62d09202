package scoring

import "math"

// Weighted scoring of diagnostic responses.
const (
	WeightLow           = 1.0
	WeightMedium        = 1.8
	DifficultyThreshold = 0.35

	// CoverageFactor discounts for curriculum atoms the diagnostic cannot infer.
	CoverageFactor = 0.90
)

const (
	// RangeQuestions is the ± correct-answer band used by ScoreRange.
	RangeQuestions = 5

	// RangeMargin is the ± point margin around a diagnostic score.
	RangeMargin = 50

	// ImprovementUncertainty is the ± fraction applied to improvement projections.
	ImprovementUncertainty = 0.15

	// NumOfficialTests is how many official tests make up the question corpus.
	NumOfficialTests = 4

	MinutesPerAtom = 20

	// DefaultBaselineScore is used for projections when no diagnostic score is
	// known (about 20 correct answers).
	DefaultBaselineScore = 460
)

// Unlock score weights.
const (
	ImmediateUnlockWeight = 10.0
	TwoAwayWeight         = 3.0
	ThreeOrMoreWeight     = 1.0
)

// WeightedResponse is a diagnostic answer reduced to what the score formula needs.
type WeightedResponse struct {
	Correct    bool
	Difficulty float64
}

// QuestionWeight returns WeightLow for difficulty <= DifficultyThreshold and
// WeightMedium otherwise.
func QuestionWeight(difficulty float64) float64 {
	if difficulty <= DifficultyThreshold {
		return WeightLow
	}
	return WeightMedium
}

// RawPaesScore computes 100 + 900 × normalized × routeFactor × CoverageFactor,
// rounded to the nearest integer. An empty response set scores MinScore.
func RawPaesScore(routeFactor float64, responses []WeightedResponse) int {
	var achieved, possible float64
	for _, r := range responses {
		w := QuestionWeight(r.Difficulty)
		possible += w
		if r.Correct {
			achieved += w
		}
	}

	normalized := 0.0
	if possible > 0 {
		normalized = achieved / possible
	}

	raw := MinScore + 900*normalized*routeFactor*CoverageFactor
	return Round(raw)
}

// Round rounds half up, matching how the calibration tables were produced.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Percentage returns round(part/total × 100), or 0 when total is zero.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return Round(float64(part) / float64(total) * 100)
}
