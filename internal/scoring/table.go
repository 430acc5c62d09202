package scoring

const (
	// TotalQuestions is the number of scored questions in a PAES M1 test.
	TotalQuestions = 60

	MinScore = 100
	MaxScore = 1000
)

// scoreTable maps correct answers (the index) to the official PAES M1 score.
// The conversion is non-linear and must stay monotonically non-decreasing.
var scoreTable = [TotalQuestions + 1]int{
	100, 170, 194, 216, 236, 256, 275, 292, 307, 320, // 0-9
	334, 349, 365, 380, 393, 403, 412, 421, 432, 446, // 10-19
	460, 474, 486, 495, 502, 508, 516, 526, 539, 553, // 20-29
	567, 579, 587, 595, 601, 609, 618, 631, 645, 660, // 30-39
	672, 682, 690, 699, 710, 723, 738, 753, 767, 780, // 40-49
	793, 807, 824, 842, 861, 880, 900, 923, 948, 975, // 50-59
	1000, // 60
}

// Improvement is the effect of answering additional questions correctly.
type Improvement struct {
	CurrentScore int `json:"currentScore"`
	NewScore     int `json:"newScore"`
	Improvement  int `json:"improvement"`
	NewCorrect   int `json:"newCorrect"`
}

// PaesScore returns the PAES score for a number of correct answers.
// Out-of-range counts are clamped to [0, TotalQuestions].
func PaesScore(correct int) int {
	return scoreTable[clampCorrect(correct)]
}

// CalculateImprovement projects the score gained by answering
// additionalCorrect more questions on top of currentCorrect.
func CalculateImprovement(currentCorrect, additionalCorrect int) Improvement {
	current := clampCorrect(currentCorrect)
	if additionalCorrect < 0 {
		additionalCorrect = 0
	}
	newCorrect := min(TotalQuestions, current+additionalCorrect)

	currentScore := PaesScore(current)
	newScore := PaesScore(newCorrect)

	return Improvement{
		CurrentScore: currentScore,
		NewScore:     newScore,
		Improvement:  newScore - currentScore,
		NewCorrect:   newCorrect,
	}
}

// CapImprovementToMax limits improvement so that currentScore+improvement
// never exceeds MaxScore. The result is never negative.
func CapImprovementToMax(currentScore, improvement int) int {
	maxPossible := MaxScore - currentScore
	return max(0, min(improvement, maxPossible))
}

// EstimateCorrectFromScore returns the correct-answer count whose table score
// is closest to score. Ties resolve to the lowest count.
func EstimateCorrectFromScore(score int) int {
	closest := 0
	minDiff := absInt(scoreTable[0] - score)

	for i := 1; i <= TotalQuestions; i++ {
		diff := absInt(scoreTable[i] - score)
		if diff < minDiff {
			minDiff = diff
			closest = i
		}
	}
	return closest
}

// ScoreRange widens score by RangeQuestions correct answers on each side,
// looked up in the score table.
func ScoreRange(score int) (lo, hi int) {
	estimated := EstimateCorrectFromScore(score)
	minCorrect := max(0, estimated-RangeQuestions)
	maxCorrect := min(TotalQuestions, estimated+RangeQuestions)

	lo = max(MinScore, PaesScore(minCorrect))
	hi = min(MaxScore, PaesScore(maxCorrect))
	return lo, hi
}

func clampCorrect(n int) int {
	return max(0, min(TotalQuestions, n))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
