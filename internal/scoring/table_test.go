package scoring

import "testing"

func TestPaesScore_KnownValues(t *testing.T) {
	tests := []struct {
		correct int
		want    int
	}{
		{0, 100},
		{1, 170},
		{20, 460},
		{30, 567},
		{45, 723},
		{59, 975},
		{60, 1000},
	}
	for _, tt := range tests {
		if got := PaesScore(tt.correct); got != tt.want {
			t.Errorf("PaesScore(%d) = %d, want %d", tt.correct, got, tt.want)
		}
	}
}

func TestPaesScore_Clamps(t *testing.T) {
	if got := PaesScore(-3); got != MinScore {
		t.Errorf("PaesScore(-3) = %d, want %d", got, MinScore)
	}
	if got := PaesScore(75); got != MaxScore {
		t.Errorf("PaesScore(75) = %d, want %d", got, MaxScore)
	}
}

func TestScoreTable_Monotonic(t *testing.T) {
	for i := 1; i <= TotalQuestions; i++ {
		if scoreTable[i] < scoreTable[i-1] {
			t.Errorf("scoreTable[%d]=%d < scoreTable[%d]=%d", i, scoreTable[i], i-1, scoreTable[i-1])
		}
	}
}

func TestCalculateImprovement(t *testing.T) {
	got := CalculateImprovement(20, 5)
	want := Improvement{CurrentScore: 460, NewScore: 508, Improvement: 48, NewCorrect: 25}
	if got != want {
		t.Errorf("CalculateImprovement(20, 5) = %+v, want %+v", got, want)
	}
}

func TestCalculateImprovement_CapsAtTotal(t *testing.T) {
	got := CalculateImprovement(58, 10)
	if got.NewCorrect != TotalQuestions {
		t.Errorf("NewCorrect = %d, want %d", got.NewCorrect, TotalQuestions)
	}
	if got.NewScore != MaxScore {
		t.Errorf("NewScore = %d, want %d", got.NewScore, MaxScore)
	}
	if got.Improvement != 25 {
		t.Errorf("Improvement = %d, want 25", got.Improvement)
	}
}

func TestCalculateImprovement_NeverNegative(t *testing.T) {
	for cur := 0; cur <= TotalQuestions; cur++ {
		for add := -2; add <= 10; add++ {
			if imp := CalculateImprovement(cur, add).Improvement; imp < 0 {
				t.Fatalf("CalculateImprovement(%d, %d).Improvement = %d", cur, add, imp)
			}
		}
	}
}

func TestCapImprovementToMax(t *testing.T) {
	tests := []struct {
		current, imp, want int
	}{
		{460, 48, 48},
		{980, 48, 20},
		{1000, 10, 0},
		{500, -5, 0},
	}
	for _, tt := range tests {
		if got := CapImprovementToMax(tt.current, tt.imp); got != tt.want {
			t.Errorf("CapImprovementToMax(%d, %d) = %d, want %d", tt.current, tt.imp, got, tt.want)
		}
	}
}

func TestEstimateCorrectFromScore(t *testing.T) {
	tests := []struct {
		score, want int
	}{
		{460, 20},
		{100, 0},
		{1000, 60},
		{50, 0},
		{1200, 60},
		{503, 24}, // 502 is closest
		{505, 24}, // tie between 502 and 508 goes to the lower count
	}
	for _, tt := range tests {
		if got := EstimateCorrectFromScore(tt.score); got != tt.want {
			t.Errorf("EstimateCorrectFromScore(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestScoreRange(t *testing.T) {
	lo, hi := ScoreRange(460)
	if lo != 403 || hi != 508 {
		t.Errorf("ScoreRange(460) = (%d, %d), want (403, 508)", lo, hi)
	}

	lo, hi = ScoreRange(100)
	if lo != 100 || hi != 256 {
		t.Errorf("ScoreRange(100) = (%d, %d), want (100, 256)", lo, hi)
	}

	lo, hi = ScoreRange(1000)
	if lo != 880 || hi != 1000 {
		t.Errorf("ScoreRange(1000) = (%d, %d), want (880, 1000)", lo, hi)
	}
}
