package unlock

import (
	"fmt"

	"github.com/arbor/paesdiag/internal/scoring"
)

// ScoringConfig weighs the ways an atom can move questions toward unlock.
type ScoringConfig struct {
	ImmediateUnlockWeight float64 `yaml:"immediate_unlock_weight" json:"immediateUnlockWeight"`
	TwoAwayWeight         float64 `yaml:"two_away_weight" json:"twoAwayWeight"`
	ThreeOrMoreWeight     float64 `yaml:"three_or_more_weight" json:"threeOrMoreWeight"`
	MinutesPerAtom        int     `yaml:"minutes_per_atom" json:"minutesPerAtom"`
	NumOfficialTests      int     `yaml:"num_official_tests" json:"numOfficialTests"`
}

// DefaultScoringConfig returns the calibrated weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ImmediateUnlockWeight: scoring.ImmediateUnlockWeight,
		TwoAwayWeight:         scoring.TwoAwayWeight,
		ThreeOrMoreWeight:     scoring.ThreeOrMoreWeight,
		MinutesPerAtom:        scoring.MinutesPerAtom,
		NumOfficialTests:      scoring.NumOfficialTests,
	}
}

// Validate checks that weights are non-negative and counts positive.
func (c ScoringConfig) Validate() error {
	if c.ImmediateUnlockWeight < 0 || c.TwoAwayWeight < 0 || c.ThreeOrMoreWeight < 0 {
		return fmt.Errorf("unlock weights must be >= 0, got %v/%v/%v",
			c.ImmediateUnlockWeight, c.TwoAwayWeight, c.ThreeOrMoreWeight)
	}
	if c.MinutesPerAtom <= 0 {
		return fmt.Errorf("minutes_per_atom must be > 0, got %d", c.MinutesPerAtom)
	}
	if c.NumOfficialTests <= 0 {
		return fmt.Errorf("num_official_tests must be > 0, got %d", c.NumOfficialTests)
	}
	return nil
}
