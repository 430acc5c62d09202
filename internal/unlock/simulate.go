package unlock

import (
	"maps"
	"slices"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// Simulation is the outcome of a what-if mastery change.
type Simulation struct {
	NewUnlocks         []string `json:"newUnlocks"`
	TotalUnlockedAfter int      `json:"totalUnlockedAfter"`
}

// SimulateQuestionUnlocks reports which questions would become unlocked if
// atomIDs were mastered in addition to current.
func SimulateQuestionUnlocks(atomIDs []string, questions []curriculum.Question, current map[string]bool) Simulation {
	after := maps.Clone(current)
	if after == nil {
		after = make(map[string]bool, len(atomIDs))
	}
	for _, id := range atomIDs {
		after[id] = true
	}

	sim := Simulation{NewUnlocks: []string{}}
	for _, q := range questions {
		if len(q.PrimaryAtomIDs) == 0 {
			continue
		}
		if !AnalyzeQuestion(q, after).IsUnlocked {
			continue
		}
		sim.TotalUnlockedAfter++
		if !AnalyzeQuestion(q, current).IsUnlocked {
			sim.NewUnlocks = append(sim.NewUnlocks, q.ID)
		}
	}
	slices.Sort(sim.NewUnlocks)
	return sim
}
