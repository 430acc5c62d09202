package mastery

import (
	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/scoring"
)

// Summary counts mastery results by outcome and source.
type Summary struct {
	TotalAtoms        int `json:"totalAtoms"`
	MasteredCount     int `json:"masteredCount"`
	DirectlyMastered  int `json:"directlyMastered"`
	InferredMastered  int `json:"inferredMastered"`
	NotMasteredCount  int `json:"notMasteredCount"`
	NotTestedCount    int `json:"notTestedCount"`
	MasteryPercentage int `json:"masteryPercentage"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	s.TotalAtoms = len(results)
	for _, r := range results {
		switch {
		case r.Mastered && r.Source == SourceDirect:
			s.MasteredCount++
			s.DirectlyMastered++
		case r.Mastered:
			s.MasteredCount++
			s.InferredMastered++
		case r.Source == SourceDirect:
			s.NotMasteredCount++
		default:
			s.NotTestedCount++
		}
	}
	s.MasteryPercentage = scoring.Percentage(s.MasteredCount, s.TotalAtoms)
	return s
}

// AxisMastery is the mastery tally for one axis.
type AxisMastery struct {
	Axis              curriculum.Axis `json:"axis"`
	TotalAtoms        int             `json:"totalAtoms"`
	MasteredAtoms     int             `json:"masteredAtoms"`
	MasteryPercentage int             `json:"masteryPercentage"`
}

// ByAxis tallies mastery per axis present in g, in g.Axes() order.
func ByAxis(g *atomgraph.Graph, results []Result) []AxisMastery {
	mastered := MasteredSet(results)
	axes := g.Axes()
	out := make([]AxisMastery, 0, len(axes))
	for _, axis := range axes {
		am := AxisMastery{Axis: axis}
		for _, a := range g.ByAxis(axis) {
			am.TotalAtoms++
			if mastered[a.ID] {
				am.MasteredAtoms++
			}
		}
		am.MasteryPercentage = scoring.Percentage(am.MasteredAtoms, am.TotalAtoms)
		out = append(out, am)
	}
	return out
}
