package unlock

import (
	"cmp"
	"slices"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
)

// AtomMarginalValue is what mastering one more atom is worth.
type AtomMarginalValue struct {
	AtomID string          `json:"atomId"`
	Axis   curriculum.Axis `json:"axis"`
	Title  string          `json:"title"`
	// ImmediateUnlocks are questions where this atom is the only missing
	// primary atom.
	ImmediateUnlocks []string `json:"immediateUnlocks"`
	// ProgressContributions maps question id to the number of primary atoms
	// still missing after this one is mastered.
	ProgressContributions map[string]int `json:"progressContributions"`
	UnlockScore           float64        `json:"unlockScore"`
	// PrerequisitesNeeded are the unmastered prerequisites, in learning order.
	PrerequisitesNeeded []string `json:"prerequisitesNeeded"`
	TotalCost           int      `json:"totalCost"`
	Efficiency          float64  `json:"efficiency"`
}

// Cost is the number of unmastered prerequisites.
func (v AtomMarginalValue) Cost() int {
	return len(v.PrerequisitesNeeded)
}

// UnmasteredPrerequisites returns the prerequisites of atomID that must be
// learned first, ordered so each comes after its own prerequisites. The walk
// stops at mastered atoms and is safe on cyclic data.
func UnmasteredPrerequisites(g *atomgraph.Graph, atomID string, mastered map[string]bool) []string {
	visited := map[string]bool{atomID: true}
	var out []string
	var visit func(id string)
	visit = func(id string) {
		for _, p := range g.Prerequisites(id) {
			if visited[p] || mastered[p] {
				continue
			}
			visited[p] = true
			out = append(out, p)
			visit(p)
		}
	}
	visit(atomID)

	slices.SortFunc(out, func(a, b string) int {
		if c := cmp.Compare(g.TopoIndex(a), g.TopoIndex(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if out == nil {
		out = []string{}
	}
	return out
}

// Calculator computes marginal values against a fixed question analysis.
type Calculator struct {
	graph    *atomgraph.Graph
	mastered map[string]bool
	config   ScoringConfig
	// byAtom indexes locked statuses by missing primary atom.
	byAtom map[string][]QuestionStatus
}

// NewCalculator indexes the locked statuses for repeated lookups.
func NewCalculator(g *atomgraph.Graph, statuses []QuestionStatus, mastered map[string]bool, cfg ScoringConfig) *Calculator {
	c := &Calculator{
		graph:    g,
		mastered: mastered,
		config:   cfg,
		byAtom:   make(map[string][]QuestionStatus),
	}
	for _, st := range statuses {
		if st.IsUnlocked {
			continue
		}
		for _, id := range st.MissingPrimaryAtoms {
			c.byAtom[id] = append(c.byAtom[id], st)
		}
	}
	return c
}

// CalculateAtomMarginalValue returns the value of mastering atomID. The
// second result is false when atomID is not in the graph.
func (c *Calculator) CalculateAtomMarginalValue(atomID string) (AtomMarginalValue, bool) {
	atom, ok := c.graph.Atom(atomID)
	if !ok {
		return AtomMarginalValue{}, false
	}

	v := AtomMarginalValue{
		AtomID:                atom.ID,
		Axis:                  atom.Axis,
		Title:                 atom.Title,
		ImmediateUnlocks:      []string{},
		ProgressContributions: map[string]int{},
	}

	for _, st := range c.byAtom[atomID] {
		if st.AtomsToUnlock == 1 {
			v.ImmediateUnlocks = append(v.ImmediateUnlocks, st.QuestionID)
			continue
		}
		v.ProgressContributions[st.QuestionID] = st.AtomsToUnlock - 1
	}
	slices.Sort(v.ImmediateUnlocks)

	var twoAway, threeOrMore int
	for _, remaining := range v.ProgressContributions {
		if remaining == 1 {
			twoAway++
		} else {
			threeOrMore++
		}
	}
	v.UnlockScore = float64(len(v.ImmediateUnlocks))*c.config.ImmediateUnlockWeight +
		float64(twoAway)*c.config.TwoAwayWeight +
		float64(threeOrMore)*c.config.ThreeOrMoreWeight

	v.PrerequisitesNeeded = UnmasteredPrerequisites(c.graph, atomID, c.mastered)
	v.TotalCost = 1 + len(v.PrerequisitesNeeded)
	v.Efficiency = v.UnlockScore / float64(v.TotalCost)
	return v, true
}

// CalculateAllMarginalValues returns values for every unmastered atom,
// best efficiency first. Ties fall back to unlock score, then atom id.
func (c *Calculator) CalculateAllMarginalValues() []AtomMarginalValue {
	var out []AtomMarginalValue
	for _, a := range c.graph.Atoms() {
		if c.mastered[a.ID] {
			continue
		}
		v, _ := c.CalculateAtomMarginalValue(a.ID)
		out = append(out, v)
	}
	SortByEfficiency(out)
	return out
}

// SortByEfficiency orders values by efficiency desc, unlock score desc,
// atom id asc.
func SortByEfficiency(values []AtomMarginalValue) {
	slices.SortFunc(values, func(a, b AtomMarginalValue) int {
		if c := cmp.Compare(b.Efficiency, a.Efficiency); c != 0 {
			return c
		}
		if c := cmp.Compare(b.UnlockScore, a.UnlockScore); c != 0 {
			return c
		}
		return cmp.Compare(a.AtomID, b.AtomID)
	})
}

// CalculateAllMarginalValues is a convenience wrapper that analyzes the
// questions and ranks every unmastered atom.
func CalculateAllMarginalValues(g *atomgraph.Graph, questions []curriculum.Question, mastered map[string]bool, cfg ScoringConfig) []AtomMarginalValue {
	statuses := AnalyzeAll(questions, mastered).Statuses()
	return NewCalculator(g, statuses, mastered, cfg).CalculateAllMarginalValues()
}
