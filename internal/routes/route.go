package routes

import (
	"log/slog"
	"slices"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/scoring"
	"github.com/arbor/paesdiag/internal/unlock"
)

// DefaultMaxAtoms is how many atoms of a route are shown.
const DefaultMaxAtoms = 10

// CombinedAxis labels the cross-axis route.
const CombinedAxis curriculum.Axis = "ALL"

// AtomInRoute is one step of a learning route.
type AtomInRoute struct {
	AtomID                      string          `json:"atomId"`
	Title                       string          `json:"title"`
	Axis                        curriculum.Axis `json:"axis"`
	Position                    int             `json:"position"`
	QuestionsUnlockedHere       int             `json:"questionsUnlockedHere"`
	// CumulativeQuestionsUnlocked counts every unlocked question after this
	// step, including those unlocked before the route started.
	CumulativeQuestionsUnlocked int             `json:"cumulativeQuestionsUnlocked"`
	IsPrerequisite              bool            `json:"isPrerequisite"`
}

// LearningRoute is an ordered study plan. Atoms may be a prefix of the
// full route; TotalAtoms and the totals always describe the full route.
type LearningRoute struct {
	Axis                   curriculum.Axis `json:"axis"`
	AxisDisplayName        string          `json:"axisDisplayName"`
	Atoms                  []AtomInRoute   `json:"atoms"`
	TotalAtoms             int             `json:"totalAtoms"`
	TotalQuestionsUnlocked int             `json:"totalQuestionsUnlocked"`
	EstimatedPointsGain    int             `json:"estimatedPointsGain"`
	EstimatedMinutes       int             `json:"estimatedMinutes"`
}

// Options tunes route construction.
type Options struct {
	// MaxAtoms caps the displayed atoms per route. Zero means DefaultMaxAtoms.
	MaxAtoms int
	// CurrentPaesScore personalizes point projections. Zero means
	// scoring.DefaultBaselineScore.
	CurrentPaesScore int
	Scoring          unlock.ScoringConfig
	Logger           *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxAtoms <= 0 {
		o.MaxAtoms = DefaultMaxAtoms
	}
	if o.CurrentPaesScore <= 0 {
		o.CurrentPaesScore = scoring.DefaultBaselineScore
	}
	if o.Scoring == (unlock.ScoringConfig{}) {
		o.Scoring = unlock.DefaultScoringConfig()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Builder builds routes for one student's mastery state.
type Builder struct {
	graph     *atomgraph.Graph
	questions []curriculum.Question
	mastered  map[string]bool
	opts      Options
}

// NewBuilder creates a Builder. mastered is not modified.
func NewBuilder(g *atomgraph.Graph, questions []curriculum.Question, mastered map[string]bool, opts Options) *Builder {
	return &Builder{
		graph:     g,
		questions: questions,
		mastered:  mastered,
		opts:      opts.withDefaults(),
	}
}

// BuildAxisRoute builds the route for axis from values. It returns false
// when no atom of the axis has a positive unlock score.
func (b *Builder) BuildAxisRoute(axis curriculum.Axis, values []unlock.AtomMarginalValue) (LearningRoute, bool) {
	var selected []unlock.AtomMarginalValue
	for _, v := range values {
		if v.Axis == axis && v.UnlockScore > 0 {
			selected = append(selected, v)
		}
	}
	if len(selected) == 0 {
		return LearningRoute{}, false
	}
	return b.build(axis, axis.DisplayName(), selected), true
}

// BuildCombinedRoute builds a single route across all axes.
func (b *Builder) BuildCombinedRoute(values []unlock.AtomMarginalValue) (LearningRoute, bool) {
	var selected []unlock.AtomMarginalValue
	for _, v := range values {
		if v.UnlockScore > 0 {
			selected = append(selected, v)
		}
	}
	if len(selected) == 0 {
		return LearningRoute{}, false
	}
	return b.build(CombinedAxis, "Ruta Combinada", selected), true
}

// BuildAllRoutes builds one route per axis and keeps those that unlock at
// least one question, most questions first. Equal routes keep axis order.
func (b *Builder) BuildAllRoutes(values []unlock.AtomMarginalValue) []LearningRoute {
	var out []LearningRoute
	for _, axis := range b.graph.Axes() {
		r, ok := b.BuildAxisRoute(axis, values)
		if !ok || r.TotalQuestionsUnlocked == 0 {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(x, y LearningRoute) int {
		return y.TotalQuestionsUnlocked - x.TotalQuestionsUnlocked
	})
	return out
}

// build orders the selected atoms plus their unmastered prerequisites and
// walks the route, tracking which questions each step unlocks.
func (b *Builder) build(axis curriculum.Axis, name string, selected []unlock.AtomMarginalValue) LearningRoute {
	sorted := slices.Clone(selected)
	unlock.SortByEfficiency(sorted)

	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] && !b.mastered[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, v := range sorted {
		for _, p := range v.PrerequisitesNeeded {
			add(p)
		}
		add(v.AtomID)
	}
	ordered := TopologicalSort(b.graph, ids, b.mastered)

	steps, initial := b.walk(ordered)

	total := 0
	if len(steps) > 0 {
		total = steps[len(steps)-1].CumulativeQuestionsUnlocked - initial
	}

	route := LearningRoute{
		Axis:                   axis,
		AxisDisplayName:        name,
		Atoms:                  steps,
		TotalAtoms:             len(steps),
		TotalQuestionsUnlocked: total,
		EstimatedPointsGain:    EstimatePointsGain(total, b.opts.CurrentPaesScore, b.opts.Scoring.NumOfficialTests),
		EstimatedMinutes:       len(steps) * b.opts.Scoring.MinutesPerAtom,
	}
	if len(route.Atoms) > b.opts.MaxAtoms {
		route.Atoms = route.Atoms[:b.opts.MaxAtoms]
	}
	return route
}

// walk simulates learning ordered atoms one at a time. Cumulative counts
// start from initial, the questions already unlocked before the route.
func (b *Builder) walk(ordered []string) (steps []AtomInRoute, initial int) {
	remaining := make(map[string]int)
	byAtom := make(map[string][]string)
	for _, q := range b.questions {
		if len(q.PrimaryAtomIDs) == 0 {
			continue
		}
		n := 0
		for _, id := range q.PrimaryAtomIDs {
			if !b.mastered[id] {
				n++
				byAtom[id] = append(byAtom[id], q.ID)
			}
		}
		if n > 0 {
			remaining[q.ID] = n
		} else {
			initial++
		}
	}

	later := make(map[string]bool, len(ordered))
	for _, id := range ordered {
		later[id] = true
	}

	steps = make([]AtomInRoute, 0, len(ordered))
	cumulative := initial
	for _, id := range ordered {
		delete(later, id)
		atom, ok := b.graph.Atom(id)
		if !ok {
			b.opts.Logger.Warn("route atom missing from graph", "atom_id", id)
			continue
		}

		here := 0
		for _, qid := range byAtom[id] {
			remaining[qid]--
			if remaining[qid] == 0 {
				here++
			}
		}
		cumulative += here

		isPrereq := false
		for _, dep := range b.graph.Dependents(id) {
			if later[dep] {
				isPrereq = true
				break
			}
		}

		steps = append(steps, AtomInRoute{
			AtomID:                      id,
			Title:                       atom.Title,
			Axis:                        atom.Axis,
			Position:                    len(steps) + 1,
			QuestionsUnlockedHere:       here,
			CumulativeQuestionsUnlocked: cumulative,
			IsPrerequisite:              isPrereq,
		})
	}
	return steps, initial
}

// EstimatePointsGain converts questions unlocked across the official tests
// into PAES points for a student currently at currentScore. The unlocks
// are spread evenly over numTests tests.
func EstimatePointsGain(totalQuestions, currentScore, numTests int) int {
	if numTests <= 0 {
		numTests = scoring.NumOfficialTests
	}
	perTest := scoring.Round(float64(totalQuestions) / float64(numTests))
	currentCorrect := scoring.EstimateCorrectFromScore(currentScore)
	imp := scoring.CalculateImprovement(currentCorrect, perTest)
	return scoring.CapImprovementToMax(currentScore, imp.Improvement)
}
