package diagnostic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/metrics"
	"github.com/arbor/paesdiag/internal/routes"
	"github.com/arbor/paesdiag/internal/unlock"
)

// Default result sizes.
const (
	DefaultTopAtoms             = 10
	DefaultQuickWins            = 5
	DefaultLowHangingFruitLimit = 20
)

// Options configures an Analyzer.
type Options struct {
	Scoring              unlock.ScoringConfig
	MaxRouteAtoms        int
	TopAtoms             int
	QuickWins            int
	LowHangingFruitLimit int
	// CombinedRoute adds a cross-axis route to every analysis.
	CombinedRoute bool
}

func (o Options) withDefaults() Options {
	if o.Scoring == (unlock.ScoringConfig{}) {
		o.Scoring = unlock.DefaultScoringConfig()
	}
	if o.MaxRouteAtoms <= 0 {
		o.MaxRouteAtoms = routes.DefaultMaxAtoms
	}
	if o.TopAtoms <= 0 {
		o.TopAtoms = DefaultTopAtoms
	}
	if o.QuickWins <= 0 {
		o.QuickWins = DefaultQuickWins
	}
	if o.LowHangingFruitLimit <= 0 {
		o.LowHangingFruitLimit = DefaultLowHangingFruitLimit
	}
	return o
}

// AnalyzeOptions are per-call settings.
type AnalyzeOptions struct {
	// CurrentPaesScore personalizes point projections. Zero uses the
	// generic baseline.
	CurrentPaesScore int
}

// Summary is the headline numbers of a learning analysis.
type Summary struct {
	TotalAtoms                 int `json:"totalAtoms"`
	MasteredCount              int `json:"masteredCount"`
	DirectlyMastered           int `json:"directlyMastered"`
	InferredMastered           int `json:"inferredMastered"`
	TotalQuestions             int `json:"totalQuestions"`
	UnlockedQuestions          int `json:"unlockedQuestions"`
	PotentialQuestionsToUnlock int `json:"potentialQuestionsToUnlock"`
}

// LearningAnalysis is the full output of AnalyzeLearningPotential.
type LearningAnalysis struct {
	Summary              Summary                    `json:"summary"`
	MasteryByAxis        []mastery.AxisMastery      `json:"masteryByAxis"`
	Routes               []routes.LearningRoute     `json:"routes"`
	CombinedRoute        *routes.LearningRoute      `json:"combinedRoute,omitempty"`
	TopAtomsByEfficiency []unlock.AtomMarginalValue `json:"topAtomsByEfficiency"`
	QuickWins            []unlock.AtomMarginalValue `json:"quickWins"`
	LowHangingFruit      []unlock.QuestionStatus    `json:"lowHangingFruit"`
	QuestionCounts       unlock.Counts              `json:"questionCounts"`
}

// Analyzer runs learning-potential analyses against a curriculum source.
// Each call loads reference data fresh; an Analyzer holds no per-student
// state and is safe for concurrent use.
type Analyzer struct {
	source  curriculum.Source
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAnalyzer creates an Analyzer. logger and m may be nil.
func NewAnalyzer(source curriculum.Source, opts Options, logger *slog.Logger, m *metrics.Metrics) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		source:  source,
		opts:    opts.withDefaults(),
		logger:  logger,
		metrics: m,
	}
}

// reference is the per-request view of the curriculum.
type reference struct {
	graph     *atomgraph.Graph
	questions []curriculum.Question
}

// loadReference issues the three reads concurrently and joins them.
func (a *Analyzer) loadReference(ctx context.Context) (*reference, error) {
	var (
		atoms []curriculum.Atom
		metas []curriculum.QuestionMeta
		links []curriculum.AtomLink
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		atoms, err = a.source.Atoms(gctx)
		if err != nil {
			return fmt.Errorf("load atoms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		metas, err = a.source.Questions(gctx)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		links, err = a.source.QuestionAtomLinks(gctx)
		if err != nil {
			return fmt.Errorf("load question atoms: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := atomgraph.New(atoms)
	if err := graph.Validate(); err != nil {
		a.logger.Warn("atom graph has integrity problems", "error", err)
		a.metrics.DataWarning("graph_integrity", 1)
		a.metrics.DataWarning("dangling_prerequisite", len(graph.Dangling()))
	}

	for _, axis := range graph.Axes() {
		if !axis.Known() {
			n := len(graph.ByAxis(axis))
			a.logger.Warn("atoms on unrecognised axis", "axis", axis, "atoms", n)
			a.metrics.DataWarning("unknown_axis", n)
		}
	}

	questions, dropped, dups := curriculum.JoinQuestions(metas, links, graph.Has)
	for _, l := range dropped {
		a.logger.Warn("ignoring question link to unknown atom", "question_id", l.QuestionID, "atom_id", l.AtomID)
	}
	a.metrics.DataWarning("unknown_atom_link", len(dropped))
	if len(dups) > 0 {
		a.logger.Warn("ignoring repeated question ids", "question_ids", dups)
		a.metrics.DataWarning("duplicate_question", len(dups))
	}

	return &reference{graph: graph, questions: questions}, nil
}

// AnalyzeLearningPotential infers full mastery from atomResults, measures
// every unmastered atom against the official questions and builds ranked
// learning routes. An empty atomResults is a valid cold start.
func (a *Analyzer) AnalyzeLearningPotential(ctx context.Context, atomResults []mastery.Observation, opts AnalyzeOptions) (analysis *LearningAnalysis, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if analysis != nil {
			n = len(analysis.Routes)
		}
		a.metrics.ObserveAnalysis(time.Since(start), err, n)
	}()

	ref, err := a.loadReference(ctx)
	if err != nil {
		return nil, err
	}
	return a.analyze(ref, atomResults, opts), nil
}

func (a *Analyzer) analyze(ref *reference, atomResults []mastery.Observation, opts AnalyzeOptions) *LearningAnalysis {
	full := mastery.ComputeFull(ref.graph, atomResults)
	mastered := mastery.MasteredSet(full)

	qa := unlock.AnalyzeAll(ref.questions, mastered)
	calc := unlock.NewCalculator(ref.graph, qa.Statuses(), mastered, a.opts.Scoring)
	values := calc.CalculateAllMarginalValues()

	builder := routes.NewBuilder(ref.graph, ref.questions, mastered, routes.Options{
		MaxAtoms:         a.opts.MaxRouteAtoms,
		CurrentPaesScore: opts.CurrentPaesScore,
		Scoring:          a.opts.Scoring,
		Logger:           a.logger,
	})

	ms := mastery.Summarize(full)
	counts := qa.Counts()

	out := &LearningAnalysis{
		Summary: Summary{
			TotalAtoms:                 ms.TotalAtoms,
			MasteredCount:              ms.MasteredCount,
			DirectlyMastered:           ms.DirectlyMastered,
			InferredMastered:           ms.InferredMastered,
			TotalQuestions:             counts.Total,
			UnlockedQuestions:          counts.Unlocked,
			PotentialQuestionsToUnlock: counts.OneAway + counts.TwoAway,
		},
		MasteryByAxis:        mastery.ByAxis(ref.graph, full),
		Routes:               builder.BuildAllRoutes(values),
		TopAtomsByEfficiency: routes.FindHighImpactAtoms(values, a.opts.TopAtoms),
		QuickWins:            routes.FindQuickWins(values, a.opts.QuickWins),
		LowHangingFruit:      qa.LowHangingFruit(a.opts.LowHangingFruitLimit),
		QuestionCounts:       counts,
	}
	if out.Routes == nil {
		out.Routes = []routes.LearningRoute{}
	}
	if a.opts.CombinedRoute {
		if r, ok := builder.BuildCombinedRoute(values); ok {
			out.CombinedRoute = &r
		}
	}
	return out
}

// AnalyzeFromScratch analyzes a student with no mastery at all, which
// shows the full learning landscape.
func (a *Analyzer) AnalyzeFromScratch(ctx context.Context, opts AnalyzeOptions) (*LearningAnalysis, error) {
	return a.AnalyzeLearningPotential(ctx, nil, opts)
}

// BestAxisToFocus returns the route that unlocks the most questions, or
// nil when no route unlocks anything.
func (a *Analyzer) BestAxisToFocus(ctx context.Context, atomResults []mastery.Observation) (*routes.LearningRoute, error) {
	analysis, err := a.AnalyzeLearningPotential(ctx, atomResults, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}
	if len(analysis.Routes) == 0 {
		return nil, nil
	}
	r := analysis.Routes[0]
	return &r, nil
}

// QuickWinAtoms returns atoms learnable now that unlock questions on their own.
func (a *Analyzer) QuickWinAtoms(ctx context.Context, atomResults []mastery.Observation) ([]unlock.AtomMarginalValue, error) {
	analysis, err := a.AnalyzeLearningPotential(ctx, atomResults, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}
	return analysis.QuickWins, nil
}

// ScoringConfig returns the effective unlock scoring configuration.
func (a *Analyzer) ScoringConfig() unlock.ScoringConfig {
	return a.opts.Scoring
}
