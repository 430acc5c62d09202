package diagnostic

import (
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/routes"
	"github.com/arbor/paesdiag/internal/scoring"
)

type routeTitle struct {
	title    string
	subtitle string
}

var routeTitles = map[curriculum.Axis]routeTitle{
	curriculum.AxisAlgebra:     {"Dominio Algebraico", "Expresiones, ecuaciones y funciones"},
	curriculum.AxisNumbers:     {"El Poder de los Números", "Enteros, fracciones y operaciones"},
	curriculum.AxisGeometry:    {"El Ojo Geométrico", "Figuras, medidas y transformaciones"},
	curriculum.AxisProbability: {"El Arte de la Probabilidad", "Datos, probabilidades y estadística"},
	routes.CombinedAxis:        {"Ruta Combinada", "Lo más rentable de todos los ejes"},
}

// otherAxisSubtitle describes routes over an axis the content data names
// but routeTitles does not know.
const otherAxisSubtitle = "Otros contenidos del temario"

func titleFor(axis curriculum.Axis) routeTitle {
	if t, ok := routeTitles[axis]; ok {
		return t
	}
	return routeTitle{title: axis.DisplayName(), subtitle: otherAxisSubtitle}
}

// DisplayAtom is a route step as shown to students.
type DisplayAtom struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	QuestionsUnlocked int    `json:"questionsUnlocked"`
	IsPrerequisite    bool   `json:"isPrerequisite"`
}

// RouteDisplay is a learning route formatted for presentation. Question
// counts are per-test averages rather than totals across the corpus.
type RouteDisplay struct {
	Axis              curriculum.Axis `json:"axis"`
	Title             string          `json:"title"`
	Subtitle          string          `json:"subtitle"`
	AtomCount         int             `json:"atomCount"`
	QuestionsUnlocked int             `json:"questionsUnlocked"`
	PointsGain        int             `json:"pointsGain"`
	StudyHours        float64         `json:"studyHours"`
	Atoms             []DisplayAtom   `json:"atoms"`
}

// FormatRouteForDisplay titles route and converts its totals to per-test
// figures. An axis without a display title is shown under its raw name.
func FormatRouteForDisplay(route routes.LearningRoute, numTests int) RouteDisplay {
	t := titleFor(route.Axis)
	if numTests <= 0 {
		numTests = scoring.NumOfficialTests
	}

	atoms := make([]DisplayAtom, len(route.Atoms))
	for i, a := range route.Atoms {
		atoms[i] = DisplayAtom{
			ID:                a.AtomID,
			Title:             a.Title,
			QuestionsUnlocked: a.QuestionsUnlockedHere,
			IsPrerequisite:    a.IsPrerequisite,
		}
	}

	return RouteDisplay{
		Axis:              route.Axis,
		Title:             t.title,
		Subtitle:          t.subtitle,
		AtomCount:         route.TotalAtoms,
		QuestionsUnlocked: scoring.Round(float64(route.TotalQuestionsUnlocked) / float64(numTests)),
		PointsGain:        route.EstimatedPointsGain,
		StudyHours:        float64(scoring.Round(float64(route.EstimatedMinutes)/60*10)) / 10,
		Atoms:             atoms,
	}
}

// MaxDisplayedRoutes is how many routes a report shows.
const MaxDisplayedRoutes = 4

// QuickWin is a quick-win atom as shown to students.
type QuickWin struct {
	AtomID            string          `json:"atomId"`
	Title             string          `json:"title"`
	Axis              curriculum.Axis `json:"axis"`
	QuestionsUnlocked int             `json:"questionsUnlocked"`
}

// FruitCounts counts locked questions one and two atoms away.
type FruitCounts struct {
	OneAway int `json:"oneAway"`
	TwoAway int `json:"twoAway"`
}

// LearningRoutesReport is the student-facing summary of an analysis.
type LearningRoutesReport struct {
	Summary         Summary        `json:"summary"`
	EstimatedScore  EstimatedScore `json:"estimatedScore"`
	Routes          []RouteDisplay `json:"routes"`
	QuickWins       []QuickWin     `json:"quickWins"`
	Improvement     Improvement    `json:"improvement"`
	LowHangingFruit FruitCounts    `json:"lowHangingFruit"`
}

// BuildReport formats the top routes of analysis. The improvement
// projection covers the questions unlocked by the displayed routes and is
// anchored on currentPaesScore, or on the score estimated from unlocked
// questions when currentPaesScore is zero.
func BuildReport(analysis *LearningAnalysis, currentPaesScore, numTests int) LearningRoutesReport {
	if numTests <= 0 {
		numTests = scoring.NumOfficialTests
	}
	est := CalculatePAESFromUnlocked(analysis.Summary.UnlockedQuestions, numTests)

	top := analysis.Routes
	if len(top) > MaxDisplayedRoutes {
		top = top[:MaxDisplayedRoutes]
	}
	rep := LearningRoutesReport{
		Summary:        analysis.Summary,
		EstimatedScore: est,
		Routes:         make([]RouteDisplay, 0, len(top)),
		QuickWins:      make([]QuickWin, 0, len(analysis.QuickWins)),
	}

	totalPotential := 0
	for _, r := range top {
		rep.Routes = append(rep.Routes, FormatRouteForDisplay(r, numTests))
		totalPotential += r.TotalQuestionsUnlocked
	}

	for _, v := range analysis.QuickWins {
		rep.QuickWins = append(rep.QuickWins, QuickWin{
			AtomID:            v.AtomID,
			Title:             v.Title,
			Axis:              v.Axis,
			QuestionsUnlocked: len(v.ImmediateUnlocks),
		})
	}

	anchor := currentPaesScore
	if anchor <= 0 {
		anchor = est.Score
	}
	rep.Improvement = CalculatePAESImprovement(totalPotential, ImprovementOptions{
		CurrentPaesScore: anchor,
		NumTests:         numTests,
	})

	for _, q := range analysis.LowHangingFruit {
		switch q.AtomsToUnlock {
		case 1:
			rep.LowHangingFruit.OneAway++
		case 2:
			rep.LowHangingFruit.TwoAway++
		}
	}
	return rep
}
