// Package report renders diagnostic output for terminals.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/arbor/paesdiag/internal/scoring"
)

// barWidth is the cell count of percentage bars.
const barWidth = 20

// Bar renders pct (0-100) as a fixed-width bar followed by the percentage.
func Bar(pct int) string {
	filled := pct * barWidth / 100
	filled = max(0, min(filled, barWidth))
	return BarFilled.Render(strings.Repeat("█", filled)) +
		BarEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3d%%", pct)
}

// Results writes the score card of a finished diagnostic.
func Results(w io.Writer, r diagnostic.Results) {
	card := strings.Join([]string{
		Title.Render("Resultado PAES M1"),
		Score.Render(fmt.Sprintf("%d", r.PaesScore)) + Subtitle.Render(fmt.Sprintf("  (%d–%d)", r.PaesMin, r.PaesMax)),
		Body.Render("Nivel: " + r.Level),
		Hint.Render(fmt.Sprintf("Ruta %s · %s · %d/%d correctas", r.Route, r.Route.DisplayName(), r.CorrectAnswers, r.TotalQuestions)),
	}, "\n")
	fmt.Fprintln(w, Card.Render(card))

	fmt.Fprintln(w, Title.Render("Por eje"))
	for _, axis := range curriculum.AllAxes() {
		p := r.AxisPerformance[axis]
		fmt.Fprintf(w, "  %-22s %s  %d/%d\n", axis.DisplayName(), Bar(p.Percentage), p.Correct, p.Total)
	}
	fmt.Fprintln(w, Title.Render("Por habilidad"))
	for _, skill := range mst.AllSkills() {
		p := r.SkillPerformance[skill]
		fmt.Fprintf(w, "  %-22s %s  %d/%d\n", skill.DisplayName(), Bar(p.Percentage), p.Correct, p.Total)
	}
}

// NeedsSupport writes the message shown when results cannot be computed.
func NeedsSupport(w io.Writer, c diagnostic.Completion) {
	fmt.Fprintln(w, NotMastered.Render("No pudimos calcular tus resultados."))
	if c.Reason != "" {
		fmt.Fprintln(w, Hint.Render(c.Reason))
	}
}

// Mastery writes per-atom mastery followed by the summary.
func Mastery(w io.Writer, results []mastery.Result) {
	for _, r := range results {
		var mark string
		switch {
		case r.Mastered && r.Source == mastery.SourceInferred:
			mark = Inferred.Render("✓ inferido")
		case r.Mastered:
			mark = Mastered.Render("✓ dominado")
		case r.Source == mastery.SourceDirect:
			mark = NotMastered.Render("✗ no dominado")
		default:
			mark = Hint.Render("· sin evaluar")
		}
		fmt.Fprintf(w, "  %-32s %s\n", r.AtomID, mark)
	}

	s := mastery.Summarize(results)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", Title.Render("Dominio"), Bar(s.MasteryPercentage))
	fmt.Fprintln(w, Subtitle.Render(fmt.Sprintf(
		"%d de %d átomos (%d directos, %d inferidos), %d no dominados, %d sin evaluar",
		s.MasteredCount, s.TotalAtoms, s.DirectlyMastered, s.InferredMastered, s.NotMasteredCount, s.NotTestedCount,
	)))
}

// LearningRoutes writes a learning-routes report.
func LearningRoutes(w io.Writer, rep diagnostic.LearningRoutesReport) {
	est := rep.EstimatedScore
	fmt.Fprintln(w, Card.Render(strings.Join([]string{
		Title.Render("Tu potencial"),
		Body.Render(fmt.Sprintf("%d de %d preguntas desbloqueadas", rep.Summary.UnlockedQuestions, rep.Summary.TotalQuestions)),
		Body.Render("Puntaje estimado: ") + Score.Render(fmt.Sprintf("%d", est.Score)) +
			Subtitle.Render(fmt.Sprintf("  (%d–%d)", est.Min, est.Max)),
		Hint.Render(fmt.Sprintf("Átomos dominados: %d/%d", rep.Summary.MasteredCount, rep.Summary.TotalAtoms)),
	}, "\n")))

	if len(rep.Routes) == 0 {
		fmt.Fprintln(w, Hint.Render("No quedan rutas: todo lo evaluable está dominado."))
		return
	}

	for i, r := range rep.Routes {
		fmt.Fprintf(w, "\n%s %s\n", Title.Render(fmt.Sprintf("%d. %s", i+1, r.Title)), Subtitle.Render(r.Subtitle))
		fmt.Fprintf(w, "   %d átomos · +%d preguntas por prueba · +%d pts · %.1f h\n",
			r.AtomCount, r.QuestionsUnlocked, r.PointsGain, r.StudyHours)
		for _, a := range r.Atoms {
			line := fmt.Sprintf("   - %s", a.Title)
			if a.QuestionsUnlocked > 0 {
				line += fmt.Sprintf(" (+%d)", a.QuestionsUnlocked)
			}
			if a.IsPrerequisite {
				line += Hint.Render(" prerrequisito")
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(rep.QuickWins) > 0 {
		fmt.Fprintf(w, "\n%s\n", Title.Render("Victorias rápidas"))
		for _, q := range rep.QuickWins {
			fmt.Fprintf(w, "   - %s [%s] desbloquea %d\n", q.Title, q.Axis, q.QuestionsUnlocked)
		}
	}

	imp := rep.Improvement
	if imp.QuestionsPerTest > 0 {
		fmt.Fprintf(w, "\n%s %s\n", Title.Render("Mejora posible:"),
			Score.Render(fmt.Sprintf("+%d a +%d pts", imp.MinPoints, imp.MaxPoints)))
		fmt.Fprintln(w, Hint.Render(fmt.Sprintf("%d preguntas más por prueba (%d%% de %d)",
			imp.QuestionsPerTest, imp.PercentageOfTest, scoring.TotalQuestions)))
	}
	fmt.Fprintln(w, Hint.Render(fmt.Sprintf("A un átomo: %d · a dos átomos: %d",
		rep.LowHangingFruit.OneAway, rep.LowHangingFruit.TwoAway)))
}
