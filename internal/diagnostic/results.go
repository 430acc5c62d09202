// Package diagnostic ties scoring, mastery inference, unlock analysis and
// route optimization into the entry points used by the CLI and HTTP API.
package diagnostic

import (
	"errors"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mst"
)

// ErrRouteUnset is returned when results are requested for an attempt whose
// stage-2 route was never assigned.
var ErrRouteUnset = errors.New("diagnostic route unset")

// Results is the display bundle for a finished diagnostic.
type Results struct {
	Route            mst.Route                           `json:"route"`
	PaesScore        int                                 `json:"paesScore"`
	PaesMin          int                                 `json:"paesMin"`
	PaesMax          int                                 `json:"paesMax"`
	Level            string                              `json:"level"`
	AxisPerformance  map[curriculum.Axis]mst.Performance `json:"axisPerformance"`
	SkillPerformance map[mst.Skill]mst.Performance       `json:"skillPerformance"`
	CorrectAnswers   int                                 `json:"correctAnswers"`
	TotalQuestions   int                                 `json:"totalQuestions"`
}

// CalculateDiagnosticResults scores responses for route. It returns
// ErrRouteUnset when route is not A, B or C.
func CalculateDiagnosticResults(responses []mst.Response, route mst.Route) (Results, error) {
	if !route.Valid() {
		return Results{}, ErrRouteUnset
	}

	paes := mst.CalculatePAESScore(route, responses)
	correct := 0
	for _, r := range responses {
		if r.IsCorrect {
			correct++
		}
	}

	return Results{
		Route:            route,
		PaesScore:        paes.Score,
		PaesMin:          paes.Min,
		PaesMax:          paes.Max,
		Level:            paes.Level,
		AxisPerformance:  mst.CalculateAxisPerformance(responses),
		SkillPerformance: mst.CalculateSkillPerformance(responses),
		CorrectAnswers:   correct,
		TotalQuestions:   len(responses),
	}, nil
}

// CompletionStatus is the terminal state of a diagnostic attempt.
type CompletionStatus string

const (
	StatusCompleted CompletionStatus = "completed"
	// StatusNeedsSupport means results cannot be shown and the student
	// should be directed to support.
	StatusNeedsSupport CompletionStatus = "needs_support"
)

// Completion is the outcome of finishing an attempt.
type Completion struct {
	Status  CompletionStatus `json:"status"`
	Results *Results         `json:"results,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

// Complete finishes an attempt. An unset route yields StatusNeedsSupport
// rather than an error.
func Complete(route mst.Route, responses []mst.Response) Completion {
	res, err := CalculateDiagnosticResults(responses, route)
	if err != nil {
		return Completion{Status: StatusNeedsSupport, Reason: err.Error()}
	}
	return Completion{Status: StatusCompleted, Results: &res}
}
