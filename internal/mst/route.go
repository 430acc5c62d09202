// Package mst implements the two-stage adaptive diagnostic: the stage-1
// routing test, the three stage-2 routes and the weighted PAES estimate.
package mst

import "fmt"

// Route is the stage-2 branch assigned from stage-1 performance.
type Route string

const (
	RouteA Route = "A"
	RouteB Route = "B"
	RouteC Route = "C"
)

// QuestionsPerStage is the number of questions in each stage.
const QuestionsPerStage = 8

// Stage-1 cut points: up to routeAMax correct goes to A, up to routeBMax to B.
const (
	routeAMax = 3
	routeBMax = 6
)

var routeFactors = map[Route]float64{
	RouteA: 0.70,
	RouteB: 0.85,
	RouteC: 1.00,
}

var routeNames = map[Route]string{
	RouteA: "Nivel Fundamental",
	RouteB: "Nivel Intermedio",
	RouteC: "Nivel Avanzado",
}

// GetRoute maps the stage-1 correct count to a route.
func GetRoute(stage1Correct int) Route {
	switch {
	case stage1Correct <= routeAMax:
		return RouteA
	case stage1Correct <= routeBMax:
		return RouteB
	default:
		return RouteC
	}
}

// ParseRoute parses "A", "B" or "C".
func ParseRoute(s string) (Route, error) {
	r := Route(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown route %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the three routes.
func (r Route) Valid() bool {
	_, ok := routeFactors[r]
	return ok
}

// Factor is the ceiling multiplier applied to the normalized score.
func (r Route) Factor() float64 {
	return routeFactors[r]
}

func (r Route) DisplayName() string {
	return routeNames[r]
}
