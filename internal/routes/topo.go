// Package routes turns per-atom marginal values into ordered, per-axis
// learning routes that respect prerequisite order.
package routes

import "github.com/arbor/paesdiag/internal/atomgraph"

// TopologicalSort orders atomIDs so every atom comes after those of its
// prerequisites that are also in atomIDs and not mastered. Atoms are
// visited in input order, so callers control priority among independent
// atoms. Atoms on a prerequisite cycle are emitted once, in visit order.
func TopologicalSort(g *atomgraph.Graph, atomIDs []string, mastered map[string]bool) []string {
	inScope := make(map[string]bool, len(atomIDs))
	for _, id := range atomIDs {
		inScope[id] = true
	}

	out := make([]string, 0, len(atomIDs))
	visited := make(map[string]bool, len(atomIDs))
	visiting := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] || visiting[id] {
			return
		}
		visiting[id] = true
		for _, p := range g.Prerequisites(id) {
			if inScope[p] && !mastered[p] {
				visit(p)
			}
		}
		delete(visiting, id)
		visited[id] = true
		out = append(out, id)
	}

	for _, id := range atomIDs {
		visit(id)
	}
	return out
}
