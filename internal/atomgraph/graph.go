// Package atomgraph holds the atom prerequisite DAG with precomputed
// indices. A Graph is built once per request from the repository read and
// is read-only afterwards, so it is safe for concurrent use.
package atomgraph

import (
	"slices"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// Edge is a prerequisite edge: Atom depends on Prerequisite.
type Edge struct {
	Atom         string
	Prerequisite string
}

// Graph is the atom DAG.
type Graph struct {
	atoms      []curriculum.Atom
	byID       map[string]*curriculum.Atom
	byAxis     map[curriculum.Axis][]curriculum.Atom
	prereqs    map[string][]string
	dependents map[string][]string
	topoOrder  []curriculum.Atom
	topoIndex  map[string]int

	duplicates []string
	dangling   []Edge
	cyclic     []string
}

// New builds a graph from atoms. Duplicate ids keep the first occurrence.
// Prerequisite ids that do not name an atom are dropped from the edge set
// and reported by Dangling and Validate.
func New(atoms []curriculum.Atom) *Graph {
	g := &Graph{
		byID:       make(map[string]*curriculum.Atom, len(atoms)),
		byAxis:     make(map[curriculum.Axis][]curriculum.Atom),
		prereqs:    make(map[string][]string, len(atoms)),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(atoms)),
	}

	// Build ID index
	g.atoms = make([]curriculum.Atom, 0, len(atoms))
	seen := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		if seen[a.ID] {
			g.duplicates = append(g.duplicates, a.ID)
			continue
		}
		seen[a.ID] = true
		g.atoms = append(g.atoms, a)
	}
	for i := range g.atoms {
		g.byID[g.atoms[i].ID] = &g.atoms[i]
	}

	// Resolve edges, dropping dangling ones
	for _, a := range g.atoms {
		resolved := make([]string, 0, len(a.PrerequisiteIDs))
		for _, p := range a.PrerequisiteIDs {
			_, known := g.byID[p]
			switch {
			case !known:
				g.dangling = append(g.dangling, Edge{Atom: a.ID, Prerequisite: p})
			case p == a.ID:
				g.cyclic = append(g.cyclic, a.ID)
			case !slices.Contains(resolved, p):
				resolved = append(resolved, p)
			}
		}
		g.prereqs[a.ID] = resolved
		for _, p := range resolved {
			g.dependents[p] = append(g.dependents[p], a.ID)
		}
	}
	for id := range g.dependents {
		slices.Sort(g.dependents[id])
	}

	g.buildTopoOrder()

	for i := range g.topoOrder {
		a := g.topoOrder[i]
		g.byAxis[a.Axis] = append(g.byAxis[a.Axis], a)
	}

	return g
}

// buildTopoOrder runs Kahn's algorithm with a sorted ready queue so the
// order is deterministic. Atoms stuck in a cycle are appended last in id
// order and recorded for Validate.
func (g *Graph) buildTopoOrder() {
	inDegree := make(map[string]int, len(g.atoms))
	var queue []string
	for _, a := range g.atoms {
		inDegree[a.ID] = len(g.prereqs[a.ID])
		if inDegree[a.ID] == 0 {
			queue = append(queue, a.ID)
		}
	}
	slices.Sort(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g.topoOrder = append(g.topoOrder, *g.byID[id])

		var ready []string
		for _, dep := range g.dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		queue = append(queue, ready...)
		slices.Sort(queue)
	}

	if len(g.topoOrder) < len(g.atoms) {
		var stuck []string
		for _, a := range g.atoms {
			if inDegree[a.ID] > 0 {
				stuck = append(stuck, a.ID)
			}
		}
		slices.Sort(stuck)
		for _, id := range stuck {
			g.topoOrder = append(g.topoOrder, *g.byID[id])
		}
		g.cyclic = append(g.cyclic, stuck...)
		slices.Sort(g.cyclic)
		g.cyclic = slices.Compact(g.cyclic)
	}

	for i, a := range g.topoOrder {
		g.topoIndex[a.ID] = i
	}
}

// Len returns the number of distinct atoms.
func (g *Graph) Len() int {
	return len(g.atoms)
}

// Has reports whether id names an atom in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Atom returns the atom with the given id.
func (g *Graph) Atom(id string) (curriculum.Atom, bool) {
	a, ok := g.byID[id]
	if !ok {
		return curriculum.Atom{}, false
	}
	return *a, true
}

// Atoms returns all atoms in input order.
func (g *Graph) Atoms() []curriculum.Atom {
	return slices.Clone(g.atoms)
}

// Prerequisites returns the resolved direct prerequisite ids of id.
func (g *Graph) Prerequisites(id string) []string {
	return slices.Clone(g.prereqs[id])
}

// Dependents returns the ids of atoms that directly depend on id, sorted.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// Ancestors returns every transitive prerequisite of id, sorted. It
// terminates on cyclic data.
func (g *Graph) Ancestors(id string) []string {
	visited := make(map[string]bool)
	var visit func(string)
	visit = func(cur string) {
		for _, p := range g.prereqs[cur] {
			if visited[p] {
				continue
			}
			visited[p] = true
			visit(p)
		}
	}
	visit(id)
	delete(visited, id)

	out := make([]string, 0, len(visited))
	for p := range visited {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// ByAxis returns the atoms of an axis in topological order.
func (g *Graph) ByAxis(axis curriculum.Axis) []curriculum.Atom {
	return slices.Clone(g.byAxis[axis])
}

// Axes returns the axes present in the graph: known axes in display order,
// then any others sorted.
func (g *Graph) Axes() []curriculum.Axis {
	var out []curriculum.Axis
	for _, a := range curriculum.AllAxes() {
		if len(g.byAxis[a]) > 0 {
			out = append(out, a)
		}
	}
	var extra []curriculum.Axis
	for a := range g.byAxis {
		if !a.Known() {
			extra = append(extra, a)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// TopologicalOrder returns all atoms with every atom after its
// prerequisites. Atoms on a cycle come last.
func (g *Graph) TopologicalOrder() []curriculum.Atom {
	return slices.Clone(g.topoOrder)
}

// TopoIndex returns id's position in TopologicalOrder, or -1.
func (g *Graph) TopoIndex(id string) int {
	i, ok := g.topoIndex[id]
	if !ok {
		return -1
	}
	return i
}

// Dangling returns prerequisite edges that point at unknown atoms.
func (g *Graph) Dangling() []Edge {
	return slices.Clone(g.dangling)
}
