// Package mastery computes full per-atom mastery from direct diagnostic
// evidence, propagating mastery backward along prerequisite edges.
package mastery

import (
	"slices"
	"strings"

	"github.com/arbor/paesdiag/internal/atomgraph"
)

// ComputeFull returns a Result for every atom in g, sorted by atom id.
//
// Direct observations are authoritative. Mastering an atom implies mastery
// of all its transitive prerequisites, which are marked inferred unless
// they carry their own observation. A not-mastered observation implies
// nothing about other atoms. Observations for atoms outside g are ignored;
// repeated observations of the same atom count as mastered if any says so.
func ComputeFull(g *atomgraph.Graph, direct []Observation) []Result {
	state := make(map[string]Result, g.Len())

	for _, o := range direct {
		if !g.Has(o.AtomID) {
			continue
		}
		prev, seen := state[o.AtomID]
		state[o.AtomID] = Result{
			AtomID:   o.AtomID,
			Mastered: o.Mastered || (seen && prev.Mastered),
			Source:   SourceDirect,
		}
	}

	// Walk prerequisites from every directly mastered atom. The walk passes
	// through directly observed atoms without rewriting them so that their
	// own prerequisites are still reached.
	visited := make(map[string]bool)
	var propagate func(id string)
	propagate = func(id string) {
		for _, p := range g.Prerequisites(id) {
			if visited[p] {
				continue
			}
			visited[p] = true
			if r, ok := state[p]; !ok || r.Source != SourceDirect {
				state[p] = Result{AtomID: p, Mastered: true, Source: SourceInferred}
			}
			propagate(p)
		}
	}
	for _, id := range sortedKeys(state) {
		if r := state[id]; r.Source == SourceDirect && r.Mastered {
			propagate(id)
		}
	}

	out := make([]Result, 0, g.Len())
	for _, a := range g.Atoms() {
		r, ok := state[a.ID]
		if !ok {
			r = Result{AtomID: a.ID, Mastered: false, Source: SourceNotTested}
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Result) int {
		return strings.Compare(a.AtomID, b.AtomID)
	})
	return out
}

func sortedKeys(m map[string]Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
