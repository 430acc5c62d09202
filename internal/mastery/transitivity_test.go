package mastery

import (
	"math/rand"
	"testing"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
)

func atom(id string, prereqs ...string) curriculum.Atom {
	return curriculum.Atom{ID: id, Axis: curriculum.AxisAlgebra, PrerequisiteIDs: prereqs}
}

// chain: a <- b <- c <- d, plus e independent.
func chainGraph() *atomgraph.Graph {
	return atomgraph.New([]curriculum.Atom{
		atom("a"),
		atom("b", "a"),
		atom("c", "b"),
		atom("d", "c"),
		atom("e"),
	})
}

func resultMap(rs []Result) map[string]Result {
	m := make(map[string]Result, len(rs))
	for _, r := range rs {
		m[r.AtomID] = r
	}
	return m
}

func TestComputeFull_ColdStart(t *testing.T) {
	rs := ComputeFull(chainGraph(), nil)
	if len(rs) != 5 {
		t.Fatalf("got %d results, want 5", len(rs))
	}
	for _, r := range rs {
		if r.Mastered || r.Source != SourceNotTested || r.Status() != StatusNotStarted {
			t.Errorf("%s: got %+v, want not_tested", r.AtomID, r)
		}
	}
}

func TestComputeFull_PropagatesToPrerequisites(t *testing.T) {
	rs := resultMap(ComputeFull(chainGraph(), []Observation{{AtomID: "c", Mastered: true}}))

	want := map[string]Result{
		"a": {AtomID: "a", Mastered: true, Source: SourceInferred},
		"b": {AtomID: "b", Mastered: true, Source: SourceInferred},
		"c": {AtomID: "c", Mastered: true, Source: SourceDirect},
		"d": {AtomID: "d", Mastered: false, Source: SourceNotTested},
		"e": {AtomID: "e", Mastered: false, Source: SourceNotTested},
	}
	for id, w := range want {
		if rs[id] != w {
			t.Errorf("%s: got %+v, want %+v", id, rs[id], w)
		}
	}
}

func TestComputeFull_NoDownwardCascade(t *testing.T) {
	rs := resultMap(ComputeFull(chainGraph(), []Observation{{AtomID: "b", Mastered: false}}))
	if rs["a"].Source != SourceNotTested || rs["c"].Source != SourceNotTested {
		t.Errorf("not-mastered observation leaked: a=%+v c=%+v", rs["a"], rs["c"])
	}
	if rs["b"].Status() != StatusNotMastered {
		t.Errorf("b status = %q, want not_mastered", rs["b"].Status())
	}
}

func TestComputeFull_DirectWinsOverInference(t *testing.T) {
	rs := resultMap(ComputeFull(chainGraph(), []Observation{
		{AtomID: "d", Mastered: true},
		{AtomID: "b", Mastered: false},
	}))

	if rs["b"].Mastered || rs["b"].Source != SourceDirect {
		t.Errorf("b: got %+v, want direct not mastered", rs["b"])
	}
	// a is still a transitive prerequisite of the mastered d.
	if !rs["a"].Mastered || rs["a"].Source != SourceInferred {
		t.Errorf("a: got %+v, want inferred mastered", rs["a"])
	}
	if !rs["c"].Mastered || rs["c"].Source != SourceInferred {
		t.Errorf("c: got %+v, want inferred mastered", rs["c"])
	}
}

func TestComputeFull_RepeatedObservations(t *testing.T) {
	rs := resultMap(ComputeFull(chainGraph(), []Observation{
		{AtomID: "e", Mastered: true},
		{AtomID: "e", Mastered: false},
	}))
	if !rs["e"].Mastered {
		t.Errorf("e: got %+v, want mastered", rs["e"])
	}
}

func TestComputeFull_UnknownAndDangling(t *testing.T) {
	g := atomgraph.New([]curriculum.Atom{
		atom("a"),
		atom("b", "a", "ghost"),
	})
	rs := ComputeFull(g, []Observation{
		{AtomID: "b", Mastered: true},
		{AtomID: "nope", Mastered: true},
	})
	if len(rs) != 2 {
		t.Fatalf("got %d results, want 2", len(rs))
	}
	m := resultMap(rs)
	if !m["a"].Mastered {
		t.Errorf("a: got %+v", m["a"])
	}
	if _, ok := m["nope"]; ok {
		t.Error("unknown atom should not appear in results")
	}
}

func TestComputeFull_CycleTerminates(t *testing.T) {
	g := atomgraph.New([]curriculum.Atom{
		atom("x", "y"),
		atom("y", "x"),
	})
	m := resultMap(ComputeFull(g, []Observation{{AtomID: "x", Mastered: true}}))
	if !m["y"].Mastered || m["y"].Source != SourceInferred {
		t.Errorf("y: got %+v", m["y"])
	}
	if m["x"].Source != SourceDirect {
		t.Errorf("x: got %+v", m["x"])
	}
}

// randomDAG builds n atoms where each atom may depend on lower-numbered ones.
func randomDAG(r *rand.Rand, n int) *atomgraph.Graph {
	atoms := make([]curriculum.Atom, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		var prereqs []string
		for j := 0; j < i; j++ {
			if r.Intn(3) == 0 {
				prereqs = append(prereqs, string(rune('a'+j)))
			}
		}
		atoms[i] = atom(id, prereqs...)
	}
	return atomgraph.New(atoms)
}

func TestComputeFull_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		g := randomDAG(r, 8)
		var obs []Observation
		direct := make(map[string]bool)
		for _, a := range g.Atoms() {
			if r.Intn(3) == 0 {
				m := r.Intn(2) == 0
				obs = append(obs, Observation{AtomID: a.ID, Mastered: m})
				direct[a.ID] = m
			}
		}
		m := resultMap(ComputeFull(g, obs))

		// Precedence.
		for id, want := range direct {
			if m[id].Mastered != want || m[id].Source != SourceDirect {
				t.Fatalf("trial %d: direct %s=%v overridden: %+v", trial, id, want, m[id])
			}
		}
		// Closure.
		for _, a := range g.Atoms() {
			if !m[a.ID].Mastered {
				continue
			}
			for _, p := range g.Ancestors(a.ID) {
				if _, isDirect := direct[p]; isDirect {
					continue
				}
				if !m[p].Mastered || m[p].Source != SourceInferred {
					t.Fatalf("trial %d: %s mastered but ancestor %s is %+v", trial, a.ID, p, m[p])
				}
			}
		}
	}
}
