package atomgraph

import (
	"strings"
	"testing"

	"github.com/arbor/paesdiag/internal/curriculum"
)

func atom(id string, axis curriculum.Axis, prereqs ...string) curriculum.Atom {
	return curriculum.Atom{ID: id, Axis: axis, Title: id, PrerequisiteIDs: prereqs}
}

// a1 <- a2 <- a3, a1 <- n2, n1 standalone.
func sampleAtoms() []curriculum.Atom {
	return []curriculum.Atom{
		atom("a3", curriculum.AxisAlgebra, "a2"),
		atom("a2", curriculum.AxisAlgebra, "a1"),
		atom("a1", curriculum.AxisAlgebra),
		atom("n2", curriculum.AxisNumbers, "a1", "n1"),
		atom("n1", curriculum.AxisNumbers),
	}
}

func TestNew_Indices(t *testing.T) {
	g := New(sampleAtoms())

	if g.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", g.Len())
	}
	if a, ok := g.Atom("a2"); !ok || a.Axis != curriculum.AxisAlgebra {
		t.Errorf("Atom(a2) = %+v, %v", a, ok)
	}
	if g.Has("zz") {
		t.Error("Has(zz) = true")
	}
	if got := g.Dependents("a1"); strings.Join(got, ",") != "a2,n2" {
		t.Errorf("Dependents(a1) = %v, want [a2 n2]", got)
	}
	if got := g.Prerequisites("n2"); strings.Join(got, ",") != "a1,n1" {
		t.Errorf("Prerequisites(n2) = %v", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTopologicalOrder_PrereqsFirst(t *testing.T) {
	g := New(sampleAtoms())
	order := g.TopologicalOrder()
	if len(order) != 5 {
		t.Fatalf("got %d atoms in order, want 5", len(order))
	}
	for _, a := range order {
		for _, p := range g.Prerequisites(a.ID) {
			if g.TopoIndex(p) >= g.TopoIndex(a.ID) {
				t.Errorf("prerequisite %q (index %d) not before %q (index %d)",
					p, g.TopoIndex(p), a.ID, g.TopoIndex(a.ID))
			}
		}
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	want := New(sampleAtoms()).TopologicalOrder()
	for i := 0; i < 20; i++ {
		got := New(sampleAtoms()).TopologicalOrder()
		for j := range want {
			if got[j].ID != want[j].ID {
				t.Fatalf("run %d: position %d = %q, want %q", i, j, got[j].ID, want[j].ID)
			}
		}
	}
}

func TestAncestors(t *testing.T) {
	g := New(sampleAtoms())
	if got := g.Ancestors("a3"); strings.Join(got, ",") != "a1,a2" {
		t.Errorf("Ancestors(a3) = %v", got)
	}
	if got := g.Ancestors("n2"); strings.Join(got, ",") != "a1,n1" {
		t.Errorf("Ancestors(n2) = %v", got)
	}
	if got := g.Ancestors("a1"); len(got) != 0 {
		t.Errorf("Ancestors(a1) = %v, want empty", got)
	}
	if got := g.Ancestors("missing"); len(got) != 0 {
		t.Errorf("Ancestors(missing) = %v, want empty", got)
	}
}

func TestByAxisAndAxes(t *testing.T) {
	g := New(append(sampleAtoms(), atom("x1", "CALC")))
	alg := g.ByAxis(curriculum.AxisAlgebra)
	if len(alg) != 3 || alg[0].ID != "a1" || alg[2].ID != "a3" {
		t.Errorf("ByAxis(ALG) = %v", alg)
	}

	axes := g.Axes()
	want := []curriculum.Axis{curriculum.AxisAlgebra, curriculum.AxisNumbers, "CALC"}
	if len(axes) != len(want) {
		t.Fatalf("Axes() = %v, want %v", axes, want)
	}
	for i := range want {
		if axes[i] != want[i] {
			t.Errorf("Axes()[%d] = %q, want %q", i, axes[i], want[i])
		}
	}
}

func TestNew_DanglingPrerequisite(t *testing.T) {
	g := New([]curriculum.Atom{
		atom("a1", curriculum.AxisAlgebra, "ghost"),
		atom("a2", curriculum.AxisAlgebra, "a1"),
	})

	if got := g.Prerequisites("a1"); len(got) != 0 {
		t.Errorf("dangling edge kept: %v", got)
	}
	if d := g.Dangling(); len(d) != 1 || d[0].Prerequisite != "ghost" {
		t.Errorf("Dangling() = %v", d)
	}
	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "nonexistent prerequisite \"ghost\"") {
		t.Errorf("Validate() = %v", err)
	}
	if len(g.TopologicalOrder()) != 2 {
		t.Error("dangling reference should not drop atoms from the order")
	}
}

func TestNew_CycleTerminates(t *testing.T) {
	g := New([]curriculum.Atom{
		atom("c1", curriculum.AxisGeometry, "c2"),
		atom("c2", curriculum.AxisGeometry, "c1"),
		atom("r", curriculum.AxisGeometry),
		atom("s", curriculum.AxisGeometry, "s"),
	})

	order := g.TopologicalOrder()
	if len(order) != 4 {
		t.Fatalf("got %d atoms, want 4", len(order))
	}
	if order[0].ID != "r" {
		t.Errorf("acyclic atom should come first, got %q", order[0].ID)
	}
	if got := g.Ancestors("c1"); strings.Join(got, ",") != "c2" {
		t.Errorf("Ancestors(c1) = %v, want [c2]", got)
	}

	err := g.Validate()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	for _, id := range []string{"c1", "c2", "s"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not mention %q", err, id)
		}
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	g := New([]curriculum.Atom{
		{ID: "a", Axis: curriculum.AxisAlgebra, Title: "first"},
		{ID: "a", Axis: curriculum.AxisNumbers, Title: "second"},
	})
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	if a, _ := g.Atom("a"); a.Title != "first" {
		t.Errorf("duplicate should keep first, got %q", a.Title)
	}
	if err := g.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate atom ID") {
		t.Errorf("Validate() = %v", err)
	}
}
