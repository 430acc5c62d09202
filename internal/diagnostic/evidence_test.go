package diagnostic

import (
	"testing"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/arbor/paesdiag/internal/unlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(primary []string, secondary ...string) []curriculum.AtomRef {
	var out []curriculum.AtomRef
	for _, id := range primary {
		out = append(out, curriculum.AtomRef{AtomID: id, Relevance: curriculum.RelevancePrimary})
	}
	for _, id := range secondary {
		out = append(out, curriculum.AtomRef{AtomID: id, Relevance: curriculum.RelevanceSecondary})
	}
	return out
}

func TestComputeAtomMastery_PrimaryPolicy(t *testing.T) {
	responses := []mst.Response{
		{IsCorrect: false, Atoms: refs([]string{"a", "b"}, "s")},
		{IsCorrect: true, Atoms: refs([]string{"b", "c"})},
		{IsCorrect: false, Atoms: refs([]string{"c"})},
	}

	got := ComputeAtomMastery(responses, EvidencePrimary)
	assert.Equal(t, []mastery.Observation{
		{AtomID: "a", Mastered: false},
		{AtomID: "b", Mastered: true},
		{AtomID: "c", Mastered: true},
	}, got)
}

func TestComputeAtomMastery_WithSecondary(t *testing.T) {
	responses := []mst.Response{
		{IsCorrect: true, Atoms: refs([]string{"a"}, "s")},
	}
	got := ComputeAtomMastery(responses, EvidencePrimaryAndSecondary)
	assert.Equal(t, []mastery.Observation{
		{AtomID: "a", Mastered: true},
		{AtomID: "s", Mastered: true},
	}, got)
}

func TestComputeAtomMastery_Empty(t *testing.T) {
	assert.Empty(t, ComputeAtomMastery(nil, EvidencePrimary))
}

func TestParseEvidencePolicy(t *testing.T) {
	p, err := ParseEvidencePolicy("")
	require.NoError(t, err)
	assert.Equal(t, EvidencePrimary, p)

	p, err = ParseEvidencePolicy("primary_and_secondary")
	require.NoError(t, err)
	assert.Equal(t, EvidencePrimaryAndSecondary, p)

	_, err = ParseEvidencePolicy("all")
	assert.Error(t, err)
}

// A correctly answered question is evidence for exactly the atoms that
// gate it, so after mastery inference it must count as unlocked.
func TestEvidenceAndUnlockAgree(t *testing.T) {
	g := atomgraph.New([]curriculum.Atom{
		{ID: "a"},
		{ID: "b", PrerequisiteIDs: []string{"a"}},
		{ID: "c", PrerequisiteIDs: []string{"b"}},
		{ID: "d"},
	})
	questions := []curriculum.Question{
		{QuestionMeta: curriculum.QuestionMeta{ID: "q1"}, PrimaryAtomIDs: []string{"a", "c"}, SecondaryAtomIDs: []string{"d"}},
		{QuestionMeta: curriculum.QuestionMeta{ID: "q2"}, PrimaryAtomIDs: []string{"b"}},
		{QuestionMeta: curriculum.QuestionMeta{ID: "q3"}, PrimaryAtomIDs: []string{"d"}, SecondaryAtomIDs: []string{"a"}},
	}

	// Every subset of questions answered correctly, the rest incorrectly.
	for mask := 0; mask < 1<<len(questions); mask++ {
		var responses []mst.Response
		for i, q := range questions {
			responses = append(responses, mst.Response{
				IsCorrect: mask&(1<<i) != 0,
				Atoms:     refs(q.PrimaryAtomIDs, q.SecondaryAtomIDs...),
			})
		}
		full := mastery.ComputeFull(g, ComputeAtomMastery(responses, EvidencePrimary))
		mastered := mastery.MasteredSet(full)

		for i, q := range questions {
			if mask&(1<<i) == 0 {
				continue
			}
			st := unlock.AnalyzeQuestion(q, mastered)
			assert.True(t, st.IsUnlocked, "mask %b: correctly answered %s is locked (missing %v)", mask, q.ID, st.MissingPrimaryAtoms)
		}
	}
}
