package mastery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	atoms []curriculum.Atom
	err   error
}

func (f fakeLoader) Atoms(context.Context) ([]curriculum.Atom, error) {
	return f.atoms, f.err
}

func TestService_ComputeFullMasteryWithTransitivity(t *testing.T) {
	svc := NewService(fakeLoader{atoms: []curriculum.Atom{atom("a"), atom("b", "a")}}, nil)

	rs, err := svc.ComputeFullMasteryWithTransitivity(context.Background(), []Observation{{AtomID: "b", Mastered: true}})
	require.NoError(t, err)
	assert.Equal(t, []Result{
		{AtomID: "a", Mastered: true, Source: SourceInferred},
		{AtomID: "b", Mastered: true, Source: SourceDirect},
	}, rs)
}

func TestService_LoaderError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(fakeLoader{err: boom}, nil)

	_, err := svc.ComputeFullMasteryWithTransitivity(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		{AtomID: "a", Mastered: true, Source: SourceDirect},
		{AtomID: "b", Mastered: true, Source: SourceInferred},
		{AtomID: "c", Mastered: false, Source: SourceDirect},
		{AtomID: "d", Mastered: false, Source: SourceNotTested},
	})
	assert.Equal(t, Summary{
		TotalAtoms:        4,
		MasteredCount:     2,
		DirectlyMastered:  1,
		InferredMastered:  1,
		NotMasteredCount:  1,
		NotTestedCount:    1,
		MasteryPercentage: 50,
	}, s)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestByAxis(t *testing.T) {
	g := atomgraph.New([]curriculum.Atom{
		{ID: "a1", Axis: curriculum.AxisAlgebra},
		{ID: "a2", Axis: curriculum.AxisAlgebra},
		{ID: "g1", Axis: curriculum.AxisGeometry},
	})
	got := ByAxis(g, []Result{{AtomID: "a1", Mastered: true}})

	require.Len(t, got, 2)
	assert.Equal(t, AxisMastery{Axis: curriculum.AxisAlgebra, TotalAtoms: 2, MasteredAtoms: 1, MasteryPercentage: 50}, got[0])
	assert.Equal(t, AxisMastery{Axis: curriculum.AxisGeometry, TotalAtoms: 1}, got[1])
}

func TestRecords(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := Records("u1", []Result{
		{AtomID: "a", Mastered: true, Source: SourceInferred},
		{AtomID: "b", Mastered: false, Source: SourceDirect},
		{AtomID: "c", Mastered: false, Source: SourceNotTested},
	}, at)

	require.Len(t, recs, 3)
	assert.Equal(t, StatusMastered, recs[0].Status)
	assert.Equal(t, DiagnosticOrigin, recs[0].Origin)
	require.NotNil(t, recs[0].MasteredAt)
	assert.Equal(t, at, *recs[0].MasteredAt)

	assert.Equal(t, StatusNotMastered, recs[1].Status)
	assert.Empty(t, recs[1].Origin)
	assert.Nil(t, recs[1].MasteredAt)

	assert.Equal(t, StatusNotStarted, recs[2].Status)
	assert.Equal(t, "u1", recs[2].UserID)
}
