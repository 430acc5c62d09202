package diagnostic

import (
	"errors"
	"testing"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerAll(qs []mst.Question, correct bool) []mst.Response {
	out := make([]mst.Response, len(qs))
	for i, q := range qs {
		out[i] = mst.Response{Question: q, IsCorrect: correct}
	}
	return out
}

func TestCalculateDiagnosticResults_AllCorrect(t *testing.T) {
	stage1 := answerAll(mst.Stage1Questions(), true)
	correct := 0
	for _, r := range stage1 {
		if r.IsCorrect {
			correct++
		}
	}
	route := mst.GetRoute(correct)
	require.Equal(t, mst.RouteC, route)

	responses := append(stage1, answerAll(mst.Stage2Questions(route), true)...)
	res, err := CalculateDiagnosticResults(responses, route)
	require.NoError(t, err)

	assert.Equal(t, 910, res.PaesScore)
	assert.Equal(t, 860, res.PaesMin)
	assert.Equal(t, 960, res.PaesMax)
	assert.Equal(t, "Muy Alto", res.Level)
	assert.Equal(t, 16, res.CorrectAnswers)
	assert.Equal(t, 16, res.TotalQuestions)
	assert.Equal(t, 100, res.AxisPerformance[curriculum.AxisAlgebra].Percentage)
	assert.Equal(t, 5, res.AxisPerformance[curriculum.AxisAlgebra].Total)
	assert.Len(t, res.SkillPerformance, 4)
}

func TestCalculateDiagnosticResults_RouteUnset(t *testing.T) {
	_, err := CalculateDiagnosticResults(nil, "")
	assert.True(t, errors.Is(err, ErrRouteUnset))
}

func TestComplete(t *testing.T) {
	c := Complete("", answerAll(mst.Stage1Questions(), true))
	assert.Equal(t, StatusNeedsSupport, c.Status)
	assert.Nil(t, c.Results)
	assert.NotEmpty(t, c.Reason)

	responses := append(answerAll(mst.Stage1Questions(), false), answerAll(mst.Stage2Questions(mst.RouteA), false)...)
	c = Complete(mst.RouteA, responses)
	require.Equal(t, StatusCompleted, c.Status)
	require.NotNil(t, c.Results)
	assert.Equal(t, 100, c.Results.PaesScore)
	assert.Equal(t, "Muy Inicial", c.Results.Level)
}
