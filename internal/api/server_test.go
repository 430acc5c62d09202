package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/metrics"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/arbor/paesdiag/internal/store"
)

func testBundle() *curriculum.Bundle {
	prim := func(ids ...string) []curriculum.AtomRef {
		out := make([]curriculum.AtomRef, len(ids))
		for i, id := range ids {
			out[i] = curriculum.AtomRef{AtomID: id, Relevance: curriculum.RelevancePrimary}
		}
		return out
	}
	return &curriculum.Bundle{
		Atoms: []curriculum.Atom{
			{ID: "a1", Axis: curriculum.AxisAlgebra, Title: "Expresiones", PrerequisiteIDs: []string{}},
			{ID: "a2", Axis: curriculum.AxisAlgebra, Title: "Ecuaciones", PrerequisiteIDs: []string{"a1"}},
			{ID: "n1", Axis: curriculum.AxisNumbers, Title: "Enteros", PrerequisiteIDs: []string{}},
		},
		Questions: []curriculum.BundleQuestion{
			{ID: "q1", Source: curriculum.SourceOfficial, Atoms: prim("a1")},
			{ID: "q2", Source: curriculum.SourceOfficial, Atoms: prim("a1", "a2")},
			{ID: "q3", Source: curriculum.SourceOfficial, Atoms: prim("n1")},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	ctx := context.Background()
	name := strings.NewReplacer("/", "_").Replace(t.Name())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	st, err := store.Open(ctx, store.DriverSQLite, "file:"+name+"?mode=memory&cache=shared", store.WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.ImportBundle(ctx, testBundle())
	require.NoError(t, err)

	srv := New(Deps{
		Analyzer:       diagnostic.NewAnalyzer(st, diagnostic.Options{}, nil, m),
		Mastery:        mastery.NewService(st, nil),
		Attempts:       st,
		Records:        st,
		EvidencePolicy: diagnostic.EvidencePrimary,
		CORSOrigins:    []string{"http://localhost:3000"},
		Metrics:        m,
		Gatherer:       reg,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, resp)["status"])
}

func TestResults_Stateless(t *testing.T) {
	ts, _ := newTestServer(t)

	var responses []map[string]any
	for _, q := range append(mst.Stage1Questions(), mst.Stage2Questions(mst.RouteC)...) {
		responses = append(responses, map[string]any{"questionId": q.ID(), "isCorrect": true})
	}

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/results", map[string]any{"route": "C", "responses": responses})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decodeBody[diagnostic.Completion](t, resp)
	assert.Equal(t, diagnostic.StatusCompleted, c.Status)
	require.NotNil(t, c.Results)
	assert.Equal(t, 910, c.Results.PaesScore)
	assert.Equal(t, 16, c.Results.CorrectAnswers)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/results", map[string]any{"route": "Z", "responses": responses})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeBody[diagnostic.Completion](t, resp)
	assert.Equal(t, diagnostic.StatusNeedsSupport, c.Status)
	assert.Nil(t, c.Results)
}

func TestResults_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/results", map[string]any{
		"route":     "A",
		"responses": []map[string]any{{"questionId": "nope-1"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/results", map[string]any{
		"responses": []map[string]any{{"questionId": ""}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAttemptFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/attempts", map[string]string{"userId": "u1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody[map[string]string](t, resp)["attemptId"]
	require.NotEmpty(t, id)

	for _, q := range mst.Stage1Questions() {
		resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
			"questionId": q.ID(), "stage": 1, "isCorrect": true, "responseTimeMs": 1500,
		})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
		"questionId": "nope-1", "stage": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
		"questionId": mst.Stage1Questions()[0].ID(), "stage": 3,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/diagnostic/attempts/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	a := decodeBody[store.Attempt](t, resp)
	assert.Len(t, a.Responses, mst.QuestionsPerStage)

	// Complete from the recorded responses.
	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/complete", map[string]string{"route": "C"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decodeBody[diagnostic.Completion](t, resp)
	assert.Equal(t, diagnostic.StatusCompleted, c.Status)
	require.NotNil(t, c.Results)
	assert.Equal(t, 8, c.Results.CorrectAnswers)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/complete", map[string]string{"route": "C"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
		"questionId": mst.Stage1Questions()[0].ID(), "stage": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSaveResponse_CorpusQuestionID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/attempts", map[string]string{"userId": "u1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody[map[string]string](t, resp)["attemptId"]

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
		"questionId": "prueba-invierno-2025-Q28", "stage": 1, "isCorrect": true,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/"+id+"/responses", map[string]any{
		"questionId": "prueba-invierno-2025-28", "stage": 1, "isCorrect": true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/diagnostic/attempts/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	a := decodeBody[store.Attempt](t, resp)
	require.Len(t, a.Responses, 1)
	assert.Equal(t, "prueba-invierno-2025-Q28", a.Responses[0].QuestionID)
}

func TestAttemptNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/diagnostic/attempts/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts/missing/complete", map[string]string{"route": "A"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, ts, http.MethodPost, "/api/diagnostic/attempts", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMastery_PersistsOnce(t *testing.T) {
	ts, st := newTestServer(t)
	body := map[string]any{
		"userId":      "u1",
		"atomResults": []mastery.Observation{{AtomID: "a2", Mastered: true}, {AtomID: "n1", Mastered: false}},
	}

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/mastery", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[masteryResponse](t, resp)
	assert.Equal(t, []mastery.Result{
		{AtomID: "a1", Mastered: true, Source: mastery.SourceInferred},
		{AtomID: "a2", Mastered: true, Source: mastery.SourceDirect},
		{AtomID: "n1", Mastered: false, Source: mastery.SourceDirect},
	}, got.Results)
	assert.Equal(t, 2, got.Summary.MasteredCount)
	assert.Equal(t, 3, got.Saved)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/mastery", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decodeBody[masteryResponse](t, resp).Saved)

	rows, err := st.MasteryFor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestMastery_FromResponses(t *testing.T) {
	ts, _ := newTestServer(t)
	q := mst.Stage1Questions()[0]

	resp := do(t, ts, http.MethodPost, "/api/diagnostic/mastery", map[string]any{
		"responses": []map[string]any{{
			"questionId": q.ID(),
			"isCorrect":  true,
			"atoms": []curriculum.AtomRef{
				{AtomID: "a2", Relevance: curriculum.RelevancePrimary},
				{AtomID: "n1", Relevance: curriculum.RelevanceSecondary},
			},
		}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[masteryResponse](t, resp)
	// Secondary tags are not evidence under the primary policy.
	assert.Equal(t, mastery.Summary{
		TotalAtoms:        3,
		MasteredCount:     2,
		DirectlyMastered:  1,
		InferredMastered:  1,
		NotTestedCount:    1,
		MasteryPercentage: 67,
	}, got.Summary)
	assert.Zero(t, got.Saved)
}

func TestLearningRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/diagnostic/learning-routes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fresh := decodeBody[diagnostic.LearningRoutesReport](t, resp)
	assert.Equal(t, 3, fresh.Summary.TotalAtoms)
	require.NotEmpty(t, fresh.Routes)
	assert.Equal(t, "Dominio Algebraico", fresh.Routes[0].Title)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/learning-routes", map[string]any{
		"atomResults":      []mastery.Observation{{AtomID: "a2", Mastered: true}},
		"currentPaesScore": 500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decodeBody[diagnostic.LearningRoutesReport](t, resp)
	assert.Equal(t, 2, rep.Summary.UnlockedQuestions)
	require.Len(t, rep.Routes, 1)
	assert.Equal(t, curriculum.AxisNumbers, rep.Routes[0].Axis)

	resp = do(t, ts, http.MethodPost, "/api/diagnostic/learning-routes", map[string]any{"currentPaesScore": 50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, http.MethodGet, "/api/diagnostic/learning-routes", nil)

	resp := do(t, ts, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "paesdiag_analysis_total")
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/diagnostic/results", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
