package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/arbor/paesdiag/internal/store"
)

// parseRoute treats an unknown route like an unset one so scoring reports
// needs_support instead of failing the request.
func parseRoute(s string) mst.Route {
	r, err := mst.ParseRoute(s)
	if err != nil {
		return ""
	}
	return r
}

type resultsRequest struct {
	Route     string              `json:"route"`
	Responses []mst.ResponseInput `json:"responses" validate:"dive"`
}

// POST /api/diagnostic/results
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	responses, err := mst.ResolveResponses(req.Responses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route := parseRoute(req.Route)
	c := diagnostic.Complete(route, responses)
	s.deps.Metrics.Completion(string(c.Status), string(route))
	writeJSON(w, http.StatusOK, c)
}

type createAttemptRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// POST /api/diagnostic/attempts
func (s *Server) handleCreateAttempt(w http.ResponseWriter, r *http.Request) {
	var req createAttemptRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.deps.Attempts.CreateAttempt(r.Context(), req.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"attemptId": a.ID})
}

// GET /api/diagnostic/attempts/{id}
func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Attempts.Attempt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type saveResponseRequest struct {
	QuestionID     string  `json:"questionId" validate:"required"`
	Stage          int     `json:"stage" validate:"oneof=1 2"`
	SelectedAnswer *string `json:"selectedAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
	ResponseTimeMs int64   `json:"responseTimeMs" validate:"gte=0"`
}

// POST /api/diagnostic/attempts/{id}/responses
func (s *Server) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	var req saveResponseRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := mst.Lookup(req.QuestionID); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown question %q", req.QuestionID))
		return
	}
	err := s.deps.Attempts.SaveResponse(r.Context(), chi.URLParam(r, "id"), store.ResponseRecord{
		QuestionID:     req.QuestionID,
		Stage:          req.Stage,
		SelectedAnswer: req.SelectedAnswer,
		IsCorrect:      req.IsCorrect,
		ResponseTime:   time.Duration(req.ResponseTimeMs) * time.Millisecond,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/diagnostic/attempts/{id}/complete
//
// Responses in the body take precedence over the ones recorded on the
// attempt.
func (s *Server) handleCompleteAttempt(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	var responses []mst.Response
	if len(req.Responses) > 0 {
		var err error
		if responses, err = mst.ResolveResponses(req.Responses); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		a, err := s.deps.Attempts.Attempt(r.Context(), id)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		if responses, err = a.MSTResponses(); err != nil {
			s.internalError(w, r, err)
			return
		}
	}

	route := parseRoute(req.Route)
	c := diagnostic.Complete(route, responses)
	if err := s.deps.Attempts.CompleteAttempt(r.Context(), id, route, c); err != nil {
		s.storeError(w, r, err)
		return
	}
	if c.Status == diagnostic.StatusNeedsSupport {
		s.logger.Warn("attempt needs support", "attempt", id, "reason", c.Reason)
	}
	writeJSON(w, http.StatusOK, c)
}

type masteryRequest struct {
	UserID      string                `json:"userId"`
	AtomResults []mastery.Observation `json:"atomResults" validate:"dive"`
	Responses   []mst.ResponseInput   `json:"responses" validate:"dive"`
}

type masteryResponse struct {
	Results []mastery.Result `json:"results"`
	Summary mastery.Summary  `json:"summary"`
	Saved   int              `json:"saved"`
}

// POST /api/diagnostic/mastery
//
// Direct evidence comes from atomResults, or from the atom tags of
// responses when atomResults is empty. Results are persisted when userId
// is set.
func (s *Server) handleMastery(w http.ResponseWriter, r *http.Request) {
	var req masteryRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	obs := req.AtomResults
	if len(obs) == 0 && len(req.Responses) > 0 {
		responses, err := mst.ResolveResponses(req.Responses)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		obs = diagnostic.ComputeAtomMastery(responses, s.deps.EvidencePolicy)
	}

	results, err := s.deps.Mastery.ComputeFullMasteryWithTransitivity(r.Context(), obs)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := masteryResponse{Results: results, Summary: mastery.Summarize(results)}
	if req.UserID != "" {
		n, err := s.deps.Records.SaveMastery(r.Context(), mastery.Records(req.UserID, results, time.Now().UTC()))
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		resp.Saved = n
	}
	writeJSON(w, http.StatusOK, resp)
}

type learningRoutesRequest struct {
	AtomResults      []mastery.Observation `json:"atomResults" validate:"dive"`
	CurrentPaesScore int                   `json:"currentPaesScore" validate:"omitempty,min=100,max=1000"`
}

// POST /api/diagnostic/learning-routes
func (s *Server) handleLearningRoutes(w http.ResponseWriter, r *http.Request) {
	var req learningRoutesRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeReport(w, r, req.AtomResults, req.CurrentPaesScore)
}

// GET /api/diagnostic/learning-routes
func (s *Server) handleFreshRoutes(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, nil, 0)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, obs []mastery.Observation, currentScore int) {
	analysis, err := s.deps.Analyzer.AnalyzeLearningPotential(r.Context(), obs, diagnostic.AnalyzeOptions{
		CurrentPaesScore: currentScore,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagnostic.BuildReport(analysis, currentScore, s.deps.NumTests))
}
