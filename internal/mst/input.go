package mst

import (
	"fmt"
	"time"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// ResponseInput is an answered question as submitted by a client, keyed by
// corpus question id.
type ResponseInput struct {
	QuestionID     string               `json:"questionId" validate:"required"`
	SelectedAnswer *string              `json:"selectedAnswer"`
	IsCorrect      bool                 `json:"isCorrect"`
	ResponseTimeMs int64                `json:"responseTimeMs" validate:"gte=0"`
	Atoms          []curriculum.AtomRef `json:"atoms" validate:"dive"`
}

// ResolveResponses looks every input up in the pools. An id outside the
// pools is an error.
func ResolveResponses(in []ResponseInput) ([]Response, error) {
	out := make([]Response, len(in))
	for i, r := range in {
		q, ok := Lookup(r.QuestionID)
		if !ok {
			return nil, fmt.Errorf("unknown question %q", r.QuestionID)
		}
		out[i] = Response{
			Question:       q,
			SelectedAnswer: r.SelectedAnswer,
			IsCorrect:      r.IsCorrect,
			ResponseTime:   time.Duration(r.ResponseTimeMs) * time.Millisecond,
			Atoms:          r.Atoms,
		}
	}
	return out, nil
}
