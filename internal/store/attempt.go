package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mst"
)

var (
	// ErrAttemptNotFound is returned for an unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptClosed is returned when writing to a completed attempt.
	ErrAttemptClosed = errors.New("attempt already completed")
)

// AttemptInProgress is the status of an attempt that accepts responses.
// Completed attempts carry a diagnostic.CompletionStatus.
const AttemptInProgress = "in_progress"

// Attempt is one diagnostic sitting.
type Attempt struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"userId"`
	Status      string                 `json:"status"`
	Route       mst.Route              `json:"route,omitempty"`
	PaesScore   *int                   `json:"paesScore,omitempty"`
	Completion  *diagnostic.Completion `json:"completion,omitempty"`
	StartedAt   time.Time              `json:"startedAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
	Responses   []ResponseRecord       `json:"responses"`
}

// ResponseRecord is a stored answer to one MST question.
type ResponseRecord struct {
	QuestionID     string        `json:"questionId" validate:"required"`
	Stage          int           `json:"stage" validate:"oneof=1 2"`
	SelectedAnswer *string       `json:"selectedAnswer"`
	IsCorrect      bool          `json:"isCorrect"`
	ResponseTime   time.Duration `json:"responseTime"`
	AnsweredAt     time.Time     `json:"answeredAt"`
}

// MSTResponses resolves the stored responses against the MST pools.
// Responses to questions outside the pools are an error.
func (a *Attempt) MSTResponses() ([]mst.Response, error) {
	out := make([]mst.Response, 0, len(a.Responses))
	for _, r := range a.Responses {
		q, ok := mst.Lookup(r.QuestionID)
		if !ok {
			return nil, fmt.Errorf("response to unknown question %q", r.QuestionID)
		}
		out = append(out, mst.Response{
			Question:       q,
			SelectedAnswer: r.SelectedAnswer,
			IsCorrect:      r.IsCorrect,
			ResponseTime:   r.ResponseTime,
		})
	}
	return out, nil
}

// CreateAttempt starts a new attempt for userID.
func (s *Store) CreateAttempt(ctx context.Context, userID string) (*Attempt, error) {
	a := &Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    AttemptInProgress,
		StartedAt: time.Now().UTC(),
		Responses: []ResponseRecord{},
	}
	q, args := s.builder().Insert(tableAttempts).
		Columns("id", "user_id", "status", "started_at").
		Values(a.ID, a.UserID, a.Status, a.StartedAt).
		Query()
	if _, err := exec(ctx, s.drv, q, args); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	s.logger.Debug("attempt created", "attempt", a.ID, "user", userID)
	return a, nil
}

// SaveResponse records r for attemptID. Answering the same question again
// replaces the earlier response.
func (s *Store) SaveResponse(ctx context.Context, attemptID string, r ResponseRecord) error {
	status, err := s.attemptStatus(ctx, attemptID)
	if err != nil {
		return err
	}
	if status != AttemptInProgress {
		return ErrAttemptClosed
	}
	if r.AnsweredAt.IsZero() {
		r.AnsweredAt = time.Now().UTC()
	}

	var selected sql.NullString
	if r.SelectedAnswer != nil {
		selected = sql.NullString{String: *r.SelectedAnswer, Valid: true}
	}
	q, args := s.builder().Insert(tableResponses).
		Columns("id", "attempt_id", "question_id", "stage", "selected_answer", "is_correct", "response_time_ms", "answered_at").
		Values(uuid.NewString(), attemptID, r.QuestionID, r.Stage, selected, r.IsCorrect, r.ResponseTime.Milliseconds(), r.AnsweredAt).
		OnConflict(
			entsql.ConflictColumns("attempt_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("stage")
				u.SetExcluded("selected_answer")
				u.SetExcluded("is_correct")
				u.SetExcluded("response_time_ms")
				u.SetExcluded("answered_at")
			}),
		).
		Query()
	if _, err := exec(ctx, s.drv, q, args); err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

// CompleteAttempt stores the outcome of finishing attemptID.
func (s *Store) CompleteAttempt(ctx context.Context, attemptID string, route mst.Route, c diagnostic.Completion) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode completion: %w", err)
	}

	upd := s.builder().Update(tableAttempts).
		Set("status", string(c.Status)).
		Set("results", string(payload)).
		Set("completed_at", time.Now().UTC())
	if route != "" {
		upd.Set("route", string(route))
	}
	if c.Results != nil {
		upd.Set("paes_score", c.Results.PaesScore)
	}
	q, args := upd.Where(entsql.And(
		entsql.EQ("id", attemptID),
		entsql.EQ("status", AttemptInProgress),
	)).Query()

	res, err := exec(ctx, s.drv, q, args)
	if err != nil {
		return fmt.Errorf("complete attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := s.attemptStatus(ctx, attemptID); err != nil {
			return err
		}
		return ErrAttemptClosed
	}
	s.metrics.Completion(string(c.Status), string(route))
	return nil
}

// Attempt loads attemptID with its responses ordered by stage and time.
func (s *Store) Attempt(ctx context.Context, attemptID string) (*Attempt, error) {
	b := s.builder()

	var (
		a     *Attempt
		route sql.NullString
		score sql.NullInt64
		res   sql.NullString
		done  sql.NullTime
	)
	q, args := b.Select("id", "user_id", "status", "route", "paes_score", "results", "started_at", "completed_at").
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("id", attemptID)).
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		a = &Attempt{}
		return rows.Scan(&a.ID, &a.UserID, &a.Status, &route, &score, &res, &a.StartedAt, &done)
	})
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	if a == nil {
		return nil, ErrAttemptNotFound
	}
	a.Route = mst.Route(route.String)
	if score.Valid {
		v := int(score.Int64)
		a.PaesScore = &v
	}
	if res.Valid {
		a.Completion = &diagnostic.Completion{}
		if err := json.Unmarshal([]byte(res.String), a.Completion); err != nil {
			return nil, fmt.Errorf("decode completion: %w", err)
		}
	}
	if done.Valid {
		t := done.Time
		a.CompletedAt = &t
	}

	a.Responses = []ResponseRecord{}
	q, args = b.Select("question_id", "stage", "selected_answer", "is_correct", "response_time_ms", "answered_at").
		From(entsql.Table(tableResponses)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("stage", "answered_at", "question_id").
		Query()
	err = query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var (
			r        ResponseRecord
			selected sql.NullString
			ms       int64
		)
		if err := rows.Scan(&r.QuestionID, &r.Stage, &selected, &r.IsCorrect, &ms, &r.AnsweredAt); err != nil {
			return err
		}
		if selected.Valid {
			v := selected.String
			r.SelectedAnswer = &v
		}
		r.ResponseTime = time.Duration(ms) * time.Millisecond
		a.Responses = append(a.Responses, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	return a, nil
}

func (s *Store) attemptStatus(ctx context.Context, attemptID string) (string, error) {
	var status string
	found := false
	q, args := s.builder().Select("status").
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("id", attemptID)).
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&status)
	})
	if err != nil {
		return "", fmt.Errorf("query attempt status: %w", err)
	}
	if !found {
		return "", ErrAttemptNotFound
	}
	return status, nil
}
