package store

import (
	"context"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/mst"
)

// CurriculumRepo reads and loads curriculum reference data.
type CurriculumRepo interface {
	curriculum.Source

	// ImportBundle upserts a curriculum bundle.
	ImportBundle(ctx context.Context, b *curriculum.Bundle) (ImportStats, error)
}

// MasteryRepo persists per-user atom mastery.
type MasteryRepo interface {
	// SaveMastery inserts records, skipping rows that already exist.
	SaveMastery(ctx context.Context, records []mastery.Record) (int, error)

	// MasteryFor returns the stored rows of a user.
	MasteryFor(ctx context.Context, userID string) ([]mastery.Record, error)
}

// AttemptRepo manages diagnostic attempts and their responses.
type AttemptRepo interface {
	CreateAttempt(ctx context.Context, userID string) (*Attempt, error)
	SaveResponse(ctx context.Context, attemptID string, r ResponseRecord) error
	CompleteAttempt(ctx context.Context, attemptID string, route mst.Route, c diagnostic.Completion) error

	// Attempt returns ErrAttemptNotFound for an unknown id.
	Attempt(ctx context.Context, attemptID string) (*Attempt, error)
}

var (
	_ CurriculumRepo = (*Store)(nil)
	_ MasteryRepo    = (*Store)(nil)
	_ AttemptRepo    = (*Store)(nil)
)
