package mastery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
)

// AtomLoader reads the full atom set with prerequisite edges.
type AtomLoader interface {
	Atoms(ctx context.Context) ([]curriculum.Atom, error)
}

// Service computes mastery against atoms loaded from a repository.
type Service struct {
	atoms  AtomLoader
	logger *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(atoms AtomLoader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{atoms: atoms, logger: logger}
}

// ComputeFullMasteryWithTransitivity loads the curriculum and returns the
// mastery of every atom given the direct observations.
func (s *Service) ComputeFullMasteryWithTransitivity(ctx context.Context, direct []Observation) ([]Result, error) {
	atoms, err := s.atoms.Atoms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load atoms: %w", err)
	}

	g := atomgraph.New(atoms)
	if err := g.Validate(); err != nil {
		s.logger.Warn("atom graph has integrity problems", "error", err)
	}
	for _, o := range direct {
		if !g.Has(o.AtomID) {
			s.logger.Warn("ignoring observation for unknown atom", "atom_id", o.AtomID)
		}
	}

	return ComputeFull(g, direct), nil
}
