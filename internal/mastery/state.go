package mastery

import "time"

// Source records how a mastery value was established.
type Source string

const (
	SourceDirect    Source = "direct"
	SourceInferred  Source = "inferred"
	SourceNotTested Source = "not_tested"
)

// Status is the persisted per-atom mastery status.
type Status string

const (
	StatusMastered    Status = "mastered"
	StatusNotMastered Status = "not_mastered"
	StatusNotStarted  Status = "not_started"
)

// DiagnosticOrigin is written as the mastery origin of rows produced by a
// diagnostic.
const DiagnosticOrigin = "diagnostic"

// Observation is direct evidence about one atom.
type Observation struct {
	AtomID   string `json:"atomId"`
	Mastered bool   `json:"mastered"`
}

// Result is the computed mastery of one curriculum atom.
type Result struct {
	AtomID   string `json:"atomId"`
	Mastered bool   `json:"mastered"`
	Source   Source `json:"source"`
}

// Status maps the result to its persisted status. Atoms never observed
// nor inferred stay not_started.
func (r Result) Status() Status {
	switch {
	case r.Mastered:
		return StatusMastered
	case r.Source == SourceDirect:
		return StatusNotMastered
	default:
		return StatusNotStarted
	}
}

// Record is a mastery row ready for idempotent insertion.
type Record struct {
	UserID     string
	AtomID     string
	Status     Status
	IsMastered bool
	Source     Source
	// Origin is DiagnosticOrigin for mastered rows and empty otherwise.
	Origin     string
	MasteredAt *time.Time
	UpdatedAt  time.Time
}

// Records converts results for userID into rows stamped with at.
func Records(userID string, results []Result, at time.Time) []Record {
	out := make([]Record, len(results))
	for i, r := range results {
		rec := Record{
			UserID:     userID,
			AtomID:     r.AtomID,
			Status:     r.Status(),
			IsMastered: r.Mastered,
			Source:     r.Source,
			UpdatedAt:  at,
		}
		if r.Mastered {
			rec.Origin = DiagnosticOrigin
			ts := at
			rec.MasteredAt = &ts
		}
		out[i] = rec
	}
	return out
}

// MasteredSet returns the ids of mastered atoms.
func MasteredSet(results []Result) map[string]bool {
	set := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Mastered {
			set[r.AtomID] = true
		}
	}
	return set
}
