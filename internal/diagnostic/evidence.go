package diagnostic

import (
	"fmt"
	"slices"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/mst"
)

// EvidencePolicy selects which atom tags of a response count as evidence.
type EvidencePolicy string

const (
	// EvidencePrimary uses primary atoms only, the same set that gates
	// question unlocking.
	EvidencePrimary EvidencePolicy = "primary"
	// EvidencePrimaryAndSecondary also counts secondary atoms.
	EvidencePrimaryAndSecondary EvidencePolicy = "primary_and_secondary"
)

// ParseEvidencePolicy parses a policy name. Empty means EvidencePrimary.
func ParseEvidencePolicy(s string) (EvidencePolicy, error) {
	switch EvidencePolicy(s) {
	case "", EvidencePrimary:
		return EvidencePrimary, nil
	case EvidencePrimaryAndSecondary:
		return EvidencePrimaryAndSecondary, nil
	}
	return "", fmt.Errorf("unknown evidence policy %q", s)
}

func (p EvidencePolicy) counts(rel curriculum.Relevance) bool {
	if rel == curriculum.RelevanceSecondary {
		return p == EvidencePrimaryAndSecondary
	}
	return true
}

// ComputeAtomMastery flattens response atom tags into direct observations.
// A correct answer is evidence of mastery and an incorrect or skipped one of
// non-mastery. When an atom appears in several responses, any correct
// answer marks it mastered. Observations are sorted by atom id.
func ComputeAtomMastery(responses []mst.Response, policy EvidencePolicy) []mastery.Observation {
	state := make(map[string]bool)
	for _, r := range responses {
		for _, a := range r.Atoms {
			if !policy.counts(a.Relevance) {
				continue
			}
			state[a.AtomID] = state[a.AtomID] || r.IsCorrect
		}
	}

	ids := make([]string, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]mastery.Observation, len(ids))
	for i, id := range ids {
		out[i] = mastery.Observation{AtomID: id, Mastered: state[id]}
	}
	return out
}
