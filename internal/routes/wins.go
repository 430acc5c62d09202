package routes

import (
	"cmp"
	"slices"

	"github.com/arbor/paesdiag/internal/unlock"
)

// FindQuickWins returns atoms with no unmastered prerequisites that unlock
// at least one question on their own, most immediate unlocks first.
func FindQuickWins(values []unlock.AtomMarginalValue, limit int) []unlock.AtomMarginalValue {
	var out []unlock.AtomMarginalValue
	for _, v := range values {
		if len(v.ImmediateUnlocks) > 0 && v.Cost() == 0 {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b unlock.AtomMarginalValue) int {
		if c := cmp.Compare(len(b.ImmediateUnlocks), len(a.ImmediateUnlocks)); c != 0 {
			return c
		}
		return cmp.Compare(a.AtomID, b.AtomID)
	})
	return truncate(out, limit)
}

// FindHighImpactAtoms ranks atoms with a positive unlock score by
// efficiency, independent of route construction.
func FindHighImpactAtoms(values []unlock.AtomMarginalValue, limit int) []unlock.AtomMarginalValue {
	var out []unlock.AtomMarginalValue
	for _, v := range values {
		if v.UnlockScore > 0 {
			out = append(out, v)
		}
	}
	unlock.SortByEfficiency(out)
	return truncate(out, limit)
}

func truncate[T any](s []T, limit int) []T {
	if s == nil {
		s = []T{}
	}
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
