// Package unlock measures how far each official question is from being
// unlocked and what each unmastered atom is worth toward unlocking them.
package unlock

import (
	"cmp"
	"slices"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// QuestionStatus describes one question against a mastery set.
// Only primary atoms gate unlocking.
type QuestionStatus struct {
	QuestionID            string   `json:"questionId"`
	IsUnlocked            bool     `json:"isUnlocked"`
	MissingPrimaryAtoms   []string `json:"missingPrimaryAtoms"`
	AtomsToUnlock         int      `json:"atomsToUnlock"`
	MissingSecondaryAtoms []string `json:"missingSecondaryAtoms"`
}

// AnalyzeQuestion computes q's status. A question with no primary atoms is
// never unlocked.
func AnalyzeQuestion(q curriculum.Question, mastered map[string]bool) QuestionStatus {
	missingPrimary := missing(q.PrimaryAtomIDs, mastered)
	return QuestionStatus{
		QuestionID:            q.ID,
		IsUnlocked:            len(q.PrimaryAtomIDs) > 0 && len(missingPrimary) == 0,
		MissingPrimaryAtoms:   missingPrimary,
		AtomsToUnlock:         len(missingPrimary),
		MissingSecondaryAtoms: missing(q.SecondaryAtomIDs, mastered),
	}
}

func missing(ids []string, mastered map[string]bool) []string {
	out := []string{}
	for _, id := range ids {
		if !mastered[id] {
			out = append(out, id)
		}
	}
	return out
}

// Analysis buckets the corpus by distance to unlock.
type Analysis struct {
	Unlocked    []QuestionStatus `json:"unlocked"`
	OneAway     []QuestionStatus `json:"oneAway"`
	TwoAway     []QuestionStatus `json:"twoAway"`
	ThreeOrMore []QuestionStatus `json:"threeOrMore"`
	// NoMapping lists questions without primary atoms.
	NoMapping []string `json:"noMapping"`
}

// Counts is the size of each bucket.
type Counts struct {
	Total       int `json:"total"`
	Unlocked    int `json:"unlocked"`
	OneAway     int `json:"oneAway"`
	TwoAway     int `json:"twoAway"`
	ThreeOrMore int `json:"threeOrMore"`
	NoMapping   int `json:"noMapping"`
}

// AnalyzeAll evaluates every question. Buckets keep question id order.
func AnalyzeAll(questions []curriculum.Question, mastered map[string]bool) Analysis {
	sorted := slices.Clone(questions)
	slices.SortFunc(sorted, func(a, b curriculum.Question) int { return cmp.Compare(a.ID, b.ID) })

	a := Analysis{NoMapping: []string{}}
	for _, q := range sorted {
		if len(q.PrimaryAtomIDs) == 0 {
			a.NoMapping = append(a.NoMapping, q.ID)
			continue
		}
		st := AnalyzeQuestion(q, mastered)
		switch {
		case st.IsUnlocked:
			a.Unlocked = append(a.Unlocked, st)
		case st.AtomsToUnlock == 1:
			a.OneAway = append(a.OneAway, st)
		case st.AtomsToUnlock == 2:
			a.TwoAway = append(a.TwoAway, st)
		default:
			a.ThreeOrMore = append(a.ThreeOrMore, st)
		}
	}
	return a
}

// Statuses returns every mapped question's status in question id order.
func (a Analysis) Statuses() []QuestionStatus {
	out := make([]QuestionStatus, 0, len(a.Unlocked)+len(a.OneAway)+len(a.TwoAway)+len(a.ThreeOrMore))
	out = append(out, a.Unlocked...)
	out = append(out, a.OneAway...)
	out = append(out, a.TwoAway...)
	out = append(out, a.ThreeOrMore...)
	slices.SortFunc(out, func(x, y QuestionStatus) int { return cmp.Compare(x.QuestionID, y.QuestionID) })
	return out
}

// Counts returns bucket sizes.
func (a Analysis) Counts() Counts {
	c := Counts{
		Unlocked:    len(a.Unlocked),
		OneAway:     len(a.OneAway),
		TwoAway:     len(a.TwoAway),
		ThreeOrMore: len(a.ThreeOrMore),
		NoMapping:   len(a.NoMapping),
	}
	c.Total = c.Unlocked + c.OneAway + c.TwoAway + c.ThreeOrMore + c.NoMapping
	return c
}

// LowHangingFruit returns locked questions one or two atoms away, closest
// first then by question id, at most limit entries (all when limit <= 0).
func (a Analysis) LowHangingFruit(limit int) []QuestionStatus {
	out := make([]QuestionStatus, 0, len(a.OneAway)+len(a.TwoAway))
	out = append(out, a.OneAway...)
	out = append(out, a.TwoAway...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountUnlocked returns how many questions are unlocked under mastered.
func CountUnlocked(questions []curriculum.Question, mastered map[string]bool) int {
	n := 0
	for _, q := range questions {
		if AnalyzeQuestion(q, mastered).IsUnlocked {
			n++
		}
	}
	return n
}
