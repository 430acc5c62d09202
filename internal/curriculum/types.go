// Package curriculum defines the read-only reference data consumed by the
// diagnostic pipeline: atoms, official questions and the links between them.
package curriculum

import (
	"cmp"
	"context"
	"slices"
)

// Relevance tags how strongly a question depends on an atom.
type Relevance string

const (
	RelevancePrimary   Relevance = "primary"
	RelevanceSecondary Relevance = "secondary"
)

// SourceOfficial marks questions taken from released official exams.
const SourceOfficial = "official"

// Atom is the smallest independently assessed curriculum skill.
type Atom struct {
	ID              string   `json:"id"`
	Axis            Axis     `json:"axis"`
	Title           string   `json:"title"`
	PrerequisiteIDs []string `json:"prerequisiteIds"`
	SecondarySkills []string `json:"secondarySkills,omitempty"`
}

// QuestionMeta is per-question metadata without atom links.
type QuestionMeta struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	DifficultyLevel string `json:"difficultyLevel,omitempty"`
}

// AtomRef is an atom tag carried by a question or response.
type AtomRef struct {
	AtomID    string    `json:"atomId"`
	Relevance Relevance `json:"relevance"`
}

// AtomLink is one row of the question/atom relation.
type AtomLink struct {
	QuestionID string    `json:"questionId"`
	AtomID     string    `json:"atomId"`
	Relevance  Relevance `json:"relevance"`
}

// Question is an official question with its atoms split by relevance.
type Question struct {
	QuestionMeta
	PrimaryAtomIDs   []string `json:"primaryAtomIds"`
	SecondaryAtomIDs []string `json:"secondaryAtomIds"`
}

// Source provides the three reference relations. The reads are
// independent of each other and may be issued concurrently.
type Source interface {
	Atoms(ctx context.Context) ([]Atom, error)
	Questions(ctx context.Context) ([]QuestionMeta, error)
	QuestionAtomLinks(ctx context.Context) ([]AtomLink, error)
}

// JoinQuestions attaches links to question metadata. Links pointing at a
// question not in metas are ignored; links whose atom fails known are
// returned in dropped so the caller can report them. Repeated question ids
// keep the first metadata and are returned in duplicates. Atom ids within
// each relevance list are deduplicated and sorted.
func JoinQuestions(metas []QuestionMeta, links []AtomLink, known func(atomID string) bool) (questions []Question, dropped []AtomLink, duplicates []string) {
	questions = make([]Question, 0, len(metas))
	seen := make(map[string]bool, len(metas))
	for _, m := range metas {
		if seen[m.ID] {
			duplicates = append(duplicates, m.ID)
			continue
		}
		seen[m.ID] = true
		questions = append(questions, Question{QuestionMeta: m})
	}
	byID := make(map[string]*Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	for _, l := range links {
		q, ok := byID[l.QuestionID]
		if !ok {
			continue
		}
		if known != nil && !known(l.AtomID) {
			dropped = append(dropped, l)
			continue
		}
		if l.Relevance == RelevanceSecondary {
			q.SecondaryAtomIDs = append(q.SecondaryAtomIDs, l.AtomID)
		} else {
			q.PrimaryAtomIDs = append(q.PrimaryAtomIDs, l.AtomID)
		}
	}

	for i := range questions {
		questions[i].PrimaryAtomIDs = sortedUnique(questions[i].PrimaryAtomIDs)
		questions[i].SecondaryAtomIDs = sortedUnique(questions[i].SecondaryAtomIDs)
	}
	slices.SortFunc(questions, func(a, b Question) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return questions, dropped, duplicates
}

func sortedUnique(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
