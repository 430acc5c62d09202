package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// batchSize bounds the number of rows per multi-row insert.
const batchSize = 50

// ImportStats counts the rows written by ImportBundle.
type ImportStats struct {
	Atoms         int `json:"atoms"`
	Prerequisites int `json:"prerequisites"`
	Questions     int `json:"questions"`
	Links         int `json:"links"`
}

// ImportBundle upserts the atoms and questions of b in one transaction.
// Prerequisite and atom link sets of every imported row are replaced, so
// importing the same bundle twice leaves the database unchanged.
func (s *Store) ImportBundle(ctx context.Context, b *curriculum.Bundle) (ImportStats, error) {
	var stats ImportStats
	err := s.tx(ctx, func(tx dialect.Tx) error {
		var err error
		if stats.Atoms, stats.Prerequisites, err = s.importAtoms(ctx, tx, b.Atoms); err != nil {
			return err
		}
		stats.Questions, stats.Links, err = s.importQuestions(ctx, tx, b.Questions)
		return err
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("import bundle: %w", err)
	}
	s.logger.Info("curriculum imported",
		"atoms", stats.Atoms,
		"prerequisites", stats.Prerequisites,
		"questions", stats.Questions,
		"links", stats.Links,
	)
	return stats, nil
}

func (s *Store) importAtoms(ctx context.Context, tx dialect.Tx, atoms []curriculum.Atom) (int, int, error) {
	atoms = firstByID(atoms, func(a curriculum.Atom) string { return a.ID })
	b := s.builder()
	var edges [][2]string
	for chunk := range slices.Chunk(atoms, batchSize) {
		ins := b.Insert(tableAtoms).Columns("id", "axis", "title", "secondary_skills")
		for _, a := range chunk {
			skills, err := json.Marshal(nonNil(a.SecondarySkills))
			if err != nil {
				return 0, 0, fmt.Errorf("encode skills of %s: %w", a.ID, err)
			}
			ins.Values(a.ID, string(a.Axis), a.Title, string(skills))
		}
		q, args := ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("upsert atoms: %w", err)
		}

		ids := make([]any, len(chunk))
		for i, a := range chunk {
			ids[i] = a.ID
			for _, p := range a.PrerequisiteIDs {
				edges = append(edges, [2]string{a.ID, p})
			}
		}
		q, args = b.Delete(tablePrerequisites).Where(entsql.In("atom_id", ids...)).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("clear prerequisites: %w", err)
		}
	}

	for chunk := range slices.Chunk(edges, batchSize) {
		ins := b.Insert(tablePrerequisites).Columns("atom_id", "prerequisite_id")
		for _, e := range chunk {
			ins.Values(e[0], e[1])
		}
		q, args := ins.OnConflict(entsql.ConflictColumns("atom_id", "prerequisite_id"), entsql.DoNothing()).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("insert prerequisites: %w", err)
		}
	}
	return len(atoms), len(edges), nil
}

func (s *Store) importQuestions(ctx context.Context, tx dialect.Tx, questions []curriculum.BundleQuestion) (int, int, error) {
	questions = firstByID(questions, func(q curriculum.BundleQuestion) string { return q.ID })
	b := s.builder()
	var links []curriculum.AtomLink
	for chunk := range slices.Chunk(questions, batchSize) {
		ins := b.Insert(tableQuestions).Columns("id", "source", "difficulty_level")
		ids := make([]any, len(chunk))
		for i, q := range chunk {
			ins.Values(q.ID, q.Source, nullString(q.DifficultyLevel))
			ids[i] = q.ID
			for _, a := range q.Atoms {
				links = append(links, curriculum.AtomLink{QuestionID: q.ID, AtomID: a.AtomID, Relevance: a.Relevance})
			}
		}
		q, args := ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("upsert questions: %w", err)
		}
		q, args = b.Delete(tableQuestionAtoms).Where(entsql.In("question_id", ids...)).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("clear question atoms: %w", err)
		}
	}

	for chunk := range slices.Chunk(links, batchSize) {
		ins := b.Insert(tableQuestionAtoms).Columns("question_id", "atom_id", "relevance")
		for _, l := range chunk {
			ins.Values(l.QuestionID, l.AtomID, string(l.Relevance))
		}
		q, args := ins.OnConflict(entsql.ConflictColumns("question_id", "atom_id"), entsql.DoNothing()).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return 0, 0, fmt.Errorf("insert question atoms: %w", err)
		}
	}
	return len(questions), len(links), nil
}

// Atoms returns every atom with its prerequisite ids, ordered by id.
func (s *Store) Atoms(ctx context.Context) ([]curriculum.Atom, error) {
	b := s.builder()

	var atoms []curriculum.Atom
	q, args := b.Select("id", "axis", "title", "secondary_skills").
		From(entsql.Table(tableAtoms)).
		OrderBy("id").
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var (
			a      curriculum.Atom
			axis   string
			skills string
		)
		if err := rows.Scan(&a.ID, &axis, &a.Title, &skills); err != nil {
			return err
		}
		a.Axis = curriculum.Axis(axis)
		if err := json.Unmarshal([]byte(skills), &a.SecondarySkills); err != nil {
			return fmt.Errorf("decode skills of %s: %w", a.ID, err)
		}
		if len(a.SecondarySkills) == 0 {
			a.SecondarySkills = nil
		}
		a.PrerequisiteIDs = []string{}
		atoms = append(atoms, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query atoms: %w", err)
	}

	idx := make(map[string]int, len(atoms))
	for i, a := range atoms {
		idx[a.ID] = i
	}
	q, args = b.Select("atom_id", "prerequisite_id").
		From(entsql.Table(tablePrerequisites)).
		OrderBy("atom_id", "prerequisite_id").
		Query()
	err = query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var atomID, prereqID string
		if err := rows.Scan(&atomID, &prereqID); err != nil {
			return err
		}
		if i, ok := idx[atomID]; ok {
			atoms[i].PrerequisiteIDs = append(atoms[i].PrerequisiteIDs, prereqID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	return atoms, nil
}

// Questions returns the metadata of official questions, ordered by id.
func (s *Store) Questions(ctx context.Context) ([]curriculum.QuestionMeta, error) {
	var out []curriculum.QuestionMeta
	q, args := s.builder().Select("id", "source", "difficulty_level").
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("source", curriculum.SourceOfficial)).
		OrderBy("id").
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var (
			m    curriculum.QuestionMeta
			diff sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Source, &diff); err != nil {
			return err
		}
		m.DifficultyLevel = diff.String
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return out, nil
}

// QuestionAtomLinks returns every question/atom link.
func (s *Store) QuestionAtomLinks(ctx context.Context) ([]curriculum.AtomLink, error) {
	var out []curriculum.AtomLink
	q, args := s.builder().Select("question_id", "atom_id", "relevance").
		From(entsql.Table(tableQuestionAtoms)).
		OrderBy("question_id", "atom_id").
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var (
			l   curriculum.AtomLink
			rel string
		)
		if err := rows.Scan(&l.QuestionID, &l.AtomID, &rel); err != nil {
			return err
		}
		l.Relevance = curriculum.Relevance(rel)
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query question atoms: %w", err)
	}
	return out, nil
}

// firstByID drops every element whose id was already seen.
func firstByID[T any](items []T, id func(T) string) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if k := id(it); !seen[k] {
			seen[k] = true
			out = append(out, it)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
