package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Bundle is a self-contained curriculum: atoms plus questions with their
// atom tags.
type Bundle struct {
	Atoms     []Atom           `json:"atoms"`
	Questions []BundleQuestion `json:"questions"`
}

// BundleQuestion is a question as written in a bundle file.
type BundleQuestion struct {
	ID              string    `json:"id"`
	Source          string    `json:"source,omitempty"`
	DifficultyLevel string    `json:"difficultyLevel,omitempty"`
	Atoms           []AtomRef `json:"atoms"`
}

// Parse validates raw against the bundle schema and decodes it.
// Axis values are normalized to short codes and a missing question source
// defaults to SourceOfficial.
func Parse(raw []byte) (*Bundle, error) {
	if err := validateBundle(raw); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, &ErrInvalidBundle{Err: err}
	}

	for i := range b.Atoms {
		b.Atoms[i].Axis = ParseAxis(string(b.Atoms[i].Axis))
		if b.Atoms[i].PrerequisiteIDs == nil {
			b.Atoms[i].PrerequisiteIDs = []string{}
		}
	}
	for i := range b.Questions {
		if b.Questions[i].Source == "" {
			b.Questions[i].Source = SourceOfficial
		}
	}
	return &b, nil
}

// LoadFile reads and parses the bundle at path.
func LoadFile(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	b, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Source exposes the bundle as a Source so analysis can run without a
// database.
func (b *Bundle) Source() Source {
	return bundleSource{b: b}
}

type bundleSource struct {
	b *Bundle
}

func (s bundleSource) Atoms(_ context.Context) ([]Atom, error) {
	return s.b.Atoms, nil
}

// Questions returns metadata for official questions only.
func (s bundleSource) Questions(_ context.Context) ([]QuestionMeta, error) {
	var out []QuestionMeta
	for _, q := range s.b.Questions {
		if q.Source != SourceOfficial {
			continue
		}
		out = append(out, QuestionMeta{ID: q.ID, Source: q.Source, DifficultyLevel: q.DifficultyLevel})
	}
	return out, nil
}

func (s bundleSource) QuestionAtomLinks(_ context.Context) ([]AtomLink, error) {
	var out []AtomLink
	for _, q := range s.b.Questions {
		for _, a := range q.Atoms {
			out = append(out, AtomLink{QuestionID: q.ID, AtomID: a.AtomID, Relevance: a.Relevance})
		}
	}
	return out, nil
}
