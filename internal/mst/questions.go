package mst

import (
	"strings"

	"github.com/arbor/paesdiag/internal/curriculum"
)

// Skill is the PAES M1 competency a question exercises.
type Skill string

const (
	SkillSolve     Skill = "RES"
	SkillModel     Skill = "MOD"
	SkillRepresent Skill = "REP"
	SkillArgue     Skill = "ARG"
)

var skillNames = map[Skill]string{
	SkillSolve:     "Resolver Problemas",
	SkillModel:     "Modelar",
	SkillRepresent: "Representar",
	SkillArgue:     "Argumentar y Comunicar",
}

// AllSkills returns the skills in display order.
func AllSkills() []Skill {
	return []Skill{SkillSolve, SkillModel, SkillRepresent, SkillArgue}
}

func (s Skill) DisplayName() string {
	if n, ok := skillNames[s]; ok {
		return n
	}
	return string(s)
}

// Question is one item of an MST pool, drawn from a released exam.
type Question struct {
	Exam           string          `json:"exam"`
	QuestionNumber string          `json:"questionNumber"`
	Axis           curriculum.Axis `json:"axis"`
	Skill          Skill           `json:"skill"`
	Difficulty     float64         `json:"difficulty"`
}

// ID returns the question's corpus id.
func (q Question) ID() string {
	return BuildQuestionID(q.Exam, q.QuestionNumber)
}

// BuildQuestionID builds the corpus id "<exam lowercased>-<number>", where
// number is the exam label such as "Q28".
func BuildQuestionID(exam, number string) string {
	return strings.ToLower(exam) + "-" + number
}

const (
	winter25  = "prueba-invierno-2025"
	winter26  = "prueba-invierno-2026"
	regular25 = "seleccion-regular-2025"
	regular26 = "seleccion-regular-2026"
)

const (
	alg  = curriculum.AxisAlgebra
	num  = curriculum.AxisNumbers
	geo  = curriculum.AxisGeometry
	prob = curriculum.AxisProbability
)

var stage1Pool = [QuestionsPerStage]Question{
	{winter25, "Q28", alg, SkillSolve, 0.45},
	{winter26, "Q31", alg, SkillModel, 0.55},
	{winter26, "Q23", num, SkillArgue, 0.45},
	{regular25, "Q15", num, SkillArgue, 0.55},
	{winter25, "Q46", geo, SkillArgue, 0.45},
	{winter26, "Q45", geo, SkillArgue, 0.55},
	{winter26, "Q58", prob, SkillRepresent, 0.45},
	{regular26, "Q60", prob, SkillSolve, 0.45},
}

var stage2Pools = map[Route][QuestionsPerStage]Question{
	RouteA: {
		{winter25, "Q40", alg, SkillSolve, 0.25},
		{regular26, "Q35", alg, SkillModel, 0.25},
		{winter26, "Q40", alg, SkillSolve, 0.25},
		{regular25, "Q10", num, SkillSolve, 0.30},
		{winter25, "Q6", num, SkillSolve, 0.30},
		{regular25, "Q63", geo, SkillRepresent, 0.30},
		{winter26, "Q64", prob, SkillArgue, 0.35},
		{regular25, "Q54", prob, SkillSolve, 0.25},
	},
	RouteB: {
		{winter26, "Q42", alg, SkillModel, 0.45},
		{regular25, "Q38", alg, SkillSolve, 0.55},
		{regular25, "Q36", alg, SkillModel, 0.55},
		{regular25, "Q3", num, SkillArgue, 0.55},
		{winter25, "Q22", num, SkillModel, 0.45},
		{regular25, "Q60", geo, SkillSolve, 0.45},
		{regular25, "Q55", prob, SkillSolve, 0.55},
		{winter25, "Q65", prob, SkillRepresent, 0.45},
	},
	RouteC: {
		{regular26, "Q59", alg, SkillSolve, 0.60},
		{regular26, "Q11", alg, SkillModel, 0.55},
		{winter25, "Q33", alg, SkillModel, 0.60},
		{winter25, "Q56", num, SkillArgue, 0.65},
		{regular26, "Q23", num, SkillSolve, 0.55},
		{winter25, "Q50", geo, SkillRepresent, 0.55},
		{winter25, "Q61", prob, SkillArgue, 0.65},
		{winter26, "Q60", prob, SkillArgue, 0.55},
	},
}

// Stage1Questions returns a copy of the routing test.
func Stage1Questions() []Question {
	out := stage1Pool
	return out[:]
}

// Stage2Questions returns a copy of the pool for route, or nil for an
// unknown route.
func Stage2Questions(route Route) []Question {
	pool, ok := stage2Pools[route]
	if !ok {
		return nil
	}
	return pool[:]
}

// Lookup finds a pool question by corpus id across all stages.
func Lookup(id string) (Question, bool) {
	for _, q := range stage1Pool {
		if q.ID() == id {
			return q, true
		}
	}
	for _, r := range []Route{RouteA, RouteB, RouteC} {
		for _, q := range stage2Pools[r] {
			if q.ID() == id {
				return q, true
			}
		}
	}
	return Question{}, false
}
