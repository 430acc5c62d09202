package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the queries in this package.
const (
	tableAtoms         = "atoms"
	tablePrerequisites = "atom_prerequisites"
	tableQuestions     = "questions"
	tableQuestionAtoms = "question_atoms"
	tableMastery       = "atom_mastery"
	tableAttempts      = "test_attempts"
	tableResponses     = "student_responses"
)

var (
	atomsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "axis", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		// JSON array of free-form skill tags.
		{Name: "secondary_skills", Type: field.TypeString, Default: "[]"},
	}
	atomsTable = &schema.Table{
		Name:       tableAtoms,
		Columns:    atomsColumns,
		PrimaryKey: []*schema.Column{atomsColumns[0]},
	}

	// prerequisite_id has no foreign key: dangling references are kept and
	// reported when the graph is built.
	prerequisitesColumns = []*schema.Column{
		{Name: "atom_id", Type: field.TypeString},
		{Name: "prerequisite_id", Type: field.TypeString},
	}
	prerequisitesTable = &schema.Table{
		Name:       tablePrerequisites,
		Columns:    prerequisitesColumns,
		PrimaryKey: []*schema.Column{prerequisitesColumns[0], prerequisitesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "atom_prerequisites_atoms_atom",
				Columns:    []*schema.Column{prerequisitesColumns[0]},
				RefColumns: []*schema.Column{atomsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "difficulty_level", Type: field.TypeString, Nullable: true},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_source", Columns: []*schema.Column{questionsColumns[1]}},
		},
	}

	questionAtomsColumns = []*schema.Column{
		{Name: "question_id", Type: field.TypeString},
		{Name: "atom_id", Type: field.TypeString},
		{Name: "relevance", Type: field.TypeString},
	}
	questionAtomsTable = &schema.Table{
		Name:       tableQuestionAtoms,
		Columns:    questionAtomsColumns,
		PrimaryKey: []*schema.Column{questionAtomsColumns[0], questionAtomsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "question_atoms_questions_question",
				Columns:    []*schema.Column{questionAtomsColumns[0]},
				RefColumns: []*schema.Column{questionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	masteryColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "atom_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "is_mastered", Type: field.TypeBool, Default: false},
		{Name: "source", Type: field.TypeString},
		{Name: "mastery_source", Type: field.TypeString, Nullable: true},
		{Name: "mastered_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	masteryTable = &schema.Table{
		Name:       tableMastery,
		Columns:    masteryColumns,
		PrimaryKey: []*schema.Column{masteryColumns[0], masteryColumns[1]},
	}

	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "route", Type: field.TypeString, Nullable: true},
		{Name: "paes_score", Type: field.TypeInt, Nullable: true},
		// JSON-encoded completion payload.
		{Name: "results", Type: field.TypeString, Nullable: true},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	attemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "test_attempt_user_id", Columns: []*schema.Column{attemptsColumns[1]}},
		},
	}

	responsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "attempt_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "stage", Type: field.TypeInt},
		{Name: "selected_answer", Type: field.TypeString, Nullable: true},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "response_time_ms", Type: field.TypeInt64},
		{Name: "answered_at", Type: field.TypeTime},
	}
	responsesTable = &schema.Table{
		Name:       tableResponses,
		Columns:    responsesColumns,
		PrimaryKey: []*schema.Column{responsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "student_responses_test_attempts_attempt",
				Columns:    []*schema.Column{responsesColumns[1]},
				RefColumns: []*schema.Column{attemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "student_response_attempt_id_question_id", Unique: true, Columns: []*schema.Column{responsesColumns[1], responsesColumns[2]}},
		},
	}

	// tables lists every table in creation order.
	tables = []*schema.Table{
		atomsTable,
		prerequisitesTable,
		questionsTable,
		questionAtomsTable,
		masteryTable,
		attemptsTable,
		responsesTable,
	}
)

func init() {
	prerequisitesTable.ForeignKeys[0].RefTable = atomsTable
	questionAtomsTable.ForeignKeys[0].RefTable = questionsTable
	responsesTable.ForeignKeys[0].RefTable = attemptsTable
}
