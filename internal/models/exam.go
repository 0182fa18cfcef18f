package models

import (
	"encoding/json"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SelectionMode string

const (
	SelectionManual SelectionMode = "manual"
	SelectionAuto   SelectionMode = "auto"
)

// EmbeddedQuestion is the frozen copy of a Question stored inside an Exam.
// ID is synthetic and is what submissions reference.
type EmbeddedQuestion struct {
	ID               string          `json:"id"`
	SourceQuestionID uint            `json:"source_question_id"`
	Kind             QuestionKind    `json:"kind"`
	Text             string          `json:"text"`
	Options          []string        `json:"options"`
	CorrectAnswer    json.RawMessage `json:"correct_answer,omitempty"`
	Topic            string          `json:"topic"`
	Difficulty       DifficultyLevel `json:"difficulty"`
	Explanation      *string         `json:"explanation,omitempty"`
}

// Clone returns a copy sharing no slices with q
func (q EmbeddedQuestion) Clone() EmbeddedQuestion {
	out := q
	out.Options = slices.Clone(q.Options)
	if q.CorrectAnswer != nil {
		out.CorrectAnswer = slices.Clone(q.CorrectAnswer)
	}
	if q.Explanation != nil {
		explanation := *q.Explanation
		out.Explanation = &explanation
	}
	return out
}

type Exam struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null;size:200;index"`
	Date      time.Time `json:"date" gorm:"not null"`
	Duration  int       `json:"duration_minutes" gorm:"not null"`
	Category  string    `json:"category" gorm:"size:100;index"`
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`

	Questions datatypes.JSONSlice[EmbeddedQuestion] `json:"questions" gorm:"type:jsonb;not null"`

	// Fixed at composition time
	TotalMarks int `json:"total_marks" gorm:"not null"`
	PassMarks  int `json:"pass_marks" gorm:"not null;default:0"`

	RandomizeQuestions bool `json:"randomize_questions" gorm:"not null;default:false"`
	IsPublished        bool `json:"is_published" gorm:"not null;default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Exam) TableName() string {
	return "exams"
}

// Clone deep-copies the exam including every embedded question
func (e *Exam) Clone() *Exam {
	if e == nil {
		return nil
	}
	out := *e
	if e.Questions != nil {
		out.Questions = make(datatypes.JSONSlice[EmbeddedQuestion], len(e.Questions))
		for i, q := range e.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	return &out
}

// QuestionIndex maps embedded question ids to their snapshot
func (e *Exam) QuestionIndex() map[string]EmbeddedQuestion {
	index := make(map[string]EmbeddedQuestion, len(e.Questions))
	for _, q := range e.Questions {
		index[q.ID] = q
	}
	return index
}
