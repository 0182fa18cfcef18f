package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple_choice"
	Boolean        QuestionKind = "boolean"
	FreeText       QuestionKind = "free_text"
)

// IsObjective reports whether answers of this kind are graded automatically
func (k QuestionKind) IsObjective() bool {
	return k == MultipleChoice || k == Boolean
}

func (k QuestionKind) IsValid() bool {
	switch k {
	case MultipleChoice, Boolean, FreeText:
		return true
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// DefaultBooleanOptions is used when a boolean question is created without options
var DefaultBooleanOptions = []string{"True", "False"}

// Question is a reusable question bank record. Exams never reference it directly,
// they embed a copy (see EmbeddedQuestion).
type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Kind QuestionKind `json:"kind" gorm:"not null;index;size:32"`
	Text string       `json:"text" gorm:"type:text;not null"`

	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`
	CorrectAnswer datatypes.JSON              `json:"correct_answer" gorm:"type:jsonb"`

	Topic      string          `json:"topic" gorm:"not null;index;size:100"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:medium;index;size:16"`

	Explanation *string   `json:"explanation" gorm:"type:text"`
	CreatedBy   string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}
