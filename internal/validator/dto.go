package validator

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/models"
)

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	Kind          models.QuestionKind    `json:"kind" validate:"required,question_kind"`
	Text          string                 `json:"text" validate:"required,min=1,max=2000"`
	Options       []string               `json:"options" validate:"omitempty,max=10,dive,required"`
	CorrectAnswer json.RawMessage        `json:"correct_answer"`
	Topic         string                 `json:"topic" validate:"required,max=100"`
	Difficulty    models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Explanation   *string                `json:"explanation" validate:"omitempty,max=1000"`
}

// QuestionUpdateRequest is a partial update; nil fields keep their value
type QuestionUpdateRequest struct {
	Kind          *models.QuestionKind    `json:"kind" validate:"omitempty,question_kind"`
	Text          *string                 `json:"text" validate:"omitempty,min=1,max=2000"`
	Options       []string                `json:"options" validate:"omitempty,max=10,dive,required"`
	CorrectAnswer json.RawMessage         `json:"correct_answer"`
	Topic         *string                 `json:"topic" validate:"omitempty,min=1,max=100"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Explanation   *string                 `json:"explanation" validate:"omitempty,max=1000"`
}

// QuestionPoolFilterRequest narrows the automatic selection pool
type QuestionPoolFilterRequest struct {
	Topic      string                 `json:"topic" validate:"max=100"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
}

// ExamComposeRequest represents the request structure for composing an exam
type ExamComposeRequest struct {
	Title         string               `json:"title" validate:"required,exam_title"`
	Date          *time.Time           `json:"date" validate:"required"`
	Duration      int                  `json:"duration_minutes" validate:"required,gt=0,max=1440"`
	Category      string               `json:"category" validate:"max=100"`
	PassMarks     int                  `json:"pass_marks" validate:"min=0"`
	SelectionMode models.SelectionMode `json:"selection_mode" validate:"required,selection_mode"`

	// manual
	QuestionIDs []uint `json:"question_ids"`

	// auto
	Filters QuestionPoolFilterRequest `json:"filters"`
	Count   int                       `json:"count"`

	RandomizeQuestions *bool `json:"randomize_questions"`
	IsPublished        *bool `json:"is_published"`
}

// ExamUpdateRequest updates exam metadata only
type ExamUpdateRequest struct {
	Title              *string    `json:"title" validate:"omitempty,exam_title"`
	Date               *time.Time `json:"date"`
	Duration           *int       `json:"duration_minutes" validate:"omitempty,gt=0,max=1440"`
	Category           *string    `json:"category" validate:"omitempty,max=100"`
	PassMarks          *int       `json:"pass_marks" validate:"omitempty,min=0"`
	RandomizeQuestions *bool      `json:"randomize_questions"`
	IsPublished        *bool      `json:"is_published"`
}

// SubmittedAnswerRequest is one answer in a submission
type SubmittedAnswerRequest struct {
	QuestionID string          `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer"`
}

// SubmissionCreateRequest carries a student's answers. A nil Answers slice means
// the field was absent or null; an empty list is accepted.
type SubmissionCreateRequest struct {
	Answers []SubmittedAnswerRequest `json:"answers" validate:"dive"`
}

// GradeRequest carries the final marks assigned by a grader
type GradeRequest struct {
	FinalMarks *float64 `json:"final_marks" validate:"required,min=0"`
}
