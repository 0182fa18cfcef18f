package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type GradingStatus string

const (
	GradingComplete            GradingStatus = "complete"
	GradingPendingManualReview GradingStatus = "pending_manual_review"
)

// Label is the human readable status used in exports
func (s GradingStatus) Label() string {
	if s == GradingComplete {
		return "Graded"
	}
	return "Pending"
}

type SubmittedAnswer struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// Submission is one student's answer set for one exam. (exam_id, student_id) is unique.
type Submission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_submission_exam_student"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_submission_exam_student;index"`

	Answers datatypes.JSONSlice[SubmittedAnswer] `json:"answers" gorm:"type:jsonb;not null"`

	Marks  float64       `json:"marks" gorm:"not null;default:0"`
	Status GradingStatus `json:"status" gorm:"not null;size:32;index"`

	SubmittedAt time.Time  `json:"submitted_at" gorm:"not null"`
	GradedBy    *string    `json:"graded_by,omitempty" gorm:"size:255"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) IsPending() bool {
	return s.Status == GradingPendingManualReview
}
