package repositories

import (
	"time"

	"github.com/SAP-F-2025/examination-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Kind       *models.QuestionKind    `json:"kind"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Topic      *string                 `json:"topic"` // case-insensitive substring
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

// QuestionPoolFilter selects the candidate pool for automatic composition.
// Empty fields do not filter.
type QuestionPoolFilter struct {
	Topic      string                 `json:"topic"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
}

type ExamFilters struct {
	Category    *string    `json:"category"`
	IsPublished *bool      `json:"is_published"`
	CreatedBy   *string    `json:"created_by"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortBy      string     `json:"sort_by"`    // "created_at", "title", "date"
	SortOrder   string     `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	ExamID    *uint                 `json:"exam_id"`
	StudentID *string               `json:"student_id"`
	Status    *models.GradingStatus `json:"status"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// GradeUpdate is the single write performed by manual grading
type GradeUpdate struct {
	Marks    float64
	GradedBy string
	GradedAt time.Time
}
